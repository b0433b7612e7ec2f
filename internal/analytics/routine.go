package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type BlockType string

const (
	BlockDeepWork    BlockType = "deep_work"
	BlockShallowWork BlockType = "shallow_work"
	BlockAdmin       BlockType = "admin"
	BlockBreak       BlockType = "break"
	BlockLearning    BlockType = "learning"
	BlockMeeting     BlockType = "meeting"
)

func (t BlockType) Valid() bool {
	switch t {
	case BlockDeepWork, BlockShallowWork, BlockAdmin, BlockBreak, BlockLearning, BlockMeeting:
		return true
	}
	return false
}

// RoutineBlock times are wall-clock "HH:MM" strings.
type RoutineBlock struct {
	Type            BlockType `json:"type"`
	Start           string    `json:"start"`
	End             string    `json:"end"`
	DurationMinutes int       `json:"durationMinutes"`
}

type SuggestedBreak struct {
	Time            string `json:"time"`
	DurationMinutes int    `json:"durationMinutes"`
}

type RoutineRecommendation struct {
	Morning         []RoutineBlock   `json:"morning"`
	Afternoon       []RoutineBlock   `json:"afternoon"`
	Evening         []RoutineBlock   `json:"evening"`
	SuggestedBreaks []SuggestedBreak `json:"suggestedBreaks"`
	Explanation     string           `json:"explanation"`
}

func (r RoutineRecommendation) Part(part DayPart) []RoutineBlock {
	switch part {
	case Morning:
		return r.Morning
	case Afternoon:
		return r.Afternoon
	default:
		return r.Evening
	}
}

// scheduling bounds per day part, minutes since midnight
type partBounds struct{ start, end int }

var routineBounds = map[DayPart]partBounds{
	Morning:   {start: 8 * 60, end: 12 * 60},
	Afternoon: {start: 13 * 60, end: 17*60 + 30},
	Evening:   {start: 18*60 + 30, end: 21 * 60},
}

const (
	minBlockMinutes        = 15
	defaultDeepWorkMinutes = 90
	minDeepWorkMinutes     = 60
	maxDeepWorkMinutes     = 120
	distractionBreakMins   = 10
	breakSpacingMinutes    = 30
)

type plannedBlock struct {
	kind    BlockType
	minutes int // 0 fills the rest of the part
}

// SynthesizeRoutine builds a routine from detected patterns. With no patterns it
// returns the default layout: morning deep work, afternoon admin, evening wind-down.
func SynthesizeRoutine(p Patterns) RoutineRecommendation {
	deepPart := strongestPart(p)
	deepMinutes := deepWorkLength(p.DeepWorkWindows)
	bounds := routineBounds[deepPart]

	anchor := bounds.start
	if hour, ok := firstPeakIn(p.PeakHours, deepPart); ok {
		anchor = clamp(hour*60, bounds.start, bounds.end-deepMinutes)
	}
	if anchor-bounds.start < minBlockMinutes {
		anchor = bounds.start
	}

	secondBlock := BlockShallowWork
	if p.EnergyCurve.Part(deepPart).Level == "high" {
		secondBlock = BlockDeepWork
	}

	routine := RoutineRecommendation{}
	for _, part := range []DayPart{Morning, Afternoon, Evening} {
		b := routineBounds[part]
		var plan []plannedBlock
		if part == deepPart {
			if anchor > b.start {
				plan = append(plan, plannedBlock{BlockShallowWork, anchor - b.start})
			}
			plan = append(plan,
				plannedBlock{BlockDeepWork, deepMinutes},
				plannedBlock{BlockBreak, 15},
				plannedBlock{secondBlock, 60},
				plannedBlock{BlockBreak, 10},
				plannedBlock{fillerFor(part), 0},
			)
		} else {
			plan = defaultPlan(part)
		}
		blocks := fillPart(b, plan)
		switch part {
		case Morning:
			routine.Morning = blocks
		case Afternoon:
			routine.Afternoon = blocks
		case Evening:
			routine.Evening = blocks
		}
	}

	routine.SuggestedBreaks = suggestBreaks(routine, p.DistractionWindows)
	routine.Explanation = explain(p, deepPart, anchor, deepMinutes)
	return routine
}

// DefaultRoutine is the routine for a user with no history.
func DefaultRoutine() RoutineRecommendation {
	return SynthesizeRoutine(Patterns{})
}

func defaultPlan(part DayPart) []plannedBlock {
	switch part {
	case Morning:
		return []plannedBlock{
			{BlockLearning, 60},
			{BlockBreak, 15},
			{BlockShallowWork, 0},
		}
	case Afternoon:
		return []plannedBlock{
			{BlockMeeting, 60},
			{BlockBreak, 15},
			{BlockShallowWork, 90},
			{BlockBreak, 15},
			{BlockAdmin, 0},
		}
	default:
		return []plannedBlock{
			{BlockLearning, 45},
			{BlockBreak, 15},
			{BlockAdmin, 0},
		}
	}
}

func fillerFor(part DayPart) BlockType {
	if part == Morning {
		return BlockShallowWork
	}
	return BlockAdmin
}

// fillPart lays planned blocks back to back inside bounds. A part never ends on a
// break and is never empty.
func fillPart(b partBounds, plan []plannedBlock) []RoutineBlock {
	blocks := make([]RoutineBlock, 0, len(plan))
	cursor := b.start
	for _, planned := range plan {
		remaining := b.end - cursor
		if remaining < minBlockMinutes {
			break
		}
		minutes := planned.minutes
		if minutes <= 0 || minutes > remaining {
			minutes = remaining
		}
		if minutes < minBlockMinutes {
			continue
		}
		blocks = append(blocks, newBlock(planned.kind, cursor, cursor+minutes))
		cursor += minutes
	}

	for len(blocks) > 0 && blocks[len(blocks)-1].Type == BlockBreak {
		blocks = blocks[:len(blocks)-1]
	}
	if len(blocks) == 0 {
		blocks = append(blocks, newBlock(BlockShallowWork, b.start, b.end))
	}
	return blocks
}

func newBlock(kind BlockType, start, end int) RoutineBlock {
	return RoutineBlock{
		Type:            kind,
		Start:           FormatClock(start),
		End:             FormatClock(end),
		DurationMinutes: end - start,
	}
}

// strongestPart picks the day part for deep work from the energy curve and where
// the top peak hours fall. Morning wins ties and empty input.
func strongestPart(p Patterns) DayPart {
	if !p.HasData() {
		return Morning
	}

	peakShare := map[DayPart]float64{}
	total := 0
	for i, peak := range p.PeakHours {
		if i == 3 {
			break
		}
		total += peak.ProductiveMinutes
	}
	for i, peak := range p.PeakHours {
		if i == 3 || total == 0 {
			break
		}
		peakShare[DayPartOf(peak.Hour)] += float64(peak.ProductiveMinutes) / float64(total)
	}

	best := Morning
	bestScore := -1.0
	for _, part := range []DayPart{Morning, Afternoon, Evening} {
		score := float64(p.EnergyCurve.Part(part).Score) + peakShare[part]*50
		if score > bestScore {
			best = part
			bestScore = score
		}
	}
	return best
}

func firstPeakIn(peaks []PeakHour, part DayPart) (int, bool) {
	for _, peak := range peaks {
		if DayPartOf(peak.Hour) == part {
			return peak.Hour, true
		}
	}
	return 0, false
}

// deepWorkLength uses the longest observed window, clamped and rounded to 15 minutes.
func deepWorkLength(windows []DeepWorkWindow) int {
	if len(windows) == 0 {
		return defaultDeepWorkMinutes
	}
	longest := 0
	for _, window := range windows {
		if window.DurationMinutes > longest {
			longest = window.DurationMinutes
		}
	}
	longest = clamp(longest, minDeepWorkMinutes, maxDeepWorkMinutes)
	return longest / 15 * 15
}

func suggestBreaks(r RoutineRecommendation, distractions []DistractionWindow) []SuggestedBreak {
	suggested := make([]SuggestedBreak, 0)
	taken := map[int]bool{}
	var times []int

	for _, part := range []DayPart{Morning, Afternoon, Evening} {
		for _, block := range r.Part(part) {
			if block.Type != BlockBreak {
				continue
			}
			start, _ := ParseClock(block.Start)
			suggested = append(suggested, SuggestedBreak{Time: block.Start, DurationMinutes: block.DurationMinutes})
			taken[start] = true
			times = append(times, start)
		}
	}

	for _, window := range distractions {
		at := window.Start.Hour()*60 + window.Start.Minute()
		at = at / 15 * 15
		if !insideRoutine(at) || taken[at] || nearAny(at, times) {
			continue
		}
		suggested = append(suggested, SuggestedBreak{Time: FormatClock(at), DurationMinutes: distractionBreakMins})
		taken[at] = true
		times = append(times, at)
	}

	sort.SliceStable(suggested, func(i, j int) bool {
		return suggested[i].Time < suggested[j].Time
	})
	return suggested
}

func insideRoutine(minute int) bool {
	for _, b := range routineBounds {
		if minute >= b.start && minute < b.end {
			return true
		}
	}
	return false
}

func nearAny(minute int, times []int) bool {
	for _, t := range times {
		diff := minute - t
		if diff < 0 {
			diff = -diff
		}
		if diff < breakSpacingMinutes {
			return true
		}
	}
	return false
}

func explain(p Patterns, deepPart DayPart, anchor, deepMinutes int) string {
	if !p.HasData() {
		return "Not enough history yet, so this is a balanced default: deep work in the morning, " +
			"meetings and admin in the afternoon and a lighter evening. Log a few days of activities " +
			"to get a routine fitted to your own rhythm."
	}

	var sb strings.Builder
	if len(p.PeakHours) > 0 {
		fmt.Fprintf(&sb, "Your most productive hour is around %s. ", FormatClock(p.PeakHours[0].Hour*60))
	}
	fmt.Fprintf(&sb, "Deep work is placed in the %s starting at %s for %d minutes", deepPart, FormatClock(anchor), deepMinutes)
	if len(p.DeepWorkWindows) > 0 {
		fmt.Fprintf(&sb, ", matching your longest recent focus session of %d minutes", p.DeepWorkWindows[0].DurationMinutes)
	}
	sb.WriteString(". ")
	energy := p.EnergyCurve.Part(deepPart)
	if energy.Level != "unknown" {
		fmt.Fprintf(&sb, "Your %s energy is %s (%d/100). ", deepPart, energy.Level, energy.Score)
	}
	if len(p.DistractionWindows) > 0 {
		w := p.DistractionWindows[0]
		fmt.Fprintf(&sb, "Distractions tend to cluster around %s, so a short planned break is suggested near then.",
			FormatClock(w.Start.Hour()*60+w.Start.Minute()))
	}
	return strings.TrimSpace(sb.String())
}

// NormalizeBlocks validates externally produced blocks: known types, parseable times,
// positive and non-overlapping spans in order. Durations are recomputed from the
// times. It reports false if any block is unusable.
func NormalizeBlocks(blocks []RoutineBlock) ([]RoutineBlock, bool) {
	if len(blocks) == 0 {
		return nil, false
	}
	out := make([]RoutineBlock, 0, len(blocks))
	lastEnd := -1
	for _, block := range blocks {
		if !block.Type.Valid() {
			return nil, false
		}
		start, err := ParseClock(block.Start)
		if err != nil {
			return nil, false
		}
		end, err := ParseClock(block.End)
		if err != nil || end <= start || start < lastEnd {
			return nil, false
		}
		out = append(out, newBlock(block.Type, start, end))
		lastEnd = end
	}
	return out, true
}

// FormatClock renders minutes since midnight as HH:MM.
func FormatClock(minutes int) string {
	minutes = clamp(minutes, 0, 24*60-1)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseClock parses HH:MM into minutes since midnight.
func ParseClock(value string) (int, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", value, err)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

func clamp(value, low, high int) int {
	if high < low {
		return low
	}
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
