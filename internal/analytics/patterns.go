package analytics

import (
	"math"
	"sort"
	"time"

	"focusflow/backend/internal/model"
)

const (
	PatternWindow = 7 * 24 * time.Hour

	DeepWorkMergeGap   = 15 * time.Minute
	MinDeepWorkWindow  = 20
	MaxDeepWorkWindows = 10

	DistractionMergeGap   = 15 * time.Minute
	DistractionMinMinutes = 45
	DistractionMinRecords = 3
	MaxDistractionWindows = 10
)

type DayPart string

const (
	Morning   DayPart = "morning"
	Afternoon DayPart = "afternoon"
	Evening   DayPart = "evening"
)

// DayPartOf buckets an hour of day: 06-12 morning, 12-18 afternoon, the rest evening.
func DayPartOf(hour int) DayPart {
	switch {
	case hour >= 6 && hour < 12:
		return Morning
	case hour >= 12 && hour < 18:
		return Afternoon
	default:
		return Evening
	}
}

type PeakHour struct {
	Hour              int     `json:"hour"`
	ProductiveMinutes int     `json:"productiveMinutes"`
	Efficiency        float64 `json:"efficiency"`
}

type DeepWorkWindow struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"durationMinutes"`
}

type DistractionWindow struct {
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	DurationMinutes  int       `json:"durationMinutes"`
	Records          int       `json:"records"`
	DominantCategory string    `json:"dominantCategory"`
}

type EnergyLevel struct {
	Score       int    `json:"score"`
	Level       string `json:"level"`
	WorkMinutes int    `json:"workMinutes"`
}

type EnergyCurve struct {
	Morning   EnergyLevel `json:"morning"`
	Afternoon EnergyLevel `json:"afternoon"`
	Evening   EnergyLevel `json:"evening"`
}

func (e EnergyCurve) Part(part DayPart) EnergyLevel {
	switch part {
	case Morning:
		return e.Morning
	case Afternoon:
		return e.Afternoon
	default:
		return e.Evening
	}
}

type Patterns struct {
	PeakHours          []PeakHour          `json:"peakHours"`
	DeepWorkWindows    []DeepWorkWindow    `json:"deepWorkWindows"`
	DistractionWindows []DistractionWindow `json:"distractionWindows"`
	EnergyCurve        EnergyCurve         `json:"energyCurve"`
	ActiveDays         int                 `json:"activeDays"`
}

// HasData reports whether any pattern was detected at all.
func (p Patterns) HasData() bool {
	return len(p.PeakHours) > 0 || len(p.DeepWorkWindows) > 0 || len(p.DistractionWindows) > 0
}

type hourBucket struct {
	productive float64
	deep       float64
	observed   float64
}

// DetectPatterns analyses the trailing PatternWindow ending at now. Hours, days and
// window times are taken in now's location. Sparse input yields empty slices, never
// an error.
func (c *Classifier) DetectPatterns(records []model.ActivityRecord, now time.Time) Patterns {
	loc := now.Location()
	windowStart := now.Add(-PatternWindow)
	sorted := SortRecords(records)

	var buckets [24]hourBucket
	days := make(map[string]struct{})
	var deep, distracting []model.ActivityRecord

	for _, record := range sorted {
		start := record.StartTime.In(loc)
		end := record.End(now).In(loc)
		if end.After(now) {
			end = now
		}
		if !end.After(windowStart) || !start.Before(now) || !end.After(start) {
			continue
		}
		if start.Before(windowStart) {
			start = windowStart
		}

		class := c.Classify(record.CategoryName)
		days[start.Format(model.DateLayout)] = struct{}{}

		splitByHour(start, end, func(hour int, minutes float64) {
			buckets[hour].observed += minutes
			if class.IsWork {
				buckets[hour].productive += minutes
			}
			if class.IsDeepWork {
				buckets[hour].deep += minutes
			}
		})

		clipped := record
		clipped.StartTime = start
		clipped.EndTime = &end
		if class.IsDeepWork {
			deep = append(deep, clipped)
		}
		if !class.IsWork {
			distracting = append(distracting, clipped)
		}
	}

	return Patterns{
		PeakHours:          peakHours(buckets),
		DeepWorkWindows:    deepWorkWindows(deep),
		DistractionWindows: distractionWindows(distracting),
		EnergyCurve:        energyCurve(buckets, len(days)),
		ActiveDays:         len(days),
	}
}

// splitByHour distributes [start, end) over local hours of day.
func splitByHour(start, end time.Time, add func(hour int, minutes float64)) {
	cursor := start
	for cursor.Before(end) {
		next := time.Date(cursor.Year(), cursor.Month(), cursor.Day(), cursor.Hour()+1, 0, 0, 0, cursor.Location())
		if next.After(end) {
			next = end
		}
		add(cursor.Hour(), next.Sub(cursor).Minutes())
		cursor = next
	}
}

// peakHours rates every hour with work. Efficiency rises with deep-work density:
// all deep work scores 1, plain work 0.5, no work 0.
func peakHours(buckets [24]hourBucket) []PeakHour {
	hours := make([]PeakHour, 0, 24)
	for hour, bucket := range buckets {
		productive := int(math.Round(bucket.productive))
		if productive <= 0 || bucket.observed <= 0 {
			continue
		}
		efficiency := (bucket.productive + bucket.deep) / (2 * bucket.observed)
		hours = append(hours, PeakHour{
			Hour:              hour,
			ProductiveMinutes: productive,
			Efficiency:        math.Round(math.Min(1, efficiency)*100) / 100,
		})
	}
	sort.SliceStable(hours, func(i, j int) bool {
		if hours[i].ProductiveMinutes != hours[j].ProductiveMinutes {
			return hours[i].ProductiveMinutes > hours[j].ProductiveMinutes
		}
		return hours[i].Hour < hours[j].Hour
	})
	return hours
}

// deepWorkWindows stitches deep-work records separated by at most DeepWorkMergeGap.
// Longest windows come first, ties broken by the most recent.
func deepWorkWindows(records []model.ActivityRecord) []DeepWorkWindow {
	windows := make([]DeepWorkWindow, 0)
	var current *DeepWorkWindow

	closeCurrent := func() {
		if current == nil {
			return
		}
		current.DurationMinutes = int(current.End.Sub(current.Start) / time.Minute)
		if current.DurationMinutes >= MinDeepWorkWindow {
			windows = append(windows, *current)
		}
		current = nil
	}

	for _, record := range records {
		end := *record.EndTime
		if current != nil && record.StartTime.Sub(current.End) <= DeepWorkMergeGap {
			if end.After(current.End) {
				current.End = end
			}
			continue
		}
		closeCurrent()
		current = &DeepWorkWindow{Start: record.StartTime, End: end}
	}
	closeCurrent()

	sort.SliceStable(windows, func(i, j int) bool {
		if windows[i].DurationMinutes != windows[j].DurationMinutes {
			return windows[i].DurationMinutes > windows[j].DurationMinutes
		}
		return windows[i].Start.After(windows[j].Start)
	})
	if len(windows) > MaxDeepWorkWindows {
		windows = windows[:MaxDeepWorkWindows]
	}
	return windows
}

// distractionWindows groups nearby non-work records and keeps groups that are either
// long or frequent.
func distractionWindows(records []model.ActivityRecord) []DistractionWindow {
	windows := make([]DistractionWindow, 0)
	var current *DistractionWindow
	minutesByCategory := map[string]float64{}

	closeCurrent := func() {
		if current == nil {
			return
		}
		current.DurationMinutes = int(current.End.Sub(current.Start) / time.Minute)
		current.DominantCategory = dominantCategory(minutesByCategory)
		if current.DurationMinutes >= DistractionMinMinutes || current.Records >= DistractionMinRecords {
			windows = append(windows, *current)
		}
		current = nil
		minutesByCategory = map[string]float64{}
	}

	for _, record := range records {
		end := *record.EndTime
		if current == nil || record.StartTime.Sub(current.End) > DistractionMergeGap {
			closeCurrent()
			current = &DistractionWindow{Start: record.StartTime, End: end}
		} else if end.After(current.End) {
			current.End = end
		}
		current.Records++
		minutesByCategory[record.CategoryName] += end.Sub(record.StartTime).Minutes()
	}
	closeCurrent()

	sort.SliceStable(windows, func(i, j int) bool {
		if windows[i].DurationMinutes != windows[j].DurationMinutes {
			return windows[i].DurationMinutes > windows[j].DurationMinutes
		}
		return windows[i].Start.After(windows[j].Start)
	})
	if len(windows) > MaxDistractionWindows {
		windows = windows[:MaxDistractionWindows]
	}
	return windows
}

func dominantCategory(minutes map[string]float64) string {
	best := ""
	bestMinutes := -1.0
	for name, value := range minutes {
		if value > bestMinutes || (value == bestMinutes && name < best) {
			best = name
			bestMinutes = value
		}
	}
	return best
}

// energyCurve scores each day part from work density, deep-work ratio and the
// amount of work per active day (an hour a day saturates).
func energyCurve(buckets [24]hourBucket, activeDays int) EnergyCurve {
	var totals [3]hourBucket
	index := map[DayPart]int{Morning: 0, Afternoon: 1, Evening: 2}
	for hour, bucket := range buckets {
		i := index[DayPartOf(hour)]
		totals[i].productive += bucket.productive
		totals[i].deep += bucket.deep
		totals[i].observed += bucket.observed
	}

	level := func(b hourBucket) EnergyLevel {
		if b.observed <= 0 {
			return EnergyLevel{Level: "unknown"}
		}
		density := b.productive / b.observed
		deepRatio := 0.0
		if b.productive > 0 {
			deepRatio = b.deep / b.productive
		}
		days := math.Max(1, float64(activeDays))
		volume := math.Min(1, b.productive/(days*60))

		score := int(math.Round(100 * (0.4*density + 0.3*deepRatio + 0.3*volume)))
		result := EnergyLevel{Score: score, WorkMinutes: int(math.Round(b.productive))}
		switch {
		case score >= 66:
			result.Level = "high"
		case score >= 33:
			result.Level = "medium"
		default:
			result.Level = "low"
		}
		return result
	}

	return EnergyCurve{
		Morning:   level(totals[0]),
		Afternoon: level(totals[1]),
		Evening:   level(totals[2]),
	}
}
