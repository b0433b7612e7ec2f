package analytics

import (
	"sort"
	"time"

	"focusflow/backend/internal/model"
)

type CategoryTotal struct {
	Name    string `json:"name"`
	Minutes int    `json:"minutes"`
}

type TaskBlock struct {
	Activity        string    `json:"activity"`
	CategoryName    string    `json:"categoryName"`
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"durationMinutes"`
}

// Report bundles the whole deterministic pipeline for one record set.
type Report struct {
	RecordCount   int                   `json:"recordCount"`
	Metrics       FocusMetrics          `json:"metrics"`
	Score         int                   `json:"score"`
	Patterns      Patterns              `json:"patterns"`
	Routine       RoutineRecommendation `json:"routine"`
	TopCategories []CategoryTotal       `json:"topCategories"`
	BiggestBlocks []TaskBlock           `json:"biggestBlocks"`
}

func (c *Classifier) Analyze(records []model.ActivityRecord, now time.Time) Report {
	metrics := c.ComputeMetrics(records, now)
	patterns := c.DetectPatterns(records, now)
	return Report{
		RecordCount:   len(records),
		Metrics:       metrics,
		Score:         FocusScore(metrics),
		Patterns:      patterns,
		Routine:       SynthesizeRoutine(patterns),
		TopCategories: TopCategories(records, now, 5),
		BiggestBlocks: BiggestBlocks(records, now, 3),
	}
}

// TopCategories sums minutes per category, largest first.
func TopCategories(records []model.ActivityRecord, now time.Time, limit int) []CategoryTotal {
	totals := map[string]int{}
	for _, record := range records {
		if minutes := record.DurationMinutes(now); minutes > 0 {
			totals[record.CategoryName] += minutes
		}
	}

	out := make([]CategoryTotal, 0, len(totals))
	for name, minutes := range totals {
		out = append(out, CategoryTotal{Name: name, Minutes: minutes})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes > out[j].Minutes
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// BiggestBlocks returns the longest individual records, timed in now's location.
func BiggestBlocks(records []model.ActivityRecord, now time.Time, limit int) []TaskBlock {
	out := make([]TaskBlock, 0, len(records))
	for _, record := range SortRecords(records) {
		minutes := record.DurationMinutes(now)
		if minutes <= 0 {
			continue
		}
		out = append(out, TaskBlock{
			Activity:        record.Activity,
			CategoryName:    record.CategoryName,
			Start:           record.StartTime.In(now.Location()),
			DurationMinutes: minutes,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DurationMinutes > out[j].DurationMinutes
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
