package analytics

import (
	"sort"
	"time"

	"focusflow/backend/internal/model"
)

// IdleGapThreshold is the span beyond which an unlogged gap or a single non-work
// record counts as an idle gap.
const IdleGapThreshold = 30 * time.Minute

type FocusMetrics struct {
	TotalWorkTime        int     `json:"totalWorkTime"`
	DeepWorkTime         int     `json:"deepWorkTime"`
	ContextSwitches      int     `json:"contextSwitches"`
	LongestWorkBlock     int     `json:"longestWorkBlock"`
	AverageBlockDuration float64 `json:"averageBlockDuration"`
	BreakFrequency       float64 `json:"breakFrequency"`
	IdleGaps             int     `json:"idleGaps"`
}

// SortRecords returns a copy of records ordered by start time. Ties keep input order.
func SortRecords(records []model.ActivityRecord) []model.ActivityRecord {
	sorted := make([]model.ActivityRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})
	return sorted
}

// blockTracker accumulates the current work block and the lengths of closed ones.
type blockTracker struct {
	open    bool
	current int
	closed  []int
}

func (b *blockTracker) extend(minutes int) {
	b.open = true
	b.current += minutes
}

func (b *blockTracker) flush() {
	if b.open && b.current > 0 {
		b.closed = append(b.closed, b.current)
	}
	b.open = false
	b.current = 0
}

// ComputeMetrics walks the records once in start order. Records with a non-positive
// duration add no time, but they still close blocks and take part in switch
// detection.
func (c *Classifier) ComputeMetrics(records []model.ActivityRecord, now time.Time) FocusMetrics {
	var metrics FocusMetrics
	if len(records) == 0 {
		return metrics
	}

	sorted := SortRecords(records)
	blocks := blockTracker{}
	breaks := 0

	var prev *model.ActivityRecord
	prevWasWork := false

	for i := range sorted {
		record := sorted[i]
		duration := record.DurationMinutes(now)
		class := c.Classify(record.CategoryName)

		if prev != nil && record.StartTime.Sub(prev.End(now)) > IdleGapThreshold {
			metrics.IdleGaps++
		}

		if class.IsWork {
			if prevWasWork && !sameCategory(prev.CategoryName, record.CategoryName) {
				metrics.ContextSwitches++
				blocks.flush()
			}
			if duration > 0 {
				metrics.TotalWorkTime += duration
				if class.IsDeepWork {
					metrics.DeepWorkTime += duration
				}
				blocks.extend(duration)
			}
		} else {
			blocks.flush()
			if duration > 0 {
				if class.IsBreak {
					breaks++
				}
				if time.Duration(duration)*time.Minute > IdleGapThreshold {
					metrics.IdleGaps++
				}
			}
		}

		prev = &sorted[i]
		prevWasWork = class.IsWork
	}
	blocks.flush()

	if len(blocks.closed) > 0 {
		total := 0
		for _, length := range blocks.closed {
			total += length
			if length > metrics.LongestWorkBlock {
				metrics.LongestWorkBlock = length
			}
		}
		metrics.AverageBlockDuration = float64(total) / float64(len(blocks.closed))
	}

	if metrics.TotalWorkTime > 0 {
		metrics.BreakFrequency = float64(breaks) / (float64(metrics.TotalWorkTime) / 60)
	}

	return metrics
}
