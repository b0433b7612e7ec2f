package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusflow/backend/internal/model"
)

// dailyDeepWork logs 09:00-11:00 "Deep Work" on each of the seven days ending at now.
func dailyDeepWork(now time.Time) []model.ActivityRecord {
	var records []model.ActivityRecord
	for d := 0; d < 7; d++ {
		day := now.AddDate(0, 0, -d)
		start := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC)
		records = append(records, record("Deep Work", start, 120))
	}
	return records
}

func TestWeekOfMorningDeepWork(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	report := defaultClassifier().Analyze(dailyDeepWork(now), now)

	patterns := report.Patterns
	require.NotEmpty(t, patterns.PeakHours)
	assert.Equal(t, 9, patterns.PeakHours[0].Hour)
	assert.Equal(t, 420, patterns.PeakHours[0].ProductiveMinutes)
	assert.Equal(t, 1.0, patterns.PeakHours[0].Efficiency)
	assert.Equal(t, 10, patterns.PeakHours[1].Hour)

	require.Len(t, patterns.DeepWorkWindows, 7)
	for _, window := range patterns.DeepWorkWindows {
		assert.Equal(t, 120, window.DurationMinutes)
	}
	assert.Equal(t, 19, patterns.DeepWorkWindows[0].Start.Day(), "ties go to the most recent window")
	assert.Empty(t, patterns.DistractionWindows)
	assert.Equal(t, 7, patterns.ActiveDays)

	assert.Equal(t, "high", patterns.EnergyCurve.Morning.Level)
	assert.Equal(t, 100, patterns.EnergyCurve.Morning.Score)
	assert.Equal(t, "unknown", patterns.EnergyCurve.Afternoon.Level)

	assert.Equal(t, 840, report.Metrics.TotalWorkTime)
	assert.Equal(t, 840, report.Metrics.DeepWorkTime)
	assert.Equal(t, 6, report.Metrics.IdleGaps)
	assert.Equal(t, 80, report.Score)
	assert.GreaterOrEqual(t, report.Score, 85-15)

	var morningDeep *RoutineBlock
	for i, block := range report.Routine.Morning {
		if block.Type == BlockDeepWork {
			morningDeep = &report.Routine.Morning[i]
			break
		}
	}
	require.NotNil(t, morningDeep, "deep work should be scheduled in the morning")
	assert.Equal(t, "09:00", morningDeep.Start)
	assert.Equal(t, 120, morningDeep.DurationMinutes)
}

func TestDetectPatternsUsesLocalHours(t *testing.T) {
	newYork := time.FixedZone("EDT", -4*60*60)
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, newYork)

	// Stored records come back in UTC.
	var records []model.ActivityRecord
	for d := 0; d < 7; d++ {
		day := now.AddDate(0, 0, -d)
		start := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, newYork)
		records = append(records, record("Deep Work", start.UTC(), 120))
	}
	evening := time.Date(2026, 10, 12, 21, 0, 0, 0, newYork)
	records = append(records, record("Social Media", evening.UTC(), 60))

	report := defaultClassifier().Analyze(records, now)
	patterns := report.Patterns

	require.NotEmpty(t, patterns.PeakHours)
	assert.Equal(t, 9, patterns.PeakHours[0].Hour)
	assert.Equal(t, 100, patterns.EnergyCurve.Morning.Score)
	assert.Equal(t, 840, patterns.EnergyCurve.Morning.WorkMinutes)
	assert.Equal(t, "unknown", patterns.EnergyCurve.Afternoon.Level)
	assert.Equal(t, 8, patterns.ActiveDays, "21:00 local on the 12th is 01:00 UTC on the 13th")
	assert.Equal(t, "low", patterns.EnergyCurve.Evening.Level)

	require.Len(t, patterns.DistractionWindows, 1)
	assert.Equal(t, 21, patterns.DistractionWindows[0].Start.Hour())
	assert.Equal(t, 12, patterns.DistractionWindows[0].Start.Day())

	found := false
	for _, block := range report.Routine.Morning {
		if block.Type == BlockDeepWork && block.Start == "09:00" {
			found = true
		}
	}
	assert.True(t, found, "local 09:00 deep work stays in the morning")
	for _, block := range report.Routine.Afternoon {
		assert.NotEqual(t, BlockDeepWork, block.Type)
	}
}

func TestDetectPatternsEmptyAndSparse(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	classifier := defaultClassifier()

	empty := classifier.DetectPatterns(nil, now)
	assert.Empty(t, empty.PeakHours)
	assert.Empty(t, empty.DeepWorkWindows)
	assert.Empty(t, empty.DistractionWindows)
	assert.Equal(t, "unknown", empty.EnergyCurve.Morning.Level)
	assert.False(t, empty.HasData())

	sparse := classifier.DetectPatterns([]model.ActivityRecord{record("Email", now.Add(-time.Hour), 5)}, now)
	assert.Empty(t, sparse.PeakHours)
	assert.Empty(t, sparse.DistractionWindows)
	assert.Equal(t, 1, sparse.ActiveDays)
}

func TestDetectPatternsIgnoresRecordsOutsideWindow(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	old := record("Coding", now.AddDate(0, 0, -9), 60)

	patterns := defaultClassifier().DetectPatterns([]model.ActivityRecord{old}, now)
	assert.Empty(t, patterns.PeakHours)
	assert.Equal(t, 0, patterns.ActiveDays)
}

func TestDeepWorkWindowMergeGap(t *testing.T) {
	now := at(18, 0)
	classifier := defaultClassifier()

	merged := classifier.DetectPatterns([]model.ActivityRecord{
		record("Deep Work", at(9, 0), 40),
		record("Deep Work", at(9, 50), 40),
	}, now)
	require.Len(t, merged.DeepWorkWindows, 1)
	assert.Equal(t, 90, merged.DeepWorkWindows[0].DurationMinutes)

	split := classifier.DetectPatterns([]model.ActivityRecord{
		record("Deep Work", at(9, 0), 40),
		record("Deep Work", at(10, 0), 40),
	}, now)
	require.Len(t, split.DeepWorkWindows, 2)
	assert.Equal(t, 10, split.DeepWorkWindows[0].Start.Hour())
}

func TestDistractionWindowByFrequency(t *testing.T) {
	patterns := defaultClassifier().DetectPatterns([]model.ActivityRecord{
		record("Social Media", at(14, 0), 5),
		record("Social Media", at(14, 10), 5),
		record("Break", at(14, 20), 5),
		record("Social Media", at(16, 0), 5),
	}, at(18, 0))

	require.Len(t, patterns.DistractionWindows, 1)
	window := patterns.DistractionWindows[0]
	assert.Equal(t, 3, window.Records)
	assert.Equal(t, 25, window.DurationMinutes)
	assert.Equal(t, "Social Media", window.DominantCategory)
}

func TestPeakHoursSplitAcrossHourBoundary(t *testing.T) {
	patterns := defaultClassifier().DetectPatterns([]model.ActivityRecord{
		record("Coding", at(9, 30), 60),
		record("Break", at(10, 30), 30),
	}, at(18, 0))

	require.Len(t, patterns.PeakHours, 2)
	assert.Equal(t, PeakHour{Hour: 9, ProductiveMinutes: 30, Efficiency: 0.5}, patterns.PeakHours[0])
	assert.Equal(t, PeakHour{Hour: 10, ProductiveMinutes: 30, Efficiency: 0.25}, patterns.PeakHours[1])
}

func TestDayPartOf(t *testing.T) {
	assert.Equal(t, Morning, DayPartOf(6))
	assert.Equal(t, Morning, DayPartOf(11))
	assert.Equal(t, Afternoon, DayPartOf(12))
	assert.Equal(t, Evening, DayPartOf(18))
	assert.Equal(t, Evening, DayPartOf(2))
}
