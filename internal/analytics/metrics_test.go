package analytics

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusflow/backend/internal/model"
)

var testBase = time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)

func record(category string, start time.Time, minutes int) model.ActivityRecord {
	end := start.Add(time.Duration(minutes) * time.Minute)
	return model.ActivityRecord{
		Activity:     category + " task",
		CategoryName: category,
		StartTime:    start,
		EndTime:      &end,
	}
}

func at(hour, minute int) time.Time {
	return testBase.Add(time.Duration(hour-9)*time.Hour + time.Duration(minute)*time.Minute)
}

func defaultClassifier() *Classifier {
	return NewClassifier(DefaultKeywords())
}

func TestComputeMetricsEmpty(t *testing.T) {
	metrics := defaultClassifier().ComputeMetrics(nil, testBase)
	assert.Equal(t, FocusMetrics{}, metrics)
	assert.Equal(t, 0, FocusScore(metrics))
}

func TestComputeMetricsMergesSameCategory(t *testing.T) {
	records := []model.ActivityRecord{
		record("Coding", at(9, 0), 30),
		record("Coding", at(9, 30), 45),
	}

	metrics := defaultClassifier().ComputeMetrics(records, at(12, 0))

	assert.Equal(t, 0, metrics.ContextSwitches)
	assert.Equal(t, 75, metrics.TotalWorkTime)
	assert.Equal(t, 75, metrics.LongestWorkBlock)
	assert.Equal(t, 75.0, metrics.AverageBlockDuration)
	assert.Equal(t, 0, metrics.IdleGaps)
}

func TestComputeMetricsCountsSwitchBetweenCategories(t *testing.T) {
	records := []model.ActivityRecord{
		record("Coding", at(9, 0), 30),
		record("Learning", at(9, 30), 45),
	}

	metrics := defaultClassifier().ComputeMetrics(records, at(12, 0))

	assert.Equal(t, 1, metrics.ContextSwitches)
	assert.Equal(t, 45, metrics.LongestWorkBlock)
	assert.Equal(t, 37.5, metrics.AverageBlockDuration)
}

func TestComputeMetricsIdleGapsAndBreaks(t *testing.T) {
	records := []model.ActivityRecord{
		record("Coding", at(9, 0), 30),
		record("Break", at(9, 30), 45),
		record("Coding", at(11, 0), 60),
	}

	metrics := defaultClassifier().ComputeMetrics(records, at(13, 0))

	assert.Equal(t, 90, metrics.TotalWorkTime)
	assert.Equal(t, 0, metrics.ContextSwitches)
	assert.Equal(t, 2, metrics.IdleGaps, "long break plus the unlogged gap before 11:00")
	assert.Equal(t, 60, metrics.LongestWorkBlock)
	assert.Equal(t, 45.0, metrics.AverageBlockDuration)
	assert.InDelta(t, 2.0/3.0, metrics.BreakFrequency, 1e-9)
	assert.Equal(t, 65, FocusScore(metrics))
}

func TestComputeMetricsOpenRecordUsesNow(t *testing.T) {
	open := model.ActivityRecord{CategoryName: "Deep Work", StartTime: at(9, 0)}

	metrics := defaultClassifier().ComputeMetrics([]model.ActivityRecord{open}, at(9, 40))

	assert.Equal(t, 40, metrics.TotalWorkTime)
	assert.Equal(t, 40, metrics.DeepWorkTime)
}

func TestComputeMetricsZeroDurationStillSwitches(t *testing.T) {
	records := []model.ActivityRecord{
		record("Coding", at(9, 0), 30),
		record("Learning", at(9, 30), 0),
		record("Coding", at(9, 30), 30),
	}

	metrics := defaultClassifier().ComputeMetrics(records, at(12, 0))

	assert.Equal(t, 2, metrics.ContextSwitches)
	assert.Equal(t, 60, metrics.TotalWorkTime)
	assert.Equal(t, 30, metrics.LongestWorkBlock)
	assert.Equal(t, 30.0, metrics.AverageBlockDuration)
}

func TestComputeMetricsOrderIndependent(t *testing.T) {
	var records []model.ActivityRecord
	categories := []string{"Coding", "Deep Work", "Break", "Email", "Learning", "Coding"}
	cursor := at(8, 0)
	for i := 0; i < 30; i++ {
		minutes := 10 + (i*7)%50
		records = append(records, record(categories[i%len(categories)], cursor, minutes))
		cursor = cursor.Add(time.Duration(minutes+(i%4)*12) * time.Minute)
	}

	classifier := defaultClassifier()
	now := cursor.Add(time.Hour)
	want := classifier.ComputeMetrics(records, now)

	shuffled := make([]model.ActivityRecord, len(records))
	copy(shuffled, records)
	rng := rand.New(rand.NewSource(42))
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	assert.Equal(t, want, classifier.ComputeMetrics(shuffled, now))
	assert.GreaterOrEqual(t, want.TotalWorkTime, want.DeepWorkTime)
	assert.GreaterOrEqual(t, want.DeepWorkTime, 0)
}

func TestClassifierUsesCustomTable(t *testing.T) {
	classifier := NewClassifier(KeywordTable{
		Work:     []string{"study"},
		DeepWork: []string{"exam"},
		Break:    []string{"nap"},
	})

	assert.Equal(t, Classification{IsWork: true, IsDeepWork: true}, classifier.Classify("Exam STUDY"))
	assert.Equal(t, Classification{IsBreak: true}, classifier.Classify("Power Nap"))
	assert.Equal(t, Classification{}, classifier.Classify("Coding"))
}

func TestDefaultClassification(t *testing.T) {
	classifier := defaultClassifier()

	assert.True(t, classifier.Classify("deep work").IsDeepWork)
	assert.True(t, classifier.Classify("Coding").IsWork)
	assert.False(t, classifier.Classify("Deep Sleep").IsDeepWork, "deep work must also be work")
	assert.True(t, classifier.Classify("Rest").IsBreak)
	assert.False(t, classifier.Classify(model.DefaultCategoryName).IsWork)
}

func TestLoadKeywordTable(t *testing.T) {
	path := t.TempDir() + "/rules.yaml"
	require.NoError(t, writeFile(path, "work:\n  - Writing\nbreak:\n  - Walk\n"))

	table, err := LoadKeywordTable(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Writing"}, table.Work)
	assert.Equal(t, DefaultKeywords().DeepWork, table.DeepWork)
	assert.Equal(t, []string{"Walk"}, table.Break)

	_, err = LoadKeywordTable(path + ".missing")
	assert.Error(t, err)
}
