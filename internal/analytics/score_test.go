package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFocusScore(t *testing.T) {
	tests := []struct {
		name    string
		metrics FocusMetrics
		want    int
	}{
		{
			name:    "no work",
			metrics: FocusMetrics{DeepWorkTime: 0, IdleGaps: 3},
			want:    0,
		},
		{
			name: "everything maxed is clamped",
			metrics: FocusMetrics{
				TotalWorkTime: 120, DeepWorkTime: 120, LongestWorkBlock: 120,
				AverageBlockDuration: 120, BreakFrequency: 1,
			},
			want: 100,
		},
		{
			name: "mixed bonuses and penalties",
			metrics: FocusMetrics{
				TotalWorkTime: 100, DeepWorkTime: 50, LongestWorkBlock: 45,
				AverageBlockDuration: 30, ContextSwitches: 3, IdleGaps: 1, BreakFrequency: 3,
			},
			want: 55,
		},
		{
			name: "fragmented day",
			metrics: FocusMetrics{
				TotalWorkTime: 60, LongestWorkBlock: 10, AverageBlockDuration: 10,
				ContextSwitches: 11, IdleGaps: 5,
			},
			want: 15,
		},
		{
			name:    "rounds deep work ratio",
			metrics: FocusMetrics{TotalWorkTime: 90, DeepWorkTime: 30},
			want:    57,
		},
		{
			name:    "six switches",
			metrics: FocusMetrics{TotalWorkTime: 90, ContextSwitches: 6, LongestWorkBlock: 60},
			want:    50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FocusScore(tt.metrics))
		})
	}
}

func TestFocusScoreMonotonicInDeepWork(t *testing.T) {
	base := FocusMetrics{
		TotalWorkTime: 240, LongestWorkBlock: 50, AverageBlockDuration: 35,
		ContextSwitches: 4, IdleGaps: 2, BreakFrequency: 0.75,
	}
	previous := -1
	for deep := 0; deep <= base.TotalWorkTime; deep += 5 {
		m := base
		m.DeepWorkTime = deep
		score := FocusScore(m)
		assert.GreaterOrEqual(t, score, previous, "deep=%d", deep)
		previous = score
	}
}

func TestScoreLevel(t *testing.T) {
	assert.Equal(t, "none", ScoreLevel(0))
	assert.Equal(t, "low", ScoreLevel(30))
	assert.Equal(t, "medium", ScoreLevel(50))
	assert.Equal(t, "high", ScoreLevel(80))
}
