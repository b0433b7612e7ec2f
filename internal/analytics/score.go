package analytics

import "math"

// FocusScore maps metrics to a 0..100 score. The order of adjustments and every
// threshold here are part of the scoring contract.
func FocusScore(m FocusMetrics) int {
	if m.TotalWorkTime == 0 {
		return 0
	}

	score := 50.0

	deepWorkRatio := float64(m.DeepWorkTime) / float64(m.TotalWorkTime)
	score += deepWorkRatio * 20

	switch {
	case m.LongestWorkBlock >= 120:
		score += 15
	case m.LongestWorkBlock >= 60:
		score += 10
	case m.LongestWorkBlock >= 30:
		score += 5
	}

	switch {
	case m.AverageBlockDuration >= 60:
		score += 10
	case m.AverageBlockDuration >= 30:
		score += 5
	}

	switch {
	case m.ContextSwitches > 10:
		score -= 20
	case m.ContextSwitches > 5:
		score -= 10
	case m.ContextSwitches > 2:
		score -= 5
	}

	score -= math.Min(float64(m.IdleGaps*5), 15)

	switch {
	case m.BreakFrequency >= 0.5 && m.BreakFrequency <= 2:
		score += 10
	case m.BreakFrequency > 2:
		score -= 5
	}

	return int(math.Round(math.Max(0, math.Min(100, score))))
}

// ScoreLevel buckets a score for display and prompts.
func ScoreLevel(score int) string {
	switch {
	case score >= 75:
		return "high"
	case score >= 50:
		return "medium"
	case score > 0:
		return "low"
	default:
		return "none"
	}
}
