package ai

import (
	"fmt"
	"strings"

	"focusflow/backend/internal/analytics"
)

// Prompts carry aggregates only. Individual records never leave the process.

func summaryPrompt(kind string, days int, report analytics.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a %s productivity summary covering the last %d day(s).\n\n", kind, days)
	writeStats(&b, report)
	b.WriteString(`
Respond with JSON: {"summary": string (2-4 sentences, second person), "highlights": [string, up to 3], "suggestions": [string, up to 3]}.
Ground every statement in the numbers above. Do not invent activities.`)
	return b.String()
}

func routinePrompt(report analytics.Report) string {
	var b strings.Builder
	b.WriteString("Design tomorrow's daily routine for this person from their last week of activity.\n\n")
	writeStats(&b, report)

	b.WriteString("\nEnergy by part of day:\n")
	for _, part := range []analytics.DayPart{analytics.Morning, analytics.Afternoon, analytics.Evening} {
		level := report.Patterns.EnergyCurve.Part(part)
		fmt.Fprintf(&b, "- %s: %s (%d/100, %d work min)\n", part, level.Level, level.Score, level.WorkMinutes)
	}
	if windows := report.Patterns.DeepWorkWindows; len(windows) > 0 {
		fmt.Fprintf(&b, "Longest deep-work stretch: %d min starting %s\n", windows[0].DurationMinutes, windows[0].Start.Format("15:04"))
	}
	if distractions := report.Patterns.DistractionWindows; len(distractions) > 0 {
		fmt.Fprintf(&b, "Most common distraction: %s around %s\n", distractions[0].DominantCategory, distractions[0].Start.Format("15:04"))
	}

	b.WriteString(`
Respond with JSON: {"morning": [block], "afternoon": [block], "evening": [block], "suggestedBreaks": [{"time": "HH:MM", "durationMinutes": int}], "explanation": string}.
A block is {"type": one of deep_work|shallow_work|admin|break|learning|meeting, "start": "HH:MM", "end": "HH:MM"}.
Blocks within a part must be in order and must not overlap. Morning is 06:00-12:00, afternoon 12:00-18:00, evening after 18:00.`)
	return b.String()
}

func writeStats(b *strings.Builder, report analytics.Report) {
	m := report.Metrics
	fmt.Fprintf(b, "Focus score: %d/100\n", report.Score)
	fmt.Fprintf(b, "Work: %d min (deep work %d min), longest block %d min, average block %.0f min\n",
		m.TotalWorkTime, m.DeepWorkTime, m.LongestWorkBlock, m.AverageBlockDuration)
	fmt.Fprintf(b, "Context switches: %d, idle gaps: %d, breaks per work hour: %.2f\n",
		m.ContextSwitches, m.IdleGaps, m.BreakFrequency)

	if len(report.TopCategories) > 0 {
		b.WriteString("Top categories:\n")
		for _, category := range report.TopCategories {
			fmt.Fprintf(b, "- %s: %d min\n", category.Name, category.Minutes)
		}
	}
	if len(report.BiggestBlocks) > 0 {
		b.WriteString("Biggest task blocks:\n")
		for _, block := range report.BiggestBlocks {
			fmt.Fprintf(b, "- %s (%s): %d min\n", block.Activity, block.CategoryName, block.DurationMinutes)
		}
	}
	if peaks := report.Patterns.PeakHours; len(peaks) > 0 {
		b.WriteString("Peak hours:")
		for i, peak := range peaks {
			if i == 3 {
				break
			}
			fmt.Fprintf(b, " %02d:00 (%d min)", peak.Hour, peak.ProductiveMinutes)
		}
		b.WriteString("\n")
	}
}
