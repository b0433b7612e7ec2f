package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/guptarohit/asciigraph"

	"focusflow/backend/internal/analytics"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	labelColor   = color.New(color.FgWhite)
	goodColor    = color.New(color.FgGreen)
	fairColor    = color.New(color.FgYellow)
	poorColor    = color.New(color.FgRed)
)

func printReport(out io.Writer, report analytics.Report) {
	m := report.Metrics

	headingColor.Fprintf(out, "Focus report (%d records)\n", report.RecordCount)
	scoreColor(report.Score).Fprintf(out, "Focus score: %d (%s)\n\n", report.Score, analytics.ScoreLevel(report.Score))

	headingColor.Fprintln(out, "Metrics")
	row(out, "Work time", fmt.Sprintf("%d min", m.TotalWorkTime))
	row(out, "Deep work", fmt.Sprintf("%d min", m.DeepWorkTime))
	row(out, "Longest block", fmt.Sprintf("%d min", m.LongestWorkBlock))
	row(out, "Average block", fmt.Sprintf("%.1f min", m.AverageBlockDuration))
	row(out, "Context switches", fmt.Sprintf("%d", m.ContextSwitches))
	row(out, "Idle gaps", fmt.Sprintf("%d", m.IdleGaps))
	row(out, "Breaks per hour", fmt.Sprintf("%.2f", m.BreakFrequency))

	fmt.Fprintln(out)
	headingColor.Fprintln(out, "Energy")
	for _, part := range []analytics.DayPart{analytics.Morning, analytics.Afternoon, analytics.Evening} {
		level := report.Patterns.EnergyCurve.Part(part)
		row(out, string(part), fmt.Sprintf("%s (%d)", level.Level, level.Score))
	}

	if series := hourlySeries(report.Patterns.PeakHours); series != nil {
		fmt.Fprintln(out)
		fmt.Fprintln(out, asciigraph.Plot(series,
			asciigraph.Height(8),
			asciigraph.Width(48),
			asciigraph.Caption("productive minutes by hour of day (00-23)"),
		))
	}

	fmt.Fprintln(out)
	headingColor.Fprintln(out, "Suggested routine")
	printPart(out, "Morning", report.Routine.Morning)
	printPart(out, "Afternoon", report.Routine.Afternoon)
	printPart(out, "Evening", report.Routine.Evening)
	fmt.Fprintln(out, report.Routine.Explanation)
}

// hourlySeries spreads peak hours over a 24-slot series, nil when nothing was logged.
func hourlySeries(peaks []analytics.PeakHour) []float64 {
	if len(peaks) == 0 {
		return nil
	}
	series := make([]float64, 24)
	for _, peak := range peaks {
		series[peak.Hour] = float64(peak.ProductiveMinutes)
	}
	return series
}

func printPart(out io.Writer, title string, blocks []analytics.RoutineBlock) {
	labelColor.Fprintf(out, "  %s\n", title)
	for _, block := range blocks {
		fmt.Fprintf(out, "    %s-%s  %s\n", block.Start, block.End, block.Type)
	}
}

func row(out io.Writer, label, value string) {
	labelColor.Fprintf(out, "  %-18s", label)
	fmt.Fprintln(out, value)
}

func scoreColor(score int) *color.Color {
	switch {
	case score >= 75:
		return goodColor
	case score >= 50:
		return fairColor
	default:
		return poorColor
	}
}
