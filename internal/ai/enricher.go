package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"focusflow/backend/internal/analytics"
	"focusflow/backend/internal/logger"
)

// Outcome tells the caller which path produced a result.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeRateLimited Outcome = "rate_limited"
)

type Insights struct {
	Summary     string   `json:"summary"`
	Highlights  []string `json:"highlights"`
	Suggestions []string `json:"suggestions"`
}

// Enricher is safe for concurrent use. A nil generator disables enrichment.
type Enricher struct {
	generator Generator
}

func NewEnricher(generator Generator) *Enricher {
	return &Enricher{generator: generator}
}

func (e *Enricher) Enabled() bool {
	return e != nil && e.generator != nil
}

// Summarize asks for insights over a period report. Insights are nil unless the
// outcome is OutcomeOK.
func (e *Enricher) Summarize(ctx context.Context, kind string, days int, report analytics.Report) (*Insights, Outcome) {
	fields, outcome := e.ask(ctx, summaryPrompt(kind, days, report))
	if outcome != OutcomeOK {
		return nil, outcome
	}

	insights := Insights{
		Summary:     decodeString(fields["summary"]),
		Highlights:  decodeStrings(fields["highlights"]),
		Suggestions: decodeStrings(fields["suggestions"]),
	}
	if insights.Summary == "" {
		return nil, OutcomeUnavailable
	}
	return &insights, OutcomeOK
}

// CoachRoutine asks for a personalised routine and merges it over the baseline
// in report.Routine. Parts the answer omits or gets wrong keep the baseline. On
// any outcome other than OutcomeOK the baseline is returned unchanged.
func (e *Enricher) CoachRoutine(ctx context.Context, report analytics.Report) (analytics.RoutineRecommendation, Outcome) {
	baseline := report.Routine
	fields, outcome := e.ask(ctx, routinePrompt(report))
	if outcome != OutcomeOK {
		return baseline, outcome
	}

	merged, used := MergeRoutine(baseline, fields)
	if used == 0 {
		return baseline, OutcomeUnavailable
	}
	return merged, OutcomeOK
}

// MergeRoutine overlays valid fields of an AI answer on the baseline and
// reports how many fields were taken from the answer.
func MergeRoutine(baseline analytics.RoutineRecommendation, fields map[string]json.RawMessage) (analytics.RoutineRecommendation, int) {
	merged := baseline
	used := 0

	parts := []struct {
		key    string
		target *[]analytics.RoutineBlock
	}{
		{"morning", &merged.Morning},
		{"afternoon", &merged.Afternoon},
		{"evening", &merged.Evening},
	}
	for _, part := range parts {
		var blocks []analytics.RoutineBlock
		if raw, ok := fields[part.key]; !ok || json.Unmarshal(raw, &blocks) != nil {
			continue
		}
		if normalized, ok := analytics.NormalizeBlocks(blocks); ok {
			*part.target = normalized
			used++
		}
	}

	if breaks := decodeBreaks(fields["suggestedBreaks"]); len(breaks) > 0 {
		merged.SuggestedBreaks = breaks
		used++
	}
	if explanation := decodeString(fields["explanation"]); explanation != "" {
		merged.Explanation = explanation
		used++
	}
	return merged, used
}

func (e *Enricher) ask(ctx context.Context, prompt string) (map[string]json.RawMessage, Outcome) {
	if !e.Enabled() {
		return nil, OutcomeUnavailable
	}

	text, err := e.generator.Generate(ctx, prompt, true)
	if errors.Is(err, ErrRateLimited) {
		logger.Warn("ai provider rate limited", "error", err)
		return nil, OutcomeRateLimited
	}
	if err != nil {
		logger.Warn("ai generation failed", "error", err)
		return nil, OutcomeUnavailable
	}

	fields, ok := decodeObject(text)
	if !ok {
		logger.Debug("ai answer was not a JSON object", "length", len(text))
		return nil, OutcomeUnavailable
	}
	return fields, OutcomeOK
}

func decodeString(raw json.RawMessage) string {
	var value string
	if len(raw) == 0 || json.Unmarshal(raw, &value) != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

func decodeStrings(raw json.RawMessage) []string {
	var values []string
	if len(raw) == 0 || json.Unmarshal(raw, &values) != nil {
		return []string{}
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func decodeBreaks(raw json.RawMessage) []analytics.SuggestedBreak {
	var values []analytics.SuggestedBreak
	if len(raw) == 0 || json.Unmarshal(raw, &values) != nil {
		return nil
	}
	out := make([]analytics.SuggestedBreak, 0, len(values))
	for _, value := range values {
		minute, err := analytics.ParseClock(value.Time)
		if err != nil || value.DurationMinutes <= 0 {
			continue
		}
		out = append(out, analytics.SuggestedBreak{
			Time:            analytics.FormatClock(minute),
			DurationMinutes: value.DurationMinutes,
		})
	}
	return out
}
