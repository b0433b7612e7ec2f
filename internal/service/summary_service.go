package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"focusflow/backend/internal/ai"
	"focusflow/backend/internal/analytics"
	apperrors "focusflow/backend/internal/errors"
	"focusflow/backend/internal/logger"
	"focusflow/backend/internal/model"
	"focusflow/backend/internal/ratelimit"
)

var periodDays = map[string]int{
	model.KindDaily:   1,
	model.KindWeekly:  7,
	model.KindMonthly: 30,
}

type SummaryPayload struct {
	Kind          string                    `json:"kind"`
	PeriodStart   time.Time                 `json:"periodStart"`
	PeriodEnd     time.Time                 `json:"periodEnd"`
	RecordCount   int                       `json:"recordCount"`
	Metrics       analytics.FocusMetrics    `json:"metrics"`
	FocusScore    int                       `json:"focusScore"`
	ScoreLevel    string                    `json:"scoreLevel"`
	TopCategories []analytics.CategoryTotal `json:"topCategories"`
	BiggestBlocks []analytics.TaskBlock     `json:"biggestBlocks"`
	Insights      ai.Insights               `json:"insights"`
	InsightsHTML  string                    `json:"insightsHtml"`
	HasEnoughData bool                      `json:"hasEnoughData"`
	AIEnriched    bool                      `json:"aiEnriched"`
	Source        string                    `json:"source"`
	GeneratedAt   time.Time                 `json:"generatedAt"`
}

type SummaryResult struct {
	Summary *SummaryPayload `json:"summary"`
	Cached  bool            `json:"cached"`
	Saved   bool            `json:"saved"`
}

// SummaryService generates daily, weekly and monthly summaries with the same
// cache and rate-limit rules as routines.
type SummaryService struct {
	generation
	markdown goldmark.Markdown
}

func NewSummaryService(
	activities ActivityStore,
	summaries SummaryStore,
	limiter ratelimit.Limiter,
	enricher *ai.Enricher,
	classifier *analytics.Classifier,
	options GenerationOptions,
) *SummaryService {
	return &SummaryService{
		generation: generation{
			activities: activities,
			summaries:  summaries,
			limiter:    limiter,
			enricher:   enricher,
			classifier: classifier,
			options:    options.withDefaults(),
		},
		markdown: goldmark.New(),
	}
}

func validPeriod(kind string) *apperrors.APIError {
	if !model.IsSummaryPeriod(kind) {
		return apperrors.BadRequest("invalid_period", "period must be daily, weekly or monthly")
	}
	return nil
}

func (s *SummaryService) GetToday(ctx context.Context, userID, kind string) (*SummaryResult, *apperrors.APIError) {
	if apiErr := validPeriod(kind); apiErr != nil {
		return nil, apiErr
	}

	today := dateKey(s.now())
	cached := s.loadCache(ctx, func() (*model.CachedSummary, error) {
		return s.summaries.Get(ctx, userID, today, kind)
	})

	var payload SummaryPayload
	if !decodePayload(cached, &payload) {
		return &SummaryResult{}, nil
	}
	return &SummaryResult{Summary: &payload, Cached: true, Saved: true}, nil
}

func (s *SummaryService) Generate(ctx context.Context, userID, kind string, force bool) (*SummaryResult, *apperrors.APIError) {
	if apiErr := validPeriod(kind); apiErr != nil {
		return nil, apiErr
	}

	now := s.now()
	key := userID + "|" + dateKey(now) + "|" + kind
	if force {
		key += "|force"
	}

	shared := context.WithoutCancel(ctx)
	value, _, _ := s.group.Do(key, func() (interface{}, error) {
		result, apiErr := s.generate(shared, userID, kind, now, force)
		return summaryOutcome{result: result, apiErr: apiErr}, nil
	})
	outcome := value.(summaryOutcome)
	return outcome.result, outcome.apiErr
}

type summaryOutcome struct {
	result *SummaryResult
	apiErr *apperrors.APIError
}

func (s *SummaryService) generate(ctx context.Context, userID, kind string, now time.Time, force bool) (*SummaryResult, *apperrors.APIError) {
	today := dateKey(now)

	if !force {
		var payload SummaryPayload
		cached := s.loadCache(ctx, func() (*model.CachedSummary, error) {
			return s.summaries.Get(ctx, userID, today, kind)
		})
		if decodePayload(cached, &payload) {
			return &SummaryResult{Summary: &payload, Cached: true, Saved: true}, nil
		}
	}

	days := periodDays[kind]
	from := now.AddDate(0, 0, -days)
	records, apiErr := s.fetchRecords(ctx, userID, from, now)
	if apiErr != nil {
		return nil, apiErr
	}

	report := s.classifier.Analyze(records, now)
	payload := SummaryPayload{
		Kind:          kind,
		PeriodStart:   from,
		PeriodEnd:     now,
		RecordCount:   len(records),
		Metrics:       report.Metrics,
		FocusScore:    report.Score,
		ScoreLevel:    analytics.ScoreLevel(report.Score),
		TopCategories: report.TopCategories,
		BiggestBlocks: report.BiggestBlocks,
		HasEnoughData: len(records) > 0,
		Source:        SourceBaseline,
		GeneratedAt:   now,
	}

	if !payload.HasEnoughData {
		payload.Insights = ai.Insights{
			Summary:     fmt.Sprintf("No activity logged in the last %s yet.", periodLabel(days)),
			Highlights:  []string{},
			Suggestions: []string{"Log what you work on as you go so the next summary has something to say."},
		}
		payload.InsightsHTML = s.renderInsights(payload.Insights)
		return &SummaryResult{Summary: &payload}, nil
	}

	if apiErr := s.reserve(ctx, userID, kind, now); apiErr != nil {
		return nil, apiErr
	}

	insights, outcome := s.enricher.Summarize(ctx, kind, days, report)
	if outcome == ai.OutcomeRateLimited {
		if previous := s.previousDay(ctx, userID, kind, today); previous != nil {
			logger.Warn("ai quota exhausted, serving previous summary", "user_id", userID, "kind", kind, "date", today)
			return previous, nil
		}
	}
	if outcome == ai.OutcomeOK {
		payload.Insights = *insights
		payload.AIEnriched = true
		payload.Source = SourceAI
	} else {
		logger.Warn("ai enrichment unavailable, using baseline summary", "user_id", userID, "kind", kind, "date", today, "outcome", outcome)
		payload.Insights = baselineInsights(report, days)
	}
	payload.InsightsHTML = s.renderInsights(payload.Insights)

	saved := s.saveCache(ctx, userID, today, kind, payload, payload.AIEnriched, now)
	return &SummaryResult{Summary: &payload, Saved: saved}, nil
}

func (s *SummaryService) previousDay(ctx context.Context, userID, kind, today string) *SummaryResult {
	previous := s.loadCache(ctx, func() (*model.CachedSummary, error) {
		return s.summaries.GetLatestBefore(ctx, userID, kind, today)
	})

	var payload SummaryPayload
	if !decodePayload(previous, &payload) {
		return nil
	}
	payload.Source = SourceYesterday
	return &SummaryResult{Summary: &payload, Cached: true}
}

func (s *SummaryService) renderInsights(insights ai.Insights) string {
	var md strings.Builder
	md.WriteString(insights.Summary)
	md.WriteString("\n")
	writeList(&md, "Highlights", insights.Highlights)
	writeList(&md, "Suggestions", insights.Suggestions)

	var out bytes.Buffer
	if err := s.markdown.Convert([]byte(md.String()), &out); err != nil {
		logger.Warn("render insights markdown", "error", err)
		return ""
	}
	return out.String()
}

func writeList(md *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(md, "\n### %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(md, "- %s\n", item)
	}
}

// baselineInsights is the rule-based text used when no AI answer is available.
func baselineInsights(report analytics.Report, days int) ai.Insights {
	m := report.Metrics
	insights := ai.Insights{
		Summary: fmt.Sprintf(
			"Over the last %s you logged %s of work, %s of it deep work. Your focus score is %d (%s).",
			periodLabel(days), formatMinutes(m.TotalWorkTime), formatMinutes(m.DeepWorkTime),
			report.Score, analytics.ScoreLevel(report.Score),
		),
		Highlights:  []string{},
		Suggestions: []string{},
	}

	if len(report.TopCategories) > 0 {
		top := report.TopCategories[0]
		insights.Highlights = append(insights.Highlights, fmt.Sprintf("Most time went to %s (%s).", top.Name, formatMinutes(top.Minutes)))
	}
	if len(report.BiggestBlocks) > 0 {
		block := report.BiggestBlocks[0]
		insights.Highlights = append(insights.Highlights, fmt.Sprintf("Longest stretch: %s for %s.", block.Activity, formatMinutes(block.DurationMinutes)))
	}
	if m.LongestWorkBlock >= 60 {
		insights.Highlights = append(insights.Highlights, fmt.Sprintf("You held focus for %s in one block.", formatMinutes(m.LongestWorkBlock)))
	}

	if m.TotalWorkTime > 0 && float64(m.DeepWorkTime)/float64(m.TotalWorkTime) < 0.3 {
		insights.Suggestions = append(insights.Suggestions, "Protect one 90-minute deep work block at your peak hour.")
	}
	if m.ContextSwitches > 5 {
		insights.Suggestions = append(insights.Suggestions, "Batch similar tasks to cut down on context switches.")
	}
	if m.IdleGaps > 2 {
		insights.Suggestions = append(insights.Suggestions, "Plan what comes next before each break to shorten idle gaps.")
	}
	if m.TotalWorkTime > 0 && m.BreakFrequency < 0.5 {
		insights.Suggestions = append(insights.Suggestions, "Take a short break roughly every hour of work.")
	}
	if len(insights.Suggestions) == 0 {
		insights.Suggestions = append(insights.Suggestions, "Keep the current rhythm; it is working.")
	}
	return insights
}

func periodLabel(days int) string {
	if days == 1 {
		return "day"
	}
	return fmt.Sprintf("%d days", days)
}

func formatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("%dh", minutes/60)
	}
	return fmt.Sprintf("%dh%02dm", minutes/60, minutes%60)
}
