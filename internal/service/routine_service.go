package service

import (
	"context"
	"time"

	"focusflow/backend/internal/ai"
	"focusflow/backend/internal/analytics"
	apperrors "focusflow/backend/internal/errors"
	"focusflow/backend/internal/logger"
	"focusflow/backend/internal/model"
	"focusflow/backend/internal/ratelimit"
)

const insufficientDataExplanation = "Not enough activity logged yet for a personalised routine. " +
	"Here is a balanced default; log a few days of activities and generate again."

// RoutinePayload is what gets cached for a day.
type RoutinePayload struct {
	Routine       *analytics.RoutineRecommendation `json:"routine"`
	Explanation   string                           `json:"explanation"`
	HasEnoughData bool                             `json:"hasEnoughData"`
	AIEnriched    bool                             `json:"aiEnriched"`
	FocusScore    int                              `json:"focusScore"`
	Source        string                           `json:"source,omitempty"`
	GeneratedAt   *time.Time                       `json:"generatedAt,omitempty"`
}

type RoutineResult struct {
	RoutinePayload
	Cached bool `json:"cached"`
	Saved  bool `json:"saved"`
}

// RoutineService runs the per-(user, day) routine state machine:
// cached today, recent generation, rate limit, compute, enrich, upsert.
//
// Concurrent requests for the same user and day share one generation. Across
// processes two requests can still both generate; the upsert keeps one row.
type RoutineService struct {
	generation
}

func NewRoutineService(
	activities ActivityStore,
	summaries SummaryStore,
	limiter ratelimit.Limiter,
	enricher *ai.Enricher,
	classifier *analytics.Classifier,
	options GenerationOptions,
) *RoutineService {
	return &RoutineService{generation: generation{
		activities: activities,
		summaries:  summaries,
		limiter:    limiter,
		enricher:   enricher,
		classifier: classifier,
		options:    options.withDefaults(),
	}}
}

// GetToday returns today's cached routine, or a null routine when none exists.
func (s *RoutineService) GetToday(ctx context.Context, userID string) (*RoutineResult, *apperrors.APIError) {
	today := dateKey(s.now())
	cached := s.loadCache(ctx, func() (*model.CachedSummary, error) {
		return s.summaries.Get(ctx, userID, today, model.KindRoutine)
	})

	var payload RoutinePayload
	if !decodePayload(cached, &payload) {
		return &RoutineResult{}, nil
	}
	return &RoutineResult{RoutinePayload: payload, Cached: true, Saved: true}, nil
}

// Generate returns today's routine, generating it when needed. force skips the
// cache reads but not the rate limit.
func (s *RoutineService) Generate(ctx context.Context, userID string, force bool) (*RoutineResult, *apperrors.APIError) {
	now := s.now()
	key := userID + "|" + dateKey(now)
	if force {
		key += "|force"
	}

	// Followers share the leader's run, so it must outlive the leader's request.
	shared := context.WithoutCancel(ctx)
	value, _, _ := s.group.Do(key, func() (interface{}, error) {
		result, apiErr := s.generate(shared, userID, now, force)
		return routineOutcome{result: result, apiErr: apiErr}, nil
	})
	outcome := value.(routineOutcome)
	return outcome.result, outcome.apiErr
}

type routineOutcome struct {
	result *RoutineResult
	apiErr *apperrors.APIError
}

func (s *RoutineService) generate(ctx context.Context, userID string, now time.Time, force bool) (*RoutineResult, *apperrors.APIError) {
	today := dateKey(now)

	if !force {
		if result := s.cachedResult(ctx, userID, today, now); result != nil {
			return result, nil
		}
	}

	from := now.AddDate(0, 0, -s.options.LookbackDays)
	records, apiErr := s.fetchRecords(ctx, userID, from, now)
	if apiErr != nil {
		return nil, apiErr
	}

	if len(records) < s.options.MinRecordsForRoutine {
		baseline := analytics.DefaultRoutine()
		baseline.Explanation = insufficientDataExplanation
		return &RoutineResult{RoutinePayload: RoutinePayload{
			Routine:       &baseline,
			Explanation:   baseline.Explanation,
			HasEnoughData: false,
			Source:        SourceBaseline,
			GeneratedAt:   &now,
		}}, nil
	}

	// Only real generations count against the hourly cap.
	if apiErr := s.reserve(ctx, userID, model.KindRoutine, now); apiErr != nil {
		return nil, apiErr
	}

	report := s.classifier.Analyze(records, now)
	routine, outcome := s.enricher.CoachRoutine(ctx, report)

	if outcome == ai.OutcomeRateLimited {
		if previous := s.previousDay(ctx, userID, today); previous != nil {
			logger.Warn("ai quota exhausted, serving previous routine", "user_id", userID, "kind", model.KindRoutine, "date", today)
			return previous, nil
		}
	}
	if outcome != ai.OutcomeOK {
		logger.Warn("ai enrichment unavailable, using baseline routine", "user_id", userID, "kind", model.KindRoutine, "date", today, "outcome", outcome)
	}

	payload := RoutinePayload{
		Routine:       &routine,
		Explanation:   routine.Explanation,
		HasEnoughData: true,
		AIEnriched:    outcome == ai.OutcomeOK,
		FocusScore:    report.Score,
		Source:        SourceBaseline,
		GeneratedAt:   &now,
	}
	if payload.AIEnriched {
		payload.Source = SourceAI
	}

	saved := s.saveCache(ctx, userID, today, model.KindRoutine, payload, payload.AIEnriched, now)
	return &RoutineResult{RoutinePayload: payload, Saved: saved}, nil
}

// cachedResult serves today's row or, failing that, a generation within the
// recent window (which may be dated yesterday just after midnight).
func (s *RoutineService) cachedResult(ctx context.Context, userID, today string, now time.Time) *RoutineResult {
	var payload RoutinePayload

	cached := s.loadCache(ctx, func() (*model.CachedSummary, error) {
		return s.summaries.Get(ctx, userID, today, model.KindRoutine)
	})
	if decodePayload(cached, &payload) {
		return &RoutineResult{RoutinePayload: payload, Cached: true, Saved: true}
	}

	latest := s.loadCache(ctx, func() (*model.CachedSummary, error) {
		return s.summaries.GetLatest(ctx, userID, model.KindRoutine)
	})
	if latest != nil && now.Sub(latest.UpdatedAt) <= s.options.RecentWindow && decodePayload(latest, &payload) {
		return &RoutineResult{RoutinePayload: payload, Cached: true, Saved: true}
	}
	return nil
}

func (s *RoutineService) previousDay(ctx context.Context, userID, today string) *RoutineResult {
	previous := s.loadCache(ctx, func() (*model.CachedSummary, error) {
		return s.summaries.GetLatestBefore(ctx, userID, model.KindRoutine, today)
	})

	var payload RoutinePayload
	if !decodePayload(previous, &payload) || payload.Routine == nil {
		return nil
	}
	payload.Source = SourceYesterday
	return &RoutineResult{RoutinePayload: payload, Cached: true}
}
