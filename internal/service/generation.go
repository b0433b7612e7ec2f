package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"focusflow/backend/internal/ai"
	"focusflow/backend/internal/analytics"
	apperrors "focusflow/backend/internal/errors"
	"focusflow/backend/internal/logger"
	"focusflow/backend/internal/model"
	"focusflow/backend/internal/ratelimit"
	"focusflow/backend/internal/repository"
)

type ActivityStore interface {
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]model.ActivityRecord, error)
}

type SummaryStore interface {
	Get(ctx context.Context, userID, date, kind string) (*model.CachedSummary, error)
	GetLatest(ctx context.Context, userID, kind string) (*model.CachedSummary, error)
	GetLatestBefore(ctx context.Context, userID, kind, date string) (*model.CachedSummary, error)
	Upsert(ctx context.Context, summary *model.CachedSummary) (*model.CachedSummary, error)
}

const (
	SourceAI        = "ai"
	SourceBaseline  = "baseline"
	SourceYesterday = "yesterday"
)

// GenerationOptions tune the generate-and-cache flow shared by routines and
// summaries. Zero values take the defaults below.
type GenerationOptions struct {
	Location             *time.Location
	LookbackDays         int
	MinRecordsForRoutine int
	RecentWindow         time.Duration
	RetryDelay           time.Duration
	Now                  func() time.Time
}

func (o GenerationOptions) withDefaults() GenerationOptions {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.LookbackDays <= 0 {
		o.LookbackDays = 7
	}
	if o.MinRecordsForRoutine <= 0 {
		o.MinRecordsForRoutine = 5
	}
	if o.RecentWindow <= 0 {
		o.RecentWindow = 10 * time.Minute
	}
	if o.RetryDelay < 0 {
		o.RetryDelay = 0
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// generation holds the collaborators both generating services use.
type generation struct {
	activities ActivityStore
	summaries  SummaryStore
	limiter    ratelimit.Limiter
	enricher   *ai.Enricher
	classifier *analytics.Classifier
	options    GenerationOptions
	group      singleflight.Group
}

func (g *generation) now() time.Time {
	return g.options.Now().In(g.options.Location)
}

func dateKey(t time.Time) string {
	return t.Format(model.DateLayout)
}

func storageError(message string) *apperrors.APIError {
	return apperrors.New(http.StatusInternalServerError, "storage_error", message)
}

// withRetry runs fn and, on a transient store error, once more after the
// configured delay.
func (g *generation) withRetry(ctx context.Context, fn func() error) error {
	err := fn()
	if !repository.IsTransient(err) {
		return err
	}

	logger.Warn("transient store error, retrying", "error", err, "delay", g.options.RetryDelay)
	timer := time.NewTimer(g.options.RetryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	return fn()
}

// loadCache returns nil without error when nothing usable is cached. A missing
// table or a store still failing after the retry degrades to "no cache".
func (g *generation) loadCache(ctx context.Context, lookup func() (*model.CachedSummary, error)) *model.CachedSummary {
	var cached *model.CachedSummary
	err := g.withRetry(ctx, func() error {
		var err error
		cached, err = lookup()
		return err
	})
	switch {
	case err == nil:
		return cached
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case errors.Is(err, repository.ErrSchemaMissing):
		logger.Warn("summary cache table missing, serving uncached", "error", err)
		return nil
	default:
		logger.Warn("summary cache read failed, serving uncached", "error", err)
		return nil
	}
}

// saveCache upserts the payload. Failures are logged and reported as false.
func (g *generation) saveCache(ctx context.Context, userID, date, kind string, payload interface{}, aiEnriched bool, now time.Time) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("encode cached summary", "error", err, "user_id", userID, "kind", kind)
		return false
	}

	entry := &model.CachedSummary{
		UserID:     userID,
		Date:       date,
		Kind:       kind,
		Payload:    data,
		AIEnriched: aiEnriched,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}
	err = g.withRetry(ctx, func() error {
		_, upsertErr := g.summaries.Upsert(ctx, entry)
		return upsertErr
	})
	if err != nil {
		logger.Warn("cache write failed, returning uncached result", "error", err, "user_id", userID, "kind", kind, "date", date)
		return false
	}
	return true
}

// reserve applies the per-user generation cap. Limiter storage errors let the
// request through.
func (g *generation) reserve(ctx context.Context, userID, scope string, now time.Time) *apperrors.APIError {
	if g.limiter == nil {
		return nil
	}

	res, err := g.limiter.Reserve(ctx, userID, scope, now)
	if err != nil {
		logger.Warn("rate limiter unavailable, allowing generation", "error", err, "user_id", userID, "kind", scope)
		return nil
	}
	if !res.Allowed {
		return apperrors.TooManyRequests("rate_limited", "too many generations, try again later", res.RetryAfter)
	}
	return nil
}

// fetchRecords loads records overlapping [from, to). A missing table reads as no data.
func (g *generation) fetchRecords(ctx context.Context, userID string, from, to time.Time) ([]model.ActivityRecord, *apperrors.APIError) {
	var records []model.ActivityRecord
	err := g.withRetry(ctx, func() error {
		var err error
		records, err = g.activities.ListRange(ctx, userID, from, to)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrSchemaMissing) {
			logger.Warn("activities table missing, treating as empty", "error", err, "user_id", userID)
			return []model.ActivityRecord{}, nil
		}
		logger.Error("fetch activities", "error", err, "user_id", userID)
		return nil, storageError("failed to load activities")
	}
	return records, nil
}

func decodePayload(entry *model.CachedSummary, target interface{}) bool {
	if entry == nil {
		return false
	}
	if err := json.Unmarshal(entry.Payload, target); err != nil {
		logger.Warn("discarding unreadable cached summary", "error", err, "user_id", entry.UserID, "kind", entry.Kind, "date", entry.Date)
		return false
	}
	return true
}
