package service

import (
	"context"
	"sync"
	"time"

	"focusflow/backend/internal/ai"
	"focusflow/backend/internal/analytics"
	"focusflow/backend/internal/model"
	"focusflow/backend/internal/ratelimit"
	"focusflow/backend/internal/repository"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type fakeActivities struct {
	records []model.ActivityRecord
	errs    []error
	calls   int
}

func (f *fakeActivities) ListRange(_ context.Context, _ string, _, _ time.Time) ([]model.ActivityRecord, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.records, nil
}

type memorySummaries struct {
	mu        sync.Mutex
	rows      map[string]model.CachedSummary
	getErr    error
	upsertErr error
	upserts   int
}

func newMemorySummaries() *memorySummaries {
	return &memorySummaries{rows: map[string]model.CachedSummary{}}
}

func (m *memorySummaries) key(userID, date, kind string) string {
	return userID + "|" + date + "|" + kind
}

func (m *memorySummaries) Get(_ context.Context, userID, date, kind string) (*model.CachedSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	row, ok := m.rows[m.key(userID, date, kind)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

func (m *memorySummaries) GetLatest(_ context.Context, userID, kind string) (*model.CachedSummary, error) {
	return m.find(userID, kind, func(row model.CachedSummary, best *model.CachedSummary) bool {
		return best == nil || row.UpdatedAt.After(best.UpdatedAt)
	})
}

func (m *memorySummaries) GetLatestBefore(_ context.Context, userID, kind, date string) (*model.CachedSummary, error) {
	return m.find(userID, kind, func(row model.CachedSummary, best *model.CachedSummary) bool {
		return row.Date < date && (best == nil || row.Date > best.Date)
	})
}

func (m *memorySummaries) find(userID, kind string, better func(model.CachedSummary, *model.CachedSummary) bool) (*model.CachedSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	var best *model.CachedSummary
	for _, row := range m.rows {
		if row.UserID != userID || row.Kind != kind {
			continue
		}
		if better(row, best) {
			candidate := row
			best = &candidate
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	return best, nil
}

func (m *memorySummaries) Upsert(_ context.Context, summary *model.CachedSummary) (*model.CachedSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	m.upserts++
	key := m.key(summary.UserID, summary.Date, summary.Kind)
	row := *summary
	if existing, ok := m.rows[key]; ok {
		row.CreatedAt = existing.CreatedAt
	}
	m.rows[key] = row
	return &row, nil
}

type memoryAttempts struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	err      error
}

func newMemoryAttempts() *memoryAttempts {
	return &memoryAttempts{attempts: map[string][]time.Time{}}
}

func (m *memoryAttempts) CountSince(_ context.Context, userID, scope string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	count := 0
	for _, at := range m.attempts[userID+"|"+scope] {
		if !at.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *memoryAttempts) Record(_ context.Context, userID, scope string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[userID+"|"+scope] = append(m.attempts[userID+"|"+scope], at)
	return nil
}

type countingGenerator struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
}

func (g *countingGenerator) Generate(_ context.Context, _ string, _ bool) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.text, g.err
}

func (g *countingGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

// weekOfDeepWork logs 09:00-11:00 Deep Work on each of the seven days before testNow.
func weekOfDeepWork() []model.ActivityRecord {
	records := make([]model.ActivityRecord, 0, 7)
	for day := 1; day <= 7; day++ {
		start := time.Date(2026, 10, 19-day, 9, 0, 0, 0, time.UTC)
		end := start.Add(2 * time.Hour)
		records = append(records, model.ActivityRecord{
			ID:           "r" + start.Format("0102"),
			UserID:       "user-1",
			Activity:     "Write parser",
			CategoryName: "Deep Work",
			StartTime:    start,
			EndTime:      &end,
		})
	}
	return records
}

type routineFixture struct {
	clock      *fakeClock
	activities *fakeActivities
	summaries  *memorySummaries
	attempts   *memoryAttempts
	generator  *countingGenerator
	classifier *analytics.Classifier
	service    *RoutineService
}

const coachedRoutine = `{"morning":[{"type":"deep_work","start":"09:00","end":"11:00"},{"type":"break","start":"11:00","end":"11:15"}],"explanation":"Guard your 9am peak."}`

func newRoutineFixture() *routineFixture {
	f := &routineFixture{
		clock:      &fakeClock{t: testNow},
		activities: &fakeActivities{records: weekOfDeepWork()},
		summaries:  newMemorySummaries(),
		attempts:   newMemoryAttempts(),
		generator:  &countingGenerator{text: coachedRoutine},
		classifier: analytics.NewClassifier(analytics.DefaultKeywords()),
	}
	f.service = NewRoutineService(
		f.activities,
		f.summaries,
		ratelimit.NewStoreLimiter(f.attempts, ratelimit.Config{}),
		ai.NewEnricher(f.generator),
		f.classifier,
		GenerationOptions{Now: f.clock.Now},
	)
	return f
}
