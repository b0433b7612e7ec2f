package ratelimit

import (
	"context"
	"time"
)

// AttemptStore is the persistence the SQL limiter needs.
type AttemptStore interface {
	CountSince(ctx context.Context, userID, scope string, since time.Time) (int, error)
	Record(ctx context.Context, userID, scope string, at time.Time) error
}

// StoreLimiter counts attempts in the record store. Count and insert are separate
// statements, so two concurrent requests can both pass at the boundary.
type StoreLimiter struct {
	store  AttemptStore
	config Config
}

func NewStoreLimiter(store AttemptStore, config Config) *StoreLimiter {
	return &StoreLimiter{store: store, config: config.withDefaults()}
}

func (l *StoreLimiter) Reserve(ctx context.Context, userID, scope string, now time.Time) (Result, error) {
	count, err := l.store.CountSince(ctx, userID, scope, now.Add(-l.config.Window))
	if err != nil {
		return Result{}, err
	}

	res := result(count, l.config, time.Time{}, now)
	if !res.Allowed {
		return res, nil
	}
	if err := l.store.Record(ctx, userID, scope, now); err != nil {
		return Result{}, err
	}
	return res, nil
}
