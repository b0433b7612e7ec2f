// Package ratelimit caps how many generations a user may trigger in a rolling window.
package ratelimit

import (
	"context"
	"time"
)

const (
	DefaultLimit  = 3
	DefaultWindow = time.Hour
)

// Result describes one reservation attempt.
type Result struct {
	Allowed    bool          `json:"allowed"`
	Count      int           `json:"count"`
	Limit      int           `json:"limit"`
	Remaining  int           `json:"remaining"`
	RetryAfter time.Duration `json:"retryAfter"`
}

// Limiter checks the cap for key and, when allowed, records the attempt.
type Limiter interface {
	Reserve(ctx context.Context, userID, scope string, now time.Time) (Result, error)
}

type Config struct {
	Limit  int
	Window time.Duration
}

func (c Config) withDefaults() Config {
	if c.Limit <= 0 {
		c.Limit = DefaultLimit
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	return c
}

func result(count int, cfg Config, oldest time.Time, now time.Time) Result {
	if count >= cfg.Limit {
		retryAfter := cfg.Window
		if !oldest.IsZero() {
			retryAfter = oldest.Add(cfg.Window).Sub(now)
			if retryAfter < 0 {
				retryAfter = 0
			}
		}
		return Result{Allowed: false, Count: count, Limit: cfg.Limit, RetryAfter: retryAfter}
	}
	return Result{Allowed: true, Count: count + 1, Limit: cfg.Limit, Remaining: cfg.Limit - count - 1}
}
