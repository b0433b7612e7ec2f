package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"focusflow/backend/internal/model"
)

type SummaryRepository struct {
	db *sqlx.DB
}

func NewSummaryRepository(db *sqlx.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

type summaryRow struct {
	UserID     string `db:"user_id"`
	Date       string `db:"date"`
	Kind       string `db:"kind"`
	Payload    string `db:"payload"`
	AIEnriched bool   `db:"ai_enriched"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
}

const summaryColumns = `user_id, date, kind, payload, ai_enriched, created_at, updated_at`

// Get returns the cached entry for (user, date, kind) or ErrNotFound.
func (r *SummaryRepository) Get(ctx context.Context, userID, date, kind string) (*model.CachedSummary, error) {
	var row summaryRow
	err := r.db.GetContext(
		ctx,
		&row,
		r.db.Rebind(`SELECT `+summaryColumns+`
		 FROM summary_cache
		 WHERE user_id = ? AND date = ? AND kind = ?`),
		userID,
		date,
		kind,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrap("get cached summary", err)
	}
	return row.toSummary()
}

// GetLatest returns the most recently written entry of a kind for the user.
func (r *SummaryRepository) GetLatest(ctx context.Context, userID, kind string) (*model.CachedSummary, error) {
	var row summaryRow
	err := r.db.GetContext(
		ctx,
		&row,
		r.db.Rebind(`SELECT `+summaryColumns+`
		 FROM summary_cache
		 WHERE user_id = ? AND kind = ?
		 ORDER BY updated_at DESC
		 LIMIT 1`),
		userID,
		kind,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrap("get latest cached summary", err)
	}
	return row.toSummary()
}

// GetLatestBefore returns the newest entry of a kind dated strictly before date.
func (r *SummaryRepository) GetLatestBefore(ctx context.Context, userID, kind, date string) (*model.CachedSummary, error) {
	var row summaryRow
	err := r.db.GetContext(
		ctx,
		&row,
		r.db.Rebind(`SELECT `+summaryColumns+`
		 FROM summary_cache
		 WHERE user_id = ? AND kind = ? AND date < ?
		 ORDER BY date DESC
		 LIMIT 1`),
		userID,
		kind,
		date,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrap("get previous cached summary", err)
	}
	return row.toSummary()
}

// Upsert writes the single row for (user, date, kind), replacing any earlier
// payload for the same day.
func (r *SummaryRepository) Upsert(ctx context.Context, summary *model.CachedSummary) (*model.CachedSummary, error) {
	_, err := r.db.ExecContext(
		ctx,
		r.db.Rebind(`INSERT INTO summary_cache (`+summaryColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, date, kind) DO UPDATE SET
		     payload = excluded.payload,
		     ai_enriched = excluded.ai_enriched,
		     updated_at = excluded.updated_at`),
		summary.UserID,
		summary.Date,
		summary.Kind,
		string(summary.Payload),
		boolToInt(summary.AIEnriched),
		formatTime(summary.CreatedAt),
		formatTime(summary.UpdatedAt),
	)
	if err != nil {
		return nil, wrap("upsert cached summary", err)
	}
	return r.Get(ctx, summary.UserID, summary.Date, summary.Kind)
}

func (row summaryRow) toSummary() (*model.CachedSummary, error) {
	createdAt, err := parseTime(row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse summary created_at: %w", err)
	}
	updatedAt, err := parseTime(row.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse summary updated_at: %w", err)
	}
	return &model.CachedSummary{
		UserID:     row.UserID,
		Date:       row.Date,
		Kind:       row.Kind,
		Payload:    []byte(row.Payload),
		AIEnriched: row.AIEnriched,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
