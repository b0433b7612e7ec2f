package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// GenerationRepository keeps the attempt log behind the per-user generation cap.
type GenerationRepository struct {
	db *sqlx.DB
}

func NewGenerationRepository(db *sqlx.DB) *GenerationRepository {
	return &GenerationRepository{db: db}
}

func (r *GenerationRepository) CountSince(ctx context.Context, userID, scope string, since time.Time) (int, error) {
	var count int
	err := r.db.GetContext(
		ctx,
		&count,
		r.db.Rebind(`SELECT COUNT(1) FROM generation_attempts
		 WHERE user_id = ? AND scope = ? AND created_at_ms >= ?`),
		userID,
		scope,
		since.UnixMilli(),
	)
	if err != nil {
		return 0, wrap("count generation attempts", err)
	}
	return count, nil
}

func (r *GenerationRepository) Record(ctx context.Context, userID, scope string, at time.Time) error {
	_, err := r.db.ExecContext(
		ctx,
		r.db.Rebind(`INSERT INTO generation_attempts (id, user_id, scope, created_at_ms) VALUES (?, ?, ?, ?)`),
		uuid.NewString(),
		userID,
		scope,
		at.UnixMilli(),
	)
	if err != nil {
		return wrap("record generation attempt", err)
	}
	return nil
}

// Prune drops attempts older than before.
func (r *GenerationRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(
		ctx,
		r.db.Rebind(`DELETE FROM generation_attempts WHERE created_at_ms < ?`),
		before.UnixMilli(),
	)
	if err != nil {
		return 0, wrap("prune generation attempts", err)
	}
	return result.RowsAffected()
}
