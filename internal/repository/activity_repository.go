package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"focusflow/backend/internal/model"
)

type ActivityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// activityRow is the raw store shape. Category and end time are nullable and are
// resolved in toRecord so nothing loosely typed leaves the repository.
type activityRow struct {
	ID           string         `db:"id"`
	UserID       string         `db:"user_id"`
	Activity     string         `db:"activity"`
	CategoryName sql.NullString `db:"category_name"`
	StartTime    string         `db:"start_time"`
	EndTime      sql.NullString `db:"end_time"`
	CreatedAt    string         `db:"created_at"`
}

const activityColumns = `id, user_id, activity, category_name, start_time, end_time, created_at`

func (r *ActivityRepository) Create(ctx context.Context, record *model.ActivityRecord) error {
	var category interface{}
	if name := strings.TrimSpace(record.CategoryName); name != "" {
		category = name
	}
	var endTime interface{}
	if record.EndTime != nil {
		endTime = formatTime(*record.EndTime)
	}

	_, err := r.db.ExecContext(
		ctx,
		r.db.Rebind(`INSERT INTO activities (`+activityColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		record.ID,
		record.UserID,
		record.Activity,
		category,
		formatTime(record.StartTime),
		endTime,
		formatTime(record.CreatedAt),
	)
	if err != nil {
		return wrap("create activity", err)
	}
	return nil
}

// ListRange returns the user's records that overlap [from, to), oldest first.
// Open records overlap any range that starts before now.
func (r *ActivityRepository) ListRange(ctx context.Context, userID string, from, to time.Time) ([]model.ActivityRecord, error) {
	var rows []activityRow
	err := r.db.SelectContext(
		ctx,
		&rows,
		r.db.Rebind(`SELECT `+activityColumns+`
		 FROM activities
		 WHERE user_id = ?
		   AND start_time < ?
		   AND (end_time IS NULL OR end_time > ?)
		 ORDER BY start_time ASC`),
		userID,
		formatTime(to),
		formatTime(from),
	)
	if err != nil {
		return nil, wrap("list activities", err)
	}

	records := make([]model.ActivityRecord, 0, len(rows))
	for _, row := range rows {
		record, convErr := row.toRecord()
		if convErr != nil {
			return nil, convErr
		}
		records = append(records, *record)
	}
	return records, nil
}

func (r *ActivityRepository) Get(ctx context.Context, userID, id string) (*model.ActivityRecord, error) {
	var row activityRow
	err := r.db.GetContext(
		ctx,
		&row,
		r.db.Rebind(`SELECT `+activityColumns+` FROM activities WHERE id = ? AND user_id = ?`),
		id,
		userID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrap("get activity", err)
	}
	return row.toRecord()
}

// Stop closes an open record. Already closed records are left untouched.
func (r *ActivityRepository) Stop(ctx context.Context, userID, id string, end time.Time) error {
	result, err := r.db.ExecContext(
		ctx,
		r.db.Rebind(`UPDATE activities SET end_time = ? WHERE id = ? AND user_id = ? AND end_time IS NULL`),
		formatTime(end),
		id,
		userID,
	)
	if err != nil {
		return wrap("stop activity", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ActivityRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(
		ctx,
		r.db.Rebind(`DELETE FROM activities WHERE id = ? AND user_id = ?`),
		id,
		userID,
	)
	if err != nil {
		return wrap("delete activity", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (row activityRow) toRecord() (*model.ActivityRecord, error) {
	record := model.ActivityRecord{
		ID:           row.ID,
		UserID:       row.UserID,
		Activity:     row.Activity,
		CategoryName: model.DefaultCategoryName,
	}
	if row.CategoryName.Valid && strings.TrimSpace(row.CategoryName.String) != "" {
		record.CategoryName = strings.TrimSpace(row.CategoryName.String)
	}

	startTime, err := parseTime(row.StartTime)
	if err != nil {
		return nil, fmt.Errorf("parse activity %s start_time: %w", row.ID, err)
	}
	if startTime.IsZero() {
		return nil, fmt.Errorf("activity %s has no start_time", row.ID)
	}
	record.StartTime = startTime

	if row.EndTime.Valid && row.EndTime.String != "" {
		endTime, parseErr := parseTime(row.EndTime.String)
		if parseErr != nil {
			return nil, fmt.Errorf("parse activity %s end_time: %w", row.ID, parseErr)
		}
		record.EndTime = &endTime
	}

	createdAt, err := parseTime(row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse activity %s created_at: %w", row.ID, err)
	}
	record.CreatedAt = createdAt

	return &record, nil
}
