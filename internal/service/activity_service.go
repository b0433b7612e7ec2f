package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "focusflow/backend/internal/errors"
	"focusflow/backend/internal/logger"
	"focusflow/backend/internal/model"
	"focusflow/backend/internal/repository"
)

const (
	maxActivityLength = 200
	maxListRange      = 90 * 24 * time.Hour
)

type ActivityService struct {
	activityRepo *repository.ActivityRepository
	now          func() time.Time
}

func NewActivityService(activityRepo *repository.ActivityRepository) *ActivityService {
	return &ActivityService{activityRepo: activityRepo, now: time.Now}
}

type CreateActivityInput struct {
	Activity     string
	CategoryName string
	StartTime    time.Time
	EndTime      *time.Time
}

func (s *ActivityService) Create(ctx context.Context, userID string, input CreateActivityInput) (*model.ActivityRecord, *apperrors.APIError) {
	activity := strings.TrimSpace(input.Activity)
	if activity == "" {
		return nil, apperrors.BadRequest("invalid_activity", "activity is required")
	}
	if len(activity) > maxActivityLength {
		return nil, apperrors.BadRequest("invalid_activity", "activity must be at most 200 characters")
	}
	if input.StartTime.IsZero() {
		return nil, apperrors.BadRequest("invalid_start_time", "startTime is required")
	}
	if input.EndTime != nil && input.EndTime.Before(input.StartTime) {
		return nil, apperrors.BadRequest("invalid_end_time", "endTime must not be before startTime")
	}

	now := s.now().UTC()
	record := model.ActivityRecord{
		ID:           uuid.NewString(),
		UserID:       userID,
		Activity:     activity,
		CategoryName: strings.TrimSpace(input.CategoryName),
		StartTime:    input.StartTime.UTC(),
		CreatedAt:    now,
	}
	if input.EndTime != nil {
		end := input.EndTime.UTC()
		record.EndTime = &end
	}

	if err := s.activityRepo.Create(ctx, &record); err != nil {
		logger.Error("create activity", "error", err, "user_id", userID)
		return nil, apperrors.Internal("failed to create activity")
	}
	if record.CategoryName == "" {
		record.CategoryName = model.DefaultCategoryName
	}
	return &record, nil
}

// List returns records overlapping [from, to). Zero bounds default to the last
// seven days.
func (s *ActivityService) List(ctx context.Context, userID string, from, to time.Time) ([]model.ActivityRecord, *apperrors.APIError) {
	if to.IsZero() {
		to = s.now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -7)
	}
	if !from.Before(to) {
		return nil, apperrors.BadRequest("invalid_range", "from must be before to")
	}
	if to.Sub(from) > maxListRange {
		return nil, apperrors.BadRequest("invalid_range", "range must be at most 90 days")
	}

	records, err := s.activityRepo.ListRange(ctx, userID, from, to)
	if err != nil {
		if errors.Is(err, repository.ErrSchemaMissing) {
			return []model.ActivityRecord{}, nil
		}
		logger.Error("list activities", "error", err, "user_id", userID)
		return nil, apperrors.Internal("failed to list activities")
	}
	return records, nil
}

// Stop closes a running activity at the current time.
func (s *ActivityService) Stop(ctx context.Context, userID, id string) (*model.ActivityRecord, *apperrors.APIError) {
	record, err := s.activityRepo.Get(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("activity_not_found", "activity not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load activity")
	}
	if !record.IsOpen() {
		return nil, apperrors.Conflict("activity_not_running", "activity already stopped", map[string]interface{}{"endTime": record.EndTime})
	}

	end := s.now().UTC()
	if end.Before(record.StartTime) {
		end = record.StartTime
	}
	if err := s.activityRepo.Stop(ctx, userID, id, end); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Conflict("activity_not_running", "activity already stopped", nil)
		}
		return nil, apperrors.Internal("failed to stop activity")
	}
	record.EndTime = &end
	return record, nil
}

func (s *ActivityService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	err := s.activityRepo.Delete(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("activity_not_found", "activity not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete activity")
	}
	return nil
}
