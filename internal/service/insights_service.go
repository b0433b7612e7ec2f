package service

import (
	"context"
	"time"

	"focusflow/backend/internal/analytics"
	apperrors "focusflow/backend/internal/errors"
)

const maxInsightDays = 30

type FocusInsights struct {
	Days          int                    `json:"days"`
	RecordCount   int                    `json:"recordCount"`
	Metrics       analytics.FocusMetrics `json:"metrics"`
	Score         int                    `json:"score"`
	ScoreLevel    string                 `json:"scoreLevel"`
	Patterns      analytics.Patterns     `json:"patterns"`
	HasEnoughData bool                   `json:"hasEnoughData"`
}

// InsightsService computes the deterministic pipeline on demand. Nothing is cached.
type InsightsService struct {
	classifier *analytics.Classifier
	fetcher    generation
}

func NewInsightsService(activities ActivityStore, classifier *analytics.Classifier, options GenerationOptions) *InsightsService {
	return &InsightsService{
		classifier: classifier,
		fetcher:    generation{activities: activities, options: options.withDefaults()},
	}
}

func (s *InsightsService) Focus(ctx context.Context, userID string, days int) (*FocusInsights, *apperrors.APIError) {
	if days <= 0 {
		days = 7
	}
	if days > maxInsightDays {
		return nil, apperrors.BadRequest("invalid_days", "days must be between 1 and 30")
	}

	now := s.fetcher.now()
	records, apiErr := s.fetcher.fetchRecords(ctx, userID, now.Add(-time.Duration(days)*24*time.Hour), now)
	if apiErr != nil {
		return nil, apiErr
	}

	metrics := s.classifier.ComputeMetrics(records, now)
	score := analytics.FocusScore(metrics)
	return &FocusInsights{
		Days:          days,
		RecordCount:   len(records),
		Metrics:       metrics,
		Score:         score,
		ScoreLevel:    analytics.ScoreLevel(score),
		Patterns:      s.classifier.DetectPatterns(records, now),
		HasEnoughData: len(records) > 0,
	}, nil
}
