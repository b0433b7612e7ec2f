package model

import (
	"encoding/json"
	"time"
)

const (
	KindRoutine = "routine"
	KindDaily   = "daily"
	KindWeekly  = "weekly"
	KindMonthly = "monthly"
)

// DateLayout is the calendar-day key used for cached summaries.
const DateLayout = "2006-01-02"

// CachedSummary is one generated payload per user, calendar day and kind.
type CachedSummary struct {
	UserID     string          `json:"userId"`
	Date       string          `json:"date"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	AIEnriched bool            `json:"aiEnriched"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func IsSummaryPeriod(kind string) bool {
	return kind == KindDaily || kind == KindWeekly || kind == KindMonthly
}
