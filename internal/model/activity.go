package model

import "time"

const DefaultCategoryName = "Other"

// ActivityRecord is a single logged activity. EndTime is nil while the activity is
// still running.
type ActivityRecord struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Activity     string     `json:"activity"`
	CategoryName string     `json:"categoryName"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      *time.Time `json:"endTime,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// DurationMinutes returns whole minutes between start and end (or now for open
// records), never negative.
func (r ActivityRecord) DurationMinutes(now time.Time) int {
	end := now
	if r.EndTime != nil {
		end = *r.EndTime
	}
	minutes := int(end.Sub(r.StartTime) / time.Minute)
	if minutes < 0 {
		return 0
	}
	return minutes
}

// End returns the end time, or now when the record is still open.
func (r ActivityRecord) End(now time.Time) time.Time {
	if r.EndTime != nil {
		return *r.EndTime
	}
	return now
}

func (r ActivityRecord) IsOpen() bool {
	return r.EndTime == nil
}
