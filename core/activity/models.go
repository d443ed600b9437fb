package activity

import "time"

type EventType string

const (
	EnrollmentCreated EventType = "enrollment_created"
	ClassesScheduled  EventType = "classes_scheduled"
	QuizSubmitted     EventType = "quiz_submitted"
)

const (
	RangeYear    = "year"
	RangeQuarter = "quarter"

	yearDays    = 365
	quarterDays = 90

	DayLayout = "2006-01-02"
)

type Event struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      EventType `json:"type"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD (UTC)
	Count int    `json:"count"`
}

// Heatmap is the per-day activity count of a user over a range of UTC days, both ends included.
type Heatmap struct {
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	Days      []DayCount `json:"days"`
}

// RangeDays returns the number of days covered by `rng`: an empty range means a year,
// anything unknown means a quarter.
func RangeDays(rng string) int {
	switch rng {
	case "", RangeYear:
		return yearDays
	default:
		return quarterDays
	}
}
