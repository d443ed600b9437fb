package enrollment

import (
	"time"

	"github.com/mehy12/edumate/core"
)

// LearningSpeed controls how many words of topic a single class covers.
type LearningSpeed string

const (
	SpeedSlow   LearningSpeed = "slow"
	SpeedNormal LearningSpeed = "normal"
	SpeedFast   LearningSpeed = "fast"
)

const (
	StatusPlanned = "planned"

	ClassStatusPast     = "past"
	ClassStatusUpcoming = "upcoming"

	EntryApplied = "applied"
	EntrySkipped = "skipped"

	ReasonInvalidSessionIndex = "invalid_session_index"
	ReasonInvalidDate         = "invalid_date"
	ReasonUnknownSession      = "unknown_session"
)

type Enrollment struct {
	ID                  string        `json:"id"`
	UserID              string        `json:"user_id"`
	UserEmail           string        `json:"-"`
	Topic               string        `json:"topic"`
	LearningSpeed       LearningSpeed `json:"learning_speed"`
	EstimatedClassCount int           `json:"estimated_class_count"`
	Status              string        `json:"status"`
	CreatedAt           time.Time     `json:"created_at"` // UTC
}

type ClassSession struct {
	ID                    string     `json:"id"`
	EnrollmentID          string     `json:"enrollment_id"`
	SessionIndex          int        `json:"session_index"`
	Title                 string     `json:"title"`
	Description           *string    `json:"description"`
	ScheduledAt           *time.Time `json:"scheduled_at"` // UTC
	GoogleCalendarEventID *string    `json:"google_calendar_event_id"`
	RemindedAt            *time.Time `json:"-"`
	CreatedAt             time.Time  `json:"created_at"` // UTC
}

// SessionStub is one generated entry of a session plan.
type SessionStub struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// NewEnrollment contains the information needed to create (or estimate) an Enrollment.
type NewEnrollment struct {
	Topic         string `json:"topic" validate:"notblank"`
	LearningSpeed string `json:"learning_speed"`
}

// ScheduleEntry is one raw {session_index, date} pair as sent by the client.
// Both fields are kept untyped so malformed pairs can be skipped instead of failing the whole request.
type ScheduleEntry struct {
	SessionIndex interface{} `json:"session_index"`
	Date         interface{} `json:"date"`
}

type ScheduleRequest struct {
	Dates []ScheduleEntry `json:"dates" validate:"scheduledates"`
}

// EntryResult reports what happened to the entry at Index of a ScheduleRequest.
type EntryResult struct {
	Index        int    `json:"index"`
	SessionIndex *int   `json:"session_index"`
	Status       string `json:"status"`
	Reason       string `json:"reason,omitempty"`
}

type ScheduleResult struct {
	Sessions []ClassSession `json:"sessions"`
	Results  []EntryResult  `json:"results"`
}

// Applied returns the number of entries that updated a session.
func (r ScheduleResult) Applied() int {
	var n int
	for _, res := range r.Results {
		if res.Status == EntryApplied {
			n++
		}
	}
	return n
}

// ScheduledClass is the read-side projection of a scheduled ClassSession.
type ScheduledClass struct {
	ClassSessionID        string    `json:"class_session_id"`
	EnrollmentID          string    `json:"enrollment_id"`
	Topic                 string    `json:"topic"`
	Title                 string    `json:"title"`
	ScheduledAt           time.Time `json:"scheduled_at"`
	GoogleCalendarEventID *string   `json:"google_calendar_event_id"`
	SessionIndex          int       `json:"session_index"`
	TotalClasses          int       `json:"total_classes"`
	Status                string    `json:"status"`
	EnrollmentStatus      string    `json:"enrollment_status"`
}

// DueReminder is a scheduled ClassSession whose learner has not been reminded yet.
type DueReminder struct {
	ClassSessionID string
	EnrollmentID   string
	UserID         string
	UserEmail      string
	Topic          string
	Title          string
	SessionIndex   int
	TotalClasses   int
	ScheduledAt    time.Time
}

type QueryFilter struct {
	UserID string
	Status string `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}
