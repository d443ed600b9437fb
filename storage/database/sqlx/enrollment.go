package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/mehy12/edumate/core"
	"github.com/mehy12/edumate/core/enrollment"
)

type (
	enrollmentRow struct {
		ID                  string      `db:"id"`
		UserID              string      `db:"user_id"`
		UserEmail           null.String `db:"user_email"`
		Topic               string      `db:"topic"`
		LearningSpeed       string      `db:"learning_speed"`
		EstimatedClassCount int         `db:"estimated_class_count"`
		Status              string      `db:"status"`
		CreatedAt           time.Time   `db:"created_at"`
	}

	sessionRow struct {
		ID                    string      `db:"id"`
		EnrollmentID          string      `db:"enrollment_id"`
		SessionIndex          int         `db:"session_index"`
		Title                 string      `db:"title"`
		Description           null.String `db:"description"`
		ScheduledAt           null.Time   `db:"scheduled_at"`
		GoogleCalendarEventID null.String `db:"google_calendar_event_id"`
		RemindedAt            null.Time   `db:"reminded_at"`
		CreatedAt             time.Time   `db:"created_at"`
	}

	scheduledClassRow struct {
		ClassSessionID        string      `db:"class_session_id"`
		EnrollmentID          string      `db:"enrollment_id"`
		UserID                string      `db:"user_id"`
		UserEmail             null.String `db:"user_email"`
		Topic                 string      `db:"topic"`
		Title                 string      `db:"title"`
		ScheduledAt           time.Time   `db:"scheduled_at"`
		GoogleCalendarEventID null.String `db:"google_calendar_event_id"`
		SessionIndex          int         `db:"session_index"`
		TotalClasses          int         `db:"total_classes"`
		EnrollmentStatus      string      `db:"enrollment_status"`
	}
)

func toEnrollmentRow(enr enrollment.Enrollment) enrollmentRow {
	return enrollmentRow{
		ID:                  enr.ID,
		UserID:              enr.UserID,
		UserEmail:           null.NewString(enr.UserEmail, enr.UserEmail != ""),
		Topic:               enr.Topic,
		LearningSpeed:       string(enr.LearningSpeed),
		EstimatedClassCount: enr.EstimatedClassCount,
		Status:              enr.Status,
		CreatedAt:           enr.CreatedAt.UTC(),
	}
}

func (r enrollmentRow) domain() enrollment.Enrollment {
	return enrollment.Enrollment{
		ID:                  r.ID,
		UserID:              r.UserID,
		UserEmail:           r.UserEmail.String,
		Topic:               r.Topic,
		LearningSpeed:       enrollment.LearningSpeed(r.LearningSpeed),
		EstimatedClassCount: r.EstimatedClassCount,
		Status:              r.Status,
		CreatedAt:           r.CreatedAt.UTC(),
	}
}

func toSessionRow(sess enrollment.ClassSession) sessionRow {
	return sessionRow{
		ID:                    sess.ID,
		EnrollmentID:          sess.EnrollmentID,
		SessionIndex:          sess.SessionIndex,
		Title:                 sess.Title,
		Description:           null.StringFromPtr(sess.Description),
		ScheduledAt:           null.TimeFromPtr(sess.ScheduledAt),
		GoogleCalendarEventID: null.StringFromPtr(sess.GoogleCalendarEventID),
		RemindedAt:            null.TimeFromPtr(sess.RemindedAt),
		CreatedAt:             sess.CreatedAt.UTC(),
	}
}

func utcPtr(t null.Time) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}

func (r sessionRow) domain() enrollment.ClassSession {
	return enrollment.ClassSession{
		ID:                    r.ID,
		EnrollmentID:          r.EnrollmentID,
		SessionIndex:          r.SessionIndex,
		Title:                 r.Title,
		Description:           r.Description.Ptr(),
		ScheduledAt:           utcPtr(r.ScheduledAt),
		GoogleCalendarEventID: r.GoogleCalendarEventID.Ptr(),
		RemindedAt:            utcPtr(r.RemindedAt),
		CreatedAt:             r.CreatedAt.UTC(),
	}
}

type enrollmentRepository struct {
	db *sqlx.DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *sqlx.DB) enrollment.Repository {
	return &enrollmentRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to enrollment.ErrNotFound
func trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return enrollment.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

const (
	insertEnrollmentQuery = `
		INSERT INTO course_enrollments (id, user_id, user_email, topic, learning_speed, estimated_class_count, status, created_at)
		VALUES (:id, :user_id, :user_email, :topic, :learning_speed, :estimated_class_count, :status, :created_at)`

	insertSessionQuery = `
		INSERT INTO class_sessions (id, enrollment_id, session_index, title, description, scheduled_at, google_calendar_event_id, reminded_at, created_at)
		VALUES (:id, :enrollment_id, :session_index, :title, :description, :scheduled_at, :google_calendar_event_id, :reminded_at, :created_at)`

	selectEnrollmentColumns = `id, user_id, user_email, topic, learning_speed, estimated_class_count, status, created_at`
	selectSessionColumns    = `id, enrollment_id, session_index, title, description, scheduled_at, google_calendar_event_id, reminded_at, created_at`

	selectScheduledClassesQuery = `
		SELECT cs.id AS class_session_id, cs.enrollment_id, ce.user_id, ce.user_email, ce.topic, cs.title, cs.scheduled_at,
		       cs.google_calendar_event_id, cs.session_index, ce.estimated_class_count AS total_classes,
		       ce.status AS enrollment_status
		FROM class_sessions cs
		JOIN course_enrollments ce ON ce.id = cs.enrollment_id`
)

func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, enr enrollment.Enrollment, sessions []enrollment.ClassSession) (err error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.NamedExecContext(ctx, insertEnrollmentQuery, toEnrollmentRow(enr)); err != nil {
		return errors.Wrap(err, "inserting enrollment")
	}
	for _, sess := range sessions {
		if _, err = tx.NamedExecContext(ctx, insertSessionQuery, toSessionRow(sess)); err != nil {
			return errors.Wrapf(err, "inserting session %d", sess.SessionIndex)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}

func (repo *enrollmentRepository) GetEnrollment(ctx context.Context, id string) (enrollment.Enrollment, error) {
	var row enrollmentRow
	q := repo.db.Rebind(`SELECT ` + selectEnrollmentColumns + ` FROM course_enrollments WHERE id = ?`)
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return enrollment.Enrollment{}, trapNoRowsErr(err, "finding enrollment by ID")
	}
	return row.domain(), nil
}

func (repo *enrollmentRepository) QueryEnrollments(ctx context.Context, filter enrollment.QueryFilter, ordering []core.DBOrdering) ([]enrollment.Enrollment, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}

	q := `SELECT ` + selectEnrollmentColumns + ` FROM course_enrollments`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY ` + orderBy(ordering, "created_at DESC")

	var rows []enrollmentRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	enrs := make([]enrollment.Enrollment, 0, len(rows))
	for _, r := range rows {
		enrs = append(enrs, r.domain())
	}
	return enrs, nil
}

func (repo *enrollmentRepository) QuerySessions(ctx context.Context, enrollmentID string) ([]enrollment.ClassSession, error) {
	var rows []sessionRow
	q := repo.db.Rebind(`SELECT ` + selectSessionColumns + ` FROM class_sessions WHERE enrollment_id = ? ORDER BY session_index ASC`)
	if err := repo.db.SelectContext(ctx, &rows, q, enrollmentID); err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}
	sessions := make([]enrollment.ClassSession, 0, len(rows))
	for _, r := range rows {
		sessions = append(sessions, r.domain())
	}
	return sessions, nil
}

func (repo *enrollmentRepository) ScheduleSession(ctx context.Context, enrollmentID string, sessionIndex int, at time.Time) (bool, error) {
	// the reminder is only re-armed when the date actually moves
	q := repo.db.Rebind(`
		UPDATE class_sessions
		SET reminded_at = CASE WHEN scheduled_at IS DISTINCT FROM ? THEN NULL ELSE reminded_at END,
			scheduled_at = ?
		WHERE enrollment_id = ? AND session_index = ?`)
	res, err := repo.db.ExecContext(ctx, q, at.UTC(), at.UTC(), enrollmentID, sessionIndex)
	if err != nil {
		return false, errors.Wrap(err, "updating session")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "counting updated sessions")
	}
	return n > 0, nil
}

func (repo *enrollmentRepository) QueryScheduledClasses(ctx context.Context, userID string, from time.Time) ([]enrollment.ScheduledClass, error) {
	q := repo.db.Rebind(selectScheduledClassesQuery + `
		WHERE ce.user_id = ? AND cs.scheduled_at IS NOT NULL AND cs.scheduled_at >= ?
		ORDER BY cs.scheduled_at ASC`)

	var rows []scheduledClassRow
	if err := repo.db.SelectContext(ctx, &rows, q, userID, from.UTC()); err != nil {
		return nil, errors.Wrap(err, "querying scheduled classes")
	}
	classes := make([]enrollment.ScheduledClass, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, enrollment.ScheduledClass{
			ClassSessionID:        r.ClassSessionID,
			EnrollmentID:          r.EnrollmentID,
			Topic:                 r.Topic,
			Title:                 r.Title,
			ScheduledAt:           r.ScheduledAt.UTC(),
			GoogleCalendarEventID: r.GoogleCalendarEventID.Ptr(),
			SessionIndex:          r.SessionIndex,
			TotalClasses:          r.TotalClasses,
			EnrollmentStatus:      r.EnrollmentStatus,
		})
	}
	return classes, nil
}

func (repo *enrollmentRepository) QueryDueReminders(ctx context.Context, from, to time.Time) ([]enrollment.DueReminder, error) {
	q := repo.db.Rebind(selectScheduledClassesQuery + `
		WHERE cs.scheduled_at BETWEEN ? AND ? AND cs.reminded_at IS NULL
		  AND ce.user_email IS NOT NULL AND ce.user_email <> ''
		ORDER BY cs.scheduled_at ASC`)

	var rows []scheduledClassRow
	if err := repo.db.SelectContext(ctx, &rows, q, from.UTC(), to.UTC()); err != nil {
		return nil, errors.Wrap(err, "querying due reminders")
	}
	due := make([]enrollment.DueReminder, 0, len(rows))
	for _, r := range rows {
		due = append(due, enrollment.DueReminder{
			ClassSessionID: r.ClassSessionID,
			EnrollmentID:   r.EnrollmentID,
			UserID:         r.UserID,
			UserEmail:      r.UserEmail.String,
			Topic:          r.Topic,
			Title:          r.Title,
			SessionIndex:   r.SessionIndex,
			TotalClasses:   r.TotalClasses,
			ScheduledAt:    r.ScheduledAt.UTC(),
		})
	}
	return due, nil
}

func (repo *enrollmentRepository) MarkReminded(ctx context.Context, sessionID string, at time.Time) error {
	q := repo.db.Rebind(`UPDATE class_sessions SET reminded_at = ? WHERE id = ?`)
	res, err := repo.db.ExecContext(ctx, q, at.UTC(), sessionID)
	if err != nil {
		return errors.Wrap(err, "marking session reminded")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "counting updated sessions")
	} else if n == 0 {
		return enrollment.ErrNotFound
	}
	return nil
}

func (repo *enrollmentRepository) UnmarkReminded(ctx context.Context, sessionID string) error {
	q := repo.db.Rebind(`UPDATE class_sessions SET reminded_at = NULL WHERE id = ?`)
	res, err := repo.db.ExecContext(ctx, q, sessionID)
	if err != nil {
		return errors.Wrap(err, "unmarking session reminded")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "counting updated sessions")
	} else if n == 0 {
		return enrollment.ErrNotFound
	}
	return nil
}

// orderBy renders `ordering` as an ORDER BY list; columns must already be whitelisted.
func orderBy(ordering []core.DBOrdering, fallback string) string {
	if len(ordering) == 0 {
		return fallback
	}
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, ord.String())
	}
	return strings.Join(orderList, ", ")
}
