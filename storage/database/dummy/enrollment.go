package dummydb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/mehy12/edumate/core"
	"github.com/mehy12/edumate/core/enrollment"
)

type enrollmentRepository struct {
	db *enrollmentTable
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) enrollment.Repository {
	return &enrollmentRepository{db: db.enrollment}
}

func (repo *enrollmentRepository) CreateEnrollment(_ context.Context, enr enrollment.Enrollment, sessions []enrollment.ClassSession) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[enr.ID] = &enr
	rows := make([]*enrollment.ClassSession, 0, len(sessions))
	for i := range sessions {
		sess := sessions[i]
		rows = append(rows, &sess)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].SessionIndex < rows[j].SessionIndex })
	repo.db.sessions[enr.ID] = rows
	return nil
}

func (repo *enrollmentRepository) GetEnrollment(_ context.Context, id string) (enrollment.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if enr, ok := repo.db.table[id]; ok {
		return *enr, nil
	}
	return enrollment.Enrollment{}, enrollment.ErrNotFound
}

func (repo *enrollmentRepository) QueryEnrollments(_ context.Context, filter enrollment.QueryFilter, ordering []core.DBOrdering) ([]enrollment.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	enrs := make([]enrollment.Enrollment, 0)
	for _, e := range repo.db.table {
		if filter.UserID != "" && e.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		enrs = append(enrs, *e)
	}

	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	sort.SliceStable(enrs, func(i, j int) bool {
		for _, ord := range ordering {
			c := compareEnrollments(enrs[i], enrs[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
	return enrs, nil
}

func compareEnrollments(a, b enrollment.Enrollment, field string) int {
	switch field {
	case "topic":
		return strings.Compare(a.Topic, b.Topic)
	case "estimated_class_count":
		return a.EstimatedClassCount - b.EstimatedClassCount
	case "created_at":
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1
		case a.CreatedAt.After(b.CreatedAt):
			return 1
		}
	}
	return 0
}

func (repo *enrollmentRepository) QuerySessions(_ context.Context, enrollmentID string) ([]enrollment.ClassSession, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows := repo.db.sessions[enrollmentID]
	sessions := make([]enrollment.ClassSession, 0, len(rows))
	for _, s := range rows {
		sessions = append(sessions, *s)
	}
	return sessions, nil
}

func (repo *enrollmentRepository) ScheduleSession(_ context.Context, enrollmentID string, sessionIndex int, at time.Time) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, s := range repo.db.sessions[enrollmentID] {
		if s.SessionIndex == sessionIndex {
			t := at.UTC()
			if s.ScheduledAt == nil || !s.ScheduledAt.Equal(t) {
				s.RemindedAt = nil
			}
			s.ScheduledAt = &t
			return true, nil
		}
	}
	return false, nil
}

func (repo *enrollmentRepository) QueryScheduledClasses(_ context.Context, userID string, from time.Time) ([]enrollment.ScheduledClass, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]enrollment.ScheduledClass, 0)
	for id, enr := range repo.db.table {
		if enr.UserID != userID {
			continue
		}
		for _, s := range repo.db.sessions[id] {
			if s.ScheduledAt == nil || s.ScheduledAt.Before(from) {
				continue
			}
			classes = append(classes, enrollment.ScheduledClass{
				ClassSessionID:        s.ID,
				EnrollmentID:          enr.ID,
				Topic:                 enr.Topic,
				Title:                 s.Title,
				ScheduledAt:           *s.ScheduledAt,
				GoogleCalendarEventID: s.GoogleCalendarEventID,
				SessionIndex:          s.SessionIndex,
				TotalClasses:          enr.EstimatedClassCount,
				EnrollmentStatus:      enr.Status,
			})
		}
	}
	sort.SliceStable(classes, func(i, j int) bool { return classes[i].ScheduledAt.Before(classes[j].ScheduledAt) })
	return classes, nil
}

func (repo *enrollmentRepository) QueryDueReminders(_ context.Context, from, to time.Time) ([]enrollment.DueReminder, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	due := make([]enrollment.DueReminder, 0)
	for id, enr := range repo.db.table {
		if enr.UserEmail == "" {
			continue
		}
		for _, s := range repo.db.sessions[id] {
			if s.ScheduledAt == nil || s.RemindedAt != nil || s.ScheduledAt.Before(from) || s.ScheduledAt.After(to) {
				continue
			}
			due = append(due, enrollment.DueReminder{
				ClassSessionID: s.ID,
				EnrollmentID:   enr.ID,
				UserID:         enr.UserID,
				UserEmail:      enr.UserEmail,
				Topic:          enr.Topic,
				Title:          s.Title,
				SessionIndex:   s.SessionIndex,
				TotalClasses:   enr.EstimatedClassCount,
				ScheduledAt:    *s.ScheduledAt,
			})
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].ScheduledAt.Before(due[j].ScheduledAt) })
	return due, nil
}

func (repo *enrollmentRepository) MarkReminded(_ context.Context, sessionID string, at time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, rows := range repo.db.sessions {
		for _, s := range rows {
			if s.ID == sessionID {
				t := at.UTC()
				s.RemindedAt = &t
				return nil
			}
		}
	}
	return enrollment.ErrNotFound
}

func (repo *enrollmentRepository) UnmarkReminded(_ context.Context, sessionID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, rows := range repo.db.sessions {
		for _, s := range rows {
			if s.ID == sessionID {
				s.RemindedAt = nil
				return nil
			}
		}
	}
	return enrollment.ErrNotFound
}
