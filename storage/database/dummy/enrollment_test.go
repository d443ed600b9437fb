package dummydb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehy12/edumate/core"
	"github.com/mehy12/edumate/core/enrollment"
)

func TestEnrollmentRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewEnrollmentRepository(Open())
	t0 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	enrs := []enrollment.Enrollment{
		{ID: "e-1", UserID: "u-1", UserEmail: "awe@test.cd", Topic: "b", EstimatedClassCount: 2, Status: enrollment.StatusPlanned, CreatedAt: t0},
		{ID: "e-2", UserID: "u-1", Topic: "a", EstimatedClassCount: 5, Status: enrollment.StatusPlanned, CreatedAt: t0.Add(time.Hour)},
		{ID: "e-3", UserID: "u-2", Topic: "c", EstimatedClassCount: 1, Status: enrollment.StatusPlanned, CreatedAt: t0},
	}
	for _, enr := range enrs {
		sessions := []enrollment.ClassSession{
			{ID: enr.ID + "-s1", EnrollmentID: enr.ID, SessionIndex: 1, Title: "two"},
			{ID: enr.ID + "-s0", EnrollmentID: enr.ID, SessionIndex: 0, Title: "one"},
		}
		require.NoError(t, repo.CreateEnrollment(ctx, enr, sessions))
	}

	t.Run("query", func(t *testing.T) {
		got, err := repo.QueryEnrollments(ctx, enrollment.QueryFilter{UserID: "u-1"}, nil)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "e-2", got[0].ID) // newest first

		got, err = repo.QueryEnrollments(ctx, enrollment.QueryFilter{}, []core.DBOrdering{{Field: "topic", Ascending: true}})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"e-2", "e-1", "e-3"}, []string{got[0].ID, got[1].ID, got[2].ID})
	})

	t.Run("sessions sorted by index", func(t *testing.T) {
		got, err := repo.QuerySessions(ctx, "e-1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 0, got[0].SessionIndex)
		assert.Equal(t, 1, got[1].SessionIndex)

		got, err = repo.QuerySessions(ctx, "lol")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("reminders", func(t *testing.T) {
		at := t0.Add(2 * time.Hour)
		ok, err := repo.ScheduleSession(ctx, "e-1", 0, at)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = repo.ScheduleSession(ctx, "e-1", 7, at)
		require.NoError(t, err)
		assert.False(t, ok)
		_, err = repo.ScheduleSession(ctx, "e-2", 0, at) // no email: never due
		require.NoError(t, err)

		due, err := repo.QueryDueReminders(ctx, t0, t0.Add(24*time.Hour))
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, "e-1-s0", due[0].ClassSessionID)

		require.NoError(t, repo.MarkReminded(ctx, "e-1-s0", t0))
		due, err = repo.QueryDueReminders(ctx, t0, t0.Add(24*time.Hour))
		require.NoError(t, err)
		assert.Empty(t, due)

		// the same date again keeps the reminder sent
		_, err = repo.ScheduleSession(ctx, "e-1", 0, at.In(time.FixedZone("WAT", 3600)))
		require.NoError(t, err)
		due, err = repo.QueryDueReminders(ctx, t0, t0.Add(24*time.Hour))
		require.NoError(t, err)
		assert.Empty(t, due)

		// rescheduling re-arms the reminder
		_, err = repo.ScheduleSession(ctx, "e-1", 0, at.Add(time.Hour))
		require.NoError(t, err)
		due, err = repo.QueryDueReminders(ctx, t0, t0.Add(24*time.Hour))
		require.NoError(t, err)
		assert.Len(t, due, 1)

		assert.ErrorIs(t, repo.MarkReminded(ctx, "lol", t0), enrollment.ErrNotFound)

		require.NoError(t, repo.MarkReminded(ctx, "e-1-s0", t0))
		require.NoError(t, repo.UnmarkReminded(ctx, "e-1-s0"))
		due, err = repo.QueryDueReminders(ctx, t0, t0.Add(24*time.Hour))
		require.NoError(t, err)
		assert.Len(t, due, 1)
		assert.ErrorIs(t, repo.UnmarkReminded(ctx, "lol"), enrollment.ErrNotFound)
	})

	t.Run("get", func(t *testing.T) {
		_, err := repo.GetEnrollment(ctx, "lol")
		assert.ErrorIs(t, err, enrollment.ErrNotFound)
	})
}
