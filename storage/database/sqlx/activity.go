package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/mehy12/edumate/core"
	"github.com/mehy12/edumate/core/activity"
)

type activityRepository struct {
	db core.DBExecutor
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db core.DBExecutor) activity.Repository {
	return &activityRepository{db: db}
}

func (repo *activityRepository) CreateEvent(ctx context.Context, evt activity.Event) error {
	q := repo.db.Rebind(`INSERT INTO activity_events (id, user_id, type, created_at) VALUES (?, ?, ?, ?)`)
	if _, err := repo.db.ExecContext(ctx, q, evt.ID, evt.UserID, string(evt.Type), evt.CreatedAt.UTC()); err != nil {
		return errors.Wrap(err, "inserting activity event")
	}
	return nil
}

func (repo *activityRepository) CountEventsByDay(ctx context.Context, userID string, from, to time.Time) (map[string]int, error) {
	q := repo.db.Rebind(`
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*) AS count
		FROM activity_events
		WHERE user_id = ? AND created_at >= ? AND created_at < ?
		GROUP BY day`)

	var rows []struct {
		Day   string `db:"day"`
		Count int    `db:"count"`
	}
	if err := repo.db.SelectContext(ctx, &rows, q, userID, from.UTC(), to.UTC()); err != nil {
		return nil, errors.Wrap(err, "counting activity events")
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Day] = r.Count
	}
	return counts, nil
}
