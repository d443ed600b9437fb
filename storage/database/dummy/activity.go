package dummydb

import (
	"context"
	"time"

	"github.com/mehy12/edumate/core/activity"
)

type activityRepository struct {
	db *activityTable
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *DB) activity.Repository {
	return &activityRepository{db: db.activity}
}

func (repo *activityRepository) CreateEvent(_ context.Context, evt activity.Event) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.table = append(repo.db.table, evt)
	return nil
}

func (repo *activityRepository) CountEventsByDay(_ context.Context, userID string, from, to time.Time) (map[string]int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	counts := make(map[string]int)
	for _, evt := range repo.db.table {
		if evt.UserID != userID || evt.CreatedAt.Before(from) || !evt.CreatedAt.Before(to) {
			continue
		}
		counts[evt.CreatedAt.UTC().Format(activity.DayLayout)]++
	}
	return counts, nil
}
