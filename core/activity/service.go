package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mehy12/edumate/core"
)

type (
	Repository interface {
		CreateEvent(ctx context.Context, evt Event) error
		// CountEventsByDay counts the user's events created within [from, to), keyed by UTC day (YYYY-MM-DD).
		CountEventsByDay(ctx context.Context, userID string, from, to time.Time) (map[string]int, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Log records an activity event. It is best effort: failures are logged, never returned.
func (svc *Service) Log(ctx context.Context, userID string, typ EventType) {
	evt := Event{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      typ,
		CreatedAt: core.Now(),
	}
	if err := svc.repo.CreateEvent(ctx, evt); err != nil {
		svc.logger.Error(
			fmt.Sprintf("logging user activity: %v", err),
			errors.Wrap(err, "creating activity event"),
			core.Identity{ID: userID},
		)
	}
}

// Heatmap returns the per-day activity counts of `userID` for the range ending today (UTC).
func (svc *Service) Heatmap(ctx context.Context, userID, rng string) (Heatmap, error) {
	end := core.StartOfDay(core.Now())
	start := end.AddDate(0, 0, -(RangeDays(rng) - 1))

	counts, err := svc.repo.CountEventsByDay(ctx, userID, start, end.AddDate(0, 0, 1))
	if err != nil {
		return Heatmap{}, errors.Wrap(err, "counting activity events")
	}

	hm := Heatmap{
		StartDate: start.Format(DayLayout),
		EndDate:   end.Format(DayLayout),
		Days:      make([]DayCount, 0, RangeDays(rng)),
	}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(DayLayout)
		hm.Days = append(hm.Days, DayCount{Date: key, Count: counts[key]})
	}
	return hm, nil
}
