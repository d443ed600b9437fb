package enrollment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mehy12/edumate/core"
	"github.com/mehy12/edumate/core/activity"
)

var (
	// errors
	ErrNotFound          = errors.New("enrollment not found")
	ErrInvalidClassCount = errors.New("class count must be at least 1")

	// orderingFields maps the public ordering fields to their storage columns.
	orderingFields = map[string]string{
		"topic":                 "topic",
		"estimated_class_count": "estimated_class_count",
		"created_at":            "created_at",
	}
)

type (
	Repository interface {
		// CreateEnrollment persists `enr` and all its `sessions` atomically.
		CreateEnrollment(ctx context.Context, enr Enrollment, sessions []ClassSession) error
		GetEnrollment(ctx context.Context, id string) (Enrollment, error)
		QueryEnrollments(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Enrollment, error)
		// QuerySessions returns the sessions of an enrollment ordered by session index.
		QuerySessions(ctx context.Context, enrollmentID string) ([]ClassSession, error)
		// ScheduleSession sets scheduled_at of one session, clearing reminded_at when the date changes.
		// It reports false when no session matches (enrollmentID, sessionIndex).
		ScheduleSession(ctx context.Context, enrollmentID string, sessionIndex int, at time.Time) (bool, error)
		// QueryScheduledClasses returns the user's sessions scheduled at or after `from`, soonest first.
		QueryScheduledClasses(ctx context.Context, userID string, from time.Time) ([]ScheduledClass, error)
		// QueryDueReminders returns not yet reminded sessions scheduled within [from, to] whose owner has an email.
		QueryDueReminders(ctx context.Context, from, to time.Time) ([]DueReminder, error)
		MarkReminded(ctx context.Context, sessionID string, at time.Time) error
		// UnmarkReminded makes a session due again after a failed reminder.
		UnmarkReminded(ctx context.Context, sessionID string) error
	}

	ActivityLogger interface {
		Log(ctx context.Context, userID string, typ activity.EventType)
	}

	Recorder interface {
		EnrollmentCreated(speed string, classCount int)
		ScheduleEntryProcessed(status, reason string)
	}

	ServiceInterface interface {
		Estimate(ne NewEnrollment) int
		Plan(topic string, classCount int) ([]SessionStub, error)
		Create(ctx context.Context, caller core.Identity, ne NewEnrollment) (Enrollment, []ClassSession, error)
		Get(ctx context.Context, caller core.Identity, id string) (Enrollment, error)
		Query(ctx context.Context, caller core.Identity, filter QueryFilter, ordering []core.DBOrdering) ([]Enrollment, error)
		Sessions(ctx context.Context, enr Enrollment) ([]ClassSession, error)
		Schedule(ctx context.Context, enr Enrollment, entries []ScheduleEntry) (ScheduleResult, error)
		ScheduledClasses(ctx context.Context, caller core.Identity) ([]ScheduledClass, error)
	}

	Service struct {
		repo     Repository
		activity ActivityLogger
		metrics  Recorder
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, activity ActivityLogger, metrics Recorder) *Service {
	return &Service{
		repo:     repo,
		activity: activity,
		metrics:  metrics,
	}
}

// Estimate returns the class count of a would-be enrollment, without persisting anything.
func (svc *Service) Estimate(ne NewEnrollment) int {
	return EstimateClasses(ne.Topic, ParseLearningSpeed(ne.LearningSpeed))
}

// Plan generates the session plan of `topic` for an explicit class count.
func (svc *Service) Plan(topic string, classCount int) ([]SessionStub, error) {
	if classCount < 1 {
		return nil, ErrInvalidClassCount
	}
	return GenerateSessionPlan(topic, classCount), nil
}

// Create estimates, plans and persists a new enrollment owned by `caller`.
func (svc *Service) Create(ctx context.Context, caller core.Identity, ne NewEnrollment) (Enrollment, []ClassSession, error) {
	now := core.Now()
	speed := ParseLearningSpeed(ne.LearningSpeed)
	count := EstimateClasses(ne.Topic, speed)

	enr := Enrollment{
		ID:                  uuid.New().String(),
		UserID:              caller.ID,
		UserEmail:           caller.Email,
		Topic:               ne.Topic,
		LearningSpeed:       speed,
		EstimatedClassCount: count,
		Status:              StatusPlanned,
		CreatedAt:           now,
	}

	plan, err := svc.Plan(ne.Topic, count)
	if err != nil {
		return Enrollment{}, nil, errors.Wrap(err, "generating session plan")
	}
	sessions := make([]ClassSession, 0, len(plan))
	for i, stub := range plan {
		sessions = append(sessions, ClassSession{
			ID:           uuid.New().String(),
			EnrollmentID: enr.ID,
			SessionIndex: i,
			Title:        stub.Title,
			Description:  stub.Description,
			CreatedAt:    now,
		})
	}

	if err = svc.repo.CreateEnrollment(ctx, enr, sessions); err != nil {
		return Enrollment{}, nil, errors.Wrap(err, "creating enrollment")
	}

	svc.metrics.EnrollmentCreated(string(speed), count)
	svc.activity.Log(ctx, caller.ID, activity.EnrollmentCreated)
	return enr, sessions, nil
}

// Get returns the enrollment `id` if it is owned by `caller`, ErrNotFound otherwise.
func (svc *Service) Get(ctx context.Context, caller core.Identity, id string) (Enrollment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Enrollment{}, ErrNotFound
	}
	enr, err := svc.repo.GetEnrollment(ctx, id)
	if err != nil {
		return Enrollment{}, err
	}
	if enr.UserID != caller.ID {
		return Enrollment{}, ErrNotFound
	}
	return enr, nil
}

func (svc *Service) Query(ctx context.Context, caller core.Identity, filter QueryFilter, ordering []core.DBOrdering) ([]Enrollment, error) {
	filter.UserID = caller.ID
	filter.Clean()
	return svc.repo.QueryEnrollments(ctx, filter, core.FilterOrderings(ordering, orderingFields))
}

func (svc *Service) Sessions(ctx context.Context, enr Enrollment) ([]ClassSession, error) {
	return svc.repo.QuerySessions(ctx, enr.ID)
}

// Schedule assigns dates to the sessions of `enr`, one entry at a time.
//
// Malformed entries and entries matching no session are skipped and reported in the results.
// Each update is atomic but the batch is not: a storage error aborts the remaining entries
// and leaves the already applied ones in place.
func (svc *Service) Schedule(ctx context.Context, enr Enrollment, entries []ScheduleEntry) (ScheduleResult, error) {
	updates, results := planSchedule(entries)

	for _, upd := range updates {
		ok, err := svc.repo.ScheduleSession(ctx, enr.ID, upd.sessionIndex, upd.date)
		if err != nil {
			return ScheduleResult{}, errors.Wrapf(err, "scheduling session %d", upd.sessionIndex)
		}
		if ok {
			results[upd.entry].Status = EntryApplied
		} else {
			results[upd.entry].Status = EntrySkipped
			results[upd.entry].Reason = ReasonUnknownSession
		}
	}

	res := ScheduleResult{Results: results}
	for _, r := range results {
		svc.metrics.ScheduleEntryProcessed(r.Status, r.Reason)
	}
	if res.Applied() > 0 {
		svc.activity.Log(ctx, enr.UserID, activity.ClassesScheduled)
	}

	sessions, err := svc.repo.QuerySessions(ctx, enr.ID)
	if err != nil {
		return ScheduleResult{}, errors.Wrap(err, "querying sessions")
	}
	res.Sessions = sessions
	return res, nil
}

// ScheduledClasses lists the caller's classes scheduled from now on, soonest first.
// Status is computed against the clock at the time of the read.
func (svc *Service) ScheduledClasses(ctx context.Context, caller core.Identity) ([]ScheduledClass, error) {
	classes, err := svc.repo.QueryScheduledClasses(ctx, caller.ID, core.Now())
	if err != nil {
		return nil, errors.Wrap(err, "querying scheduled classes")
	}

	now := core.Now()
	for i := range classes {
		if classes[i].ScheduledAt.Before(now) {
			classes[i].Status = ClassStatusPast
		} else {
			classes[i].Status = ClassStatusUpcoming
		}
	}
	return classes, nil
}
