// Package remindersvc emails learners ahead of their scheduled classes.
package remindersvc

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/mehy12/edumate/core"
	"github.com/mehy12/edumate/core/enrollment"
)

const (
	templateName = "class_reminder"

	ResultSent   = "sent"
	ResultFailed = "failed"
)

type (
	Store interface {
		QueryDueReminders(ctx context.Context, from, to time.Time) ([]enrollment.DueReminder, error)
		MarkReminded(ctx context.Context, sessionID string, at time.Time) error
		UnmarkReminded(ctx context.Context, sessionID string) error
	}

	Recorder interface {
		ReminderSent(result string)
	}

	Service struct {
		store     Store
		mailSvc   core.EmailService
		metrics   Recorder
		logger    core.Logger
		appName   string
		spec      string
		lookahead time.Duration

		mu   sync.Mutex
		cron *cron.Cron
	}
)

func NewService(conf *core.Config, store Store, mailSvc core.EmailService, metrics Recorder, logger core.Logger) *Service {
	return &Service{
		store:     store,
		mailSvc:   mailSvc,
		metrics:   metrics,
		logger:    logger,
		appName:   conf.AppName,
		spec:      conf.Reminder.Schedule,
		lookahead: conf.Reminder.Lookahead,
	}
}

// Start runs RunOnce on the configured cron schedule until Stop is called.
func (svc *Service) Start() error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.cron != nil {
		return errors.New("reminder service already started")
	}

	cl := cronLogger{svc.logger}
	c := cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)), cron.WithLogger(cl))
	if _, err := c.AddFunc(svc.spec, func() {
		if _, err := svc.RunOnce(context.Background()); err != nil {
			svc.logger.Error(fmt.Sprintf("sending class reminders: %v", err), err)
		}
	}); err != nil {
		return errors.Wrapf(err, "scheduling reminders with %q", svc.spec)
	}
	c.Start()
	svc.cron = c
	return nil
}

// Stop stops the scheduler and waits for a running job to finish, or for ctx to be done.
func (svc *Service) Stop(ctx context.Context) {
	svc.mu.Lock()
	c := svc.cron
	svc.cron = nil
	svc.mu.Unlock()
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}

// RunOnce emails every learner whose class starts within the lookahead window and returns the number of reminders sent.
// A failing reminder is logged, left due for the next run, and does not stop the others.
func (svc *Service) RunOnce(ctx context.Context) (int, error) {
	now := core.Now()
	due, err := svc.store.QueryDueReminders(ctx, now, now.Add(svc.lookahead))
	if err != nil {
		return 0, errors.Wrap(err, "querying due reminders")
	}

	var sent int
	for _, d := range due {
		if err = svc.remind(ctx, d); err != nil {
			svc.metrics.ReminderSent(ResultFailed)
			svc.logger.Error(
				fmt.Sprintf("reminding class %s: %v", d.ClassSessionID, err),
				err,
				core.Identity{ID: d.UserID, Email: d.UserEmail},
			)
			continue
		}
		svc.metrics.ReminderSent(ResultSent)
		sent++
	}
	return sent, nil
}

func (svc *Service) remind(ctx context.Context, d enrollment.DueReminder) error {
	to, err := mail.ParseAddress(d.UserEmail)
	if err != nil {
		return errors.Wrap(err, "parsing learner email")
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{*to},
		Subject:      fmt.Sprintf("Upcoming class: %s", d.Title),
		TemplateName: templateName,
		TemplateData: newReminderData(d),
	}
	if err = msg.Attach(strings.NewReader(calendarEvent(d, svc.appName)), "class.ics", "text/calendar"); err != nil {
		return errors.Wrap(err, "attaching calendar event")
	}

	// claim the session first so a delivered email is never sent twice
	if err = svc.store.MarkReminded(ctx, d.ClassSessionID, core.Now()); err != nil {
		return errors.Wrap(err, "marking session reminded")
	}
	if err = svc.mailSvc.Send(msg); err != nil {
		if uErr := svc.store.UnmarkReminded(ctx, d.ClassSessionID); uErr != nil {
			return errors.Wrapf(err, "sending email (session left marked: %v)", uErr)
		}
		return errors.Wrap(err, "sending email")
	}
	return nil
}

type reminderData struct {
	EnrollmentID string
	Topic        string
	Title        string
	ClassNumber  int
	TotalClasses int
	ScheduledAt  string
}

func newReminderData(d enrollment.DueReminder) reminderData {
	return reminderData{
		EnrollmentID: d.EnrollmentID,
		Topic:        d.Topic,
		Title:        d.Title,
		ClassNumber:  d.SessionIndex + 1,
		TotalClasses: d.TotalClasses,
		ScheduledAt:  d.ScheduledAt.UTC().Format("Mon, 02 Jan 2006 15:04 MST"),
	}
}
