package remindersvc

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehy12/edumate/core"
	"github.com/mehy12/edumate/core/enrollment"
	emailsvc "github.com/mehy12/edumate/services/email"
	metricsvc "github.com/mehy12/edumate/services/metrics"
	"github.com/mehy12/edumate/storage/database/dummy"
	"github.com/mehy12/edumate/testutil"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type failingStore struct {
	Store
	failID string
}

func (s failingStore) MarkReminded(ctx context.Context, sessionID string, at time.Time) error {
	if sessionID == s.failID {
		return assert.AnError
	}
	return s.Store.MarkReminded(ctx, sessionID, at)
}

type fixture struct {
	repo    enrollment.Repository
	mailSvc *emailsvc.ConsoleService
	metrics *metricsvc.Metrics
	logger  *testutil.Logger
	conf    *core.Config
}

func setup(t *testing.T) fixture {
	testutil.FreezeTime(t, now)
	conf := testutil.NewConfig()
	conf.Reminder.Lookahead = 24 * time.Hour
	logger := testutil.NewLogger()
	return fixture{
		repo:    dummydb.NewEnrollmentRepository(dummydb.Open()),
		mailSvc: emailsvc.NewConsoleServiceMock(conf, logger),
		metrics: metricsvc.New(),
		logger:  logger,
		conf:    conf,
	}
}

// failingMailer fails every message sent to `failTo`.
type failingMailer struct {
	*emailsvc.ConsoleService
	failTo string
}

func (m failingMailer) Send(msg *core.EmailMessage) error {
	if len(msg.To) > 0 && msg.To[0].Address == m.failTo {
		return assert.AnError
	}
	return m.ConsoleService.Send(msg)
}

func (f fixture) service(store Store) *Service {
	return NewService(f.conf, store, f.mailSvc, f.metrics, f.logger)
}

func (f fixture) schedule(t *testing.T, enrID string, idx int, at time.Time) {
	t.Helper()
	ok, err := f.repo.ScheduleSession(context.Background(), enrID, idx, at)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestService_RunOnce(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	svc := f.service(f.repo)

	owner := core.Identity{ID: "u-1", Email: "awe@test.cd"}
	enr, sessions := testutil.CreateEnrollment(t, f.repo, owner, testutil.Words(1000), enrollment.SpeedNormal)
	require.Len(t, sessions, 3)
	f.schedule(t, enr.ID, 0, now.Add(2*time.Hour))  // due
	f.schedule(t, enr.ID, 1, now.Add(48*time.Hour)) // too far
	f.schedule(t, enr.ID, 2, now.Add(-time.Hour))   // already started

	noEmail, _ := testutil.CreateEnrollment(t, f.repo, core.Identity{ID: "u-2"}, "Go", enrollment.SpeedFast)
	f.schedule(t, noEmail.ID, 0, now.Add(time.Hour))

	sent, err := svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, float64(1), promtest.ToFloat64(f.metrics.RemindersSent.WithLabelValues(ResultSent)))

	msgs := f.mailSvc.SentMessages()
	require.Len(t, msgs, 1)
	msg := msgs[0]
	assert.Equal(t, "awe@test.cd", msg.To[0].Address)
	assert.Equal(t, "Upcoming class: "+sessions[0].Title, msg.Subject)
	assert.Contains(t, msg.TextContent, "class 1 of 3")
	assert.Contains(t, msg.TextContent, f.conf.FrontendBaseURL+"/enroll/"+enr.ID)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "text/calendar", msg.Attachments[0].ContentType)
	ics, err := base64.StdEncoding.DecodeString(msg.Attachments[0].Content.String())
	require.NoError(t, err)
	assert.Contains(t, string(ics), "DTSTART:20260310T110000Z")
	assert.Contains(t, string(ics), "UID:"+sessions[0].ID+"@edumate")

	t.Run("reminded sessions are not reminded again", func(t *testing.T) {
		sent, err := svc.RunOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, sent)
		assert.Len(t, f.mailSvc.SentMessages(), 1)
	})

	t.Run("scheduling the same date again sends nothing", func(t *testing.T) {
		f.schedule(t, enr.ID, 0, now.Add(2*time.Hour))
		sent, err := svc.RunOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, sent)
		assert.Len(t, f.mailSvc.SentMessages(), 1)
	})

	t.Run("rescheduling re-arms the reminder", func(t *testing.T) {
		f.schedule(t, enr.ID, 0, now.Add(3*time.Hour))
		sent, err := svc.RunOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Len(t, f.mailSvc.SentMessages(), 2)
	})
}

func TestService_RunOnce_failures(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	bad, _ := testutil.CreateEnrollment(t, f.repo, core.Identity{ID: "u-1", Email: "not an email"}, "Go", enrollment.SpeedNormal)
	f.schedule(t, bad.ID, 0, now.Add(time.Hour))

	unmarkable, sessions := testutil.CreateEnrollment(t, f.repo, core.Identity{ID: "u-2", Email: "lol@test.cd"}, "Rust", enrollment.SpeedNormal)
	f.schedule(t, unmarkable.ID, 0, now.Add(2*time.Hour))

	good, _ := testutil.CreateEnrollment(t, f.repo, core.Identity{ID: "u-3", Email: "mdr@test.cd"}, "Zig", enrollment.SpeedNormal)
	f.schedule(t, good.ID, 0, now.Add(3*time.Hour))

	svc := f.service(failingStore{Store: f.repo, failID: sessions[0].ID})
	sent, err := svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, float64(1), promtest.ToFloat64(f.metrics.RemindersSent.WithLabelValues(ResultSent)))
	assert.Equal(t, float64(2), promtest.ToFloat64(f.metrics.RemindersSent.WithLabelValues(ResultFailed)))
	assert.Len(t, f.logger.Entries("ERROR"), 2)

	// nothing is emailed when the session cannot be claimed
	msgs := f.mailSvc.SentMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "mdr@test.cd", msgs[0].To[0].Address)
}

func TestService_RunOnce_sendFailure(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	enr, _ := testutil.CreateEnrollment(t, f.repo, core.Identity{ID: "u-1", Email: "awe@test.cd"}, "Go", enrollment.SpeedNormal)
	f.schedule(t, enr.ID, 0, now.Add(time.Hour))

	svc := NewService(f.conf, f.repo, failingMailer{ConsoleService: f.mailSvc, failTo: "awe@test.cd"}, f.metrics, f.logger)
	sent, err := svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Zero(t, promtest.ToFloat64(f.metrics.RemindersSent.WithLabelValues(ResultSent)))
	assert.Equal(t, float64(1), promtest.ToFloat64(f.metrics.RemindersSent.WithLabelValues(ResultFailed)))
	assert.Len(t, f.logger.Entries("ERROR"), 1)
	assert.Empty(t, f.mailSvc.SentMessages())

	// the session is due again once the mailer recovers
	sent, err = f.service(f.repo).RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Len(t, f.mailSvc.SentMessages(), 1)
}

func TestService_StartStop(t *testing.T) {
	f := setup(t)
	svc := f.service(f.repo)

	require.NoError(t, svc.Start())
	assert.Error(t, svc.Start(), "starting twice")
	svc.Stop(context.Background())
	svc.Stop(context.Background()) // no-op

	f.conf.Reminder.Schedule = "every now and then"
	assert.Error(t, f.service(f.repo).Start())
}

func TestCalendarEvent(t *testing.T) {
	testutil.FreezeTime(t, now)
	ics := calendarEvent(enrollment.DueReminder{
		ClassSessionID: "s-1",
		Topic:          "Sets, maps; and more",
		Title:          "Part 1: Sets, maps",
		SessionIndex:   0,
		TotalClasses:   2,
		ScheduledAt:    now,
	}, "eduMate")

	lines := strings.Split(strings.TrimSuffix(ics, "\r\n"), "\r\n")
	assert.Equal(t, "BEGIN:VCALENDAR", lines[0])
	assert.Equal(t, "END:VCALENDAR", lines[len(lines)-1])
	assert.Contains(t, lines, "DTSTART:20260310T090000Z")
	assert.Contains(t, lines, "DTEND:20260310T100000Z")
	assert.Contains(t, lines, `SUMMARY:Part 1: Sets\, maps`)
	assert.Contains(t, lines, `DESCRIPTION:Class 1 of 2: Sets\, maps\; and more`)
}
