// Package testutil holds helpers shared by the test suites.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mehy12/edumate/core"
	"github.com/mehy12/edumate/core/enrollment"
)

// NewConfig returns the default config in test mode: no debug payloads, no background jobs.
func NewConfig() *core.Config {
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.Reminder.Enabled = false
	return conf
}

// NewValidator returns a validator with the core and enrollment rules registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	enrollment.InitValidators(validate, translator)
	return validate, translator
}

// FreezeTime pins core.Now to `at` until the test ends.
func FreezeTime(t *testing.T, at time.Time) {
	t.Helper()
	orig := core.NowFunc
	core.NowFunc = func() time.Time { return at }
	t.Cleanup(func() { core.NowFunc = orig })
}

// CreateEnrollment stores an enrollment of `topic` owned by `owner`, with its full session plan.
func CreateEnrollment(
	t *testing.T,
	repo enrollment.Repository,
	owner core.Identity,
	topic string,
	speed enrollment.LearningSpeed,
	createdAt ...time.Time,
) (enrollment.Enrollment, []enrollment.ClassSession) {
	t.Helper()
	tstamp := core.Now()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}

	count := enrollment.EstimateClasses(topic, speed)
	enr := enrollment.Enrollment{
		ID:                  uuid.New().String(),
		UserID:              owner.ID,
		UserEmail:           owner.Email,
		Topic:               topic,
		LearningSpeed:       speed,
		EstimatedClassCount: count,
		Status:              enrollment.StatusPlanned,
		CreatedAt:           tstamp,
	}
	sessions := make([]enrollment.ClassSession, 0, count)
	for i, stub := range enrollment.GenerateSessionPlan(topic, count) {
		sessions = append(sessions, enrollment.ClassSession{
			ID:           uuid.New().String(),
			EnrollmentID: enr.ID,
			SessionIndex: i,
			Title:        stub.Title,
			Description:  stub.Description,
			CreatedAt:    tstamp,
		})
	}
	if err := repo.CreateEnrollment(context.Background(), enr, sessions); err != nil {
		t.Fatalf("CreateEnrollment() failed: %v", err)
	}
	return enr, sessions
}

// Words returns a topic made of `n` words.
func Words(n int) string {
	buf := make([]byte, 0, n*5)
	for i := 0; i < n; i++ {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, "word"...)
	}
	return string(buf)
}

type LogEntry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger is a core.Logger that keeps its entries in memory.
type Logger struct {
	mu      sync.Mutex
	entries []LogEntry
}

var _ core.Logger = (*Logger)(nil)

func NewLogger() *Logger { return new(Logger) }

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Msg: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.log("FATAL", msg, args)
	panic(fmt.Sprintf("fatal: %s", msg))
}

// Entries returns the logged entries of `level`, or all of them if `level` is empty.
func (l *Logger) Entries(level string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var res []LogEntry
	for _, e := range l.entries {
		if level == "" || e.Level == level {
			res = append(res, e)
		}
	}
	return res
}
