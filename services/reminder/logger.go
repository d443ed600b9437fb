package remindersvc

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/mehy12/edumate/core"
)

// cronLogger reports cron's own events (recovered panics, skipped runs) through core.Logger.
type cronLogger struct {
	logger core.Logger
}

var _ cron.Logger = cronLogger{}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(fmt.Sprintf("cron: %s: %v", msg, err), append([]interface{}{err}, keysAndValues...)...)
}
