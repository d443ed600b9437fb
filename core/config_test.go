package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mehy12/edumate/core"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("ENV", "")
		conf := core.NewConfig()
		assert.Equal(t, "DEV", conf.Env)
		assert.True(t, conf.Debug)
		assert.False(t, conf.TestMode)
		assert.Equal(t, "eduMate", conf.AppName)
		assert.Equal(t, ":8000", conf.Server.Host)
		assert.Equal(t, "localhost:5432", conf.Database.Address())
		assert.Equal(t, "noreply@localhost", conf.DefaultFromEmail.Address)
		assert.Equal(t, "@every 15m", conf.Reminder.Schedule)
		assert.Equal(t, 24*time.Hour, conf.Reminder.Lookahead)
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("ENV", "qa")
		t.Setenv("QA_DEBUG", "false")
		t.Setenv("QA_SERVER_HOST", ":9000")
		t.Setenv("QA_DATABASE_PORT", "6543")
		t.Setenv("QA_REMINDER_LOOKAHEAD", "2h")
		t.Setenv("QA_FRONTENDBASEURL", "https://edumate.test/")

		conf := core.NewConfig()
		assert.Equal(t, "QA", conf.Env)
		assert.False(t, conf.Debug)
		assert.Equal(t, ":9000", conf.Server.Host)
		assert.Equal(t, 6543, conf.Database.Port)
		assert.Equal(t, 2*time.Hour, conf.Reminder.Lookahead)
		assert.Equal(t, "https://edumate.test", conf.FrontendBaseURL)
	})

	t.Run("test env", func(t *testing.T) {
		t.Setenv("ENV", "test")
		assert.True(t, core.NewConfig().TestMode)
	})
}
