package utils

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	t.Run("default level is info", func(t *testing.T) {
		logger := NewLogger(false)

		assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
		assert.True(t, logger.ReportCaller)
	})

	t.Run("debug flag lowers the level", func(t *testing.T) {
		logger := NewLogger(true)

		assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	})
}

func TestLeveledLogrus(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	leveled := &LeveledLogrus{Logger: logger}

	t.Run("key value pairs become fields", func(t *testing.T) {
		leveled.Info("retrying request", "method", "POST", "attempt", 2)

		entry := hook.LastEntry()
		assert.Equal(t, logrus.InfoLevel, entry.Level)
		assert.Equal(t, "retrying request", entry.Message)
		assert.Equal(t, "POST", entry.Data["method"])
		assert.Equal(t, 2, entry.Data["attempt"])
	})

	t.Run("dangling key is dropped", func(t *testing.T) {
		leveled.Warn("slow response", "elapsed")

		entry := hook.LastEntry()
		assert.Equal(t, logrus.WarnLevel, entry.Level)
		assert.Empty(t, entry.Data)
	})
}
