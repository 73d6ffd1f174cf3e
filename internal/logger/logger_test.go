package logger_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/atinyakov/barcoder/internal/logger"
)

func TestNew(t *testing.T) {
	l := logger.New()
	require.NotNil(t, l)
	require.NotNil(t, l.Log)
	require.False(t, l.Log.Core().Enabled(zapcore.ErrorLevel))
}

func TestInit_ValidLevels(t *testing.T) {
	validLevels := []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}

	for _, level := range validLevels {
		t.Run(level, func(t *testing.T) {
			lvl, err := zapcore.ParseLevel(level)
			require.NoError(t, err)

			l := logger.New()
			require.NoError(t, l.Init(level))
			require.True(t, l.Log.Core().Enabled(lvl))

			c := logger.New()
			require.NoError(t, c.InitConsole(level))
			require.True(t, c.Log.Core().Enabled(lvl))
		})
	}
}

func TestInit_LevelFilters(t *testing.T) {
	l := logger.New()
	require.NoError(t, l.Init("warn"))
	require.False(t, l.Log.Core().Enabled(zapcore.InfoLevel))
}

func TestInit_InvalidLevel(t *testing.T) {
	l := logger.New()
	require.Error(t, l.Init("invalid_level"))
	require.Error(t, l.InitConsole("loud"))
}
