package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevelFromEnv(t *testing.T) {
	tests := map[string]zapcore.Level{
		"":       zapcore.InfoLevel,
		"debug":  zapcore.DebugLevel,
		" WARN ": zapcore.WarnLevel,
		"bogus":  zapcore.InfoLevel,
	}
	for raw, want := range tests {
		t.Setenv("LOG_LEVEL", raw)
		assert.Equal(t, want, levelFromEnv(), raw)
	}
}

func TestEncodingFromEnv(t *testing.T) {
	t.Setenv("LOG_FORMAT", "Console")
	assert.Equal(t, "console", encodingFromEnv())
	t.Setenv("LOG_FORMAT", "")
	assert.Equal(t, "json", encodingFromEnv())
}

func TestCLILoggerDefaultsToWarn(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	logger, err := NewCLILogger()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNewLoggerHonoursLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	logger, err := NewLogger("auth-service")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.WarnLevel))
}
