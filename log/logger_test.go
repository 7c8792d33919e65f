package log

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// capturedLog records all statements passed to it.
type capturedLog struct {
	level  Level
	format string
	args   []any
	calls  int
}

func (c *capturedLog) Log(level Level, format string, args ...any) {
	c.level = level
	c.format = format
	c.args = args
	c.calls++
}

func TestLogfWithoutLoggerIsOmitted(t *testing.T) {
	SetLogger(nil)

	// Must not panic
	Errorf("boom %d", 42)
}

func TestLogf(t *testing.T) {
	captured := &capturedLog{}

	SetLogger(captured)
	defer SetLogger(nil)

	Warnf("warn %d", 42)

	require.Equal(t, 1, captured.calls)
	require.Equal(t, LevelWarning, captured.level)
	require.Equal(t, "warn %d", captured.format)
	require.Equal(t, []any{42}, captured.args)
}

func TestLevelString(t *testing.T) {
	require.Equal(t, "DEBU", LevelDebug.String())
	require.Equal(t, "INFO", LevelInfo.String())
	require.Equal(t, "WARN", LevelWarning.String())
	require.Equal(t, "ERRO", LevelError.String())
	require.Equal(t, "Level(42)", Level(42).String())
}
