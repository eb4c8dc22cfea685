package log

import (
	"bytes"
	stdlog "log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	var buf bytes.Buffer

	stdlog.SetOutput(&buf)
	stdlog.SetFlags(0)

	t.Cleanup(func() {
		stdlog.SetOutput(os.Stderr)
		stdlog.SetFlags(stdlog.LstdFlags)
	})

	fn()

	return buf.String()
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input string
		want  LogLevel
	}{
		{input: "debug", want: DebugLevel},
		{input: "INFO", want: InfoLevel},
		{input: "warn", want: WarnLevel},
		{input: "warning", want: WarnLevel},
		{input: "Error", want: ErrorLevel},
		{input: "fatal", want: FatalLevel},
	}

	for _, tc := range testCases {
		level, err := ParseLevel(tc.input)
		require.NoError(t, err)
		assert.Equal(t, tc.want, level)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestGoLogger_LevelFiltering(t *testing.T) {
	logger := &GoLogger{Level: WarnLevel}

	out := captureOutput(t, func() {
		logger.Info("hidden")
		logger.Debugf("also %s", "hidden")
		logger.Warn("visible warning")
		logger.Errorf("visible %s", "error")
	})

	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] visible warning")
	assert.Contains(t, out, "[ERROR] visible error")
}

func TestGoLogger_WithFields(t *testing.T) {
	logger := (&GoLogger{Level: InfoLevel}).WithFields("component", "lease", "holder", "agent-x")

	out := captureOutput(t, func() {
		logger.Info("lease granted")
	})

	assert.Contains(t, out, "component=lease")
	assert.Contains(t, out, "holder=agent-x")
	assert.Contains(t, out, "lease granted")
}

func TestGoLogger_SanitizesControlCharacters(t *testing.T) {
	logger := &GoLogger{Level: InfoLevel}

	out := captureOutput(t, func() {
		logger.Info("user input: line1\nline2")
	})

	assert.Contains(t, out, `line1\nline2`)
	assert.NotContains(t, out, "line1\nline2")
}

func TestGoLogger_NilSafe(t *testing.T) {
	var logger *GoLogger

	assert.NotPanics(t, func() {
		logger.Info("dropped")
		logger.WithFields("a", 1).Warn("dropped")
	})
	assert.False(t, logger.IsLevelEnabled(ErrorLevel))
}

func TestNoneLogger_ImplementsLogger(t *testing.T) {
	var logger Logger = &NoneLogger{}

	assert.NotPanics(t, func() {
		logger.Infof("ignored %d", 1)
		logger.WithFields("k", "v").Error("ignored")
	})
	assert.NoError(t, logger.Sync())
}
