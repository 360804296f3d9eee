package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureAll(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	SetWriterForAll(buf)
	t.Cleanup(func() {
		SetWriterForAll(os.Stdout)
		SetVerbose(false)
	})
	return buf
}

func TestDebugSuppressedUnlessVerbose(t *testing.T) {
	buf := captureAll(t)

	Debug("hidden %d", 1)
	assert.Empty(t, buf.String())

	SetVerbose(true)
	require.True(t, IsVerbose())
	Debug("shown %d", 2)
	assert.Contains(t, buf.String(), "DEBUG shown 2")
}

func TestNonTerminalWriterHasNoColor(t *testing.T) {
	buf := captureAll(t)

	Error("Error reading %s: %s", "app/a.ts", "permission denied")

	out := buf.String()
	assert.Contains(t, out, "ERROR Error reading app/a.ts: permission denied")
	assert.NotContains(t, out, "\x1b[")
}

func TestAddWriterForAllTeesOutput(t *testing.T) {
	primary := captureAll(t)
	file := &bytes.Buffer{}

	AddWriterForAll(file)
	Info("Added dynamic export to %s", "route.ts")

	assert.Contains(t, primary.String(), "INFO  Added dynamic export to route.ts")
	assert.Equal(t, primary.String(), file.String())
}

func TestFatalUsesExitFunc(t *testing.T) {
	buf := captureAll(t)
	code := -1
	SetExitFunc(func(c int) { code = c })
	t.Cleanup(func() { SetExitFunc(os.Exit) })

	Fatal("boom")

	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "FATAL boom")
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "WARN", WARN.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestGetLogFromLevel(t *testing.T) {
	buf := captureAll(t)

	GetLogFromLevel(DEBUG)("hidden")
	GetLogFromLevel(WARN)("scanned %d files", 3)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WARN  scanned 3 files")
}

func TestSetErrorWriterMovesErrorsToStderr(t *testing.T) {
	buf := captureAll(t)

	SetErrorWriter()
	Info("still buffered")

	assert.Contains(t, buf.String(), "still buffered")
	assert.Same(t, os.Stderr, globalLogger.sinks[ERROR].writer)
	assert.Same(t, os.Stderr, globalLogger.sinks[FATAL].writer)
	assert.NotSame(t, os.Stderr, globalLogger.sinks[INFO].writer)
}
