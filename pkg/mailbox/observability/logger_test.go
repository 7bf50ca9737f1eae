package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCaptureLogger returns a debug-level logger writing JSON lines to buf.
func newCaptureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	handler := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), buf
}

// lastRecord decodes the last JSON log line in buf.
func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &rec))
	return rec
}

func TestNilLoggerIsSafe(t *testing.T) {
	// Every helper must tolerate a nil logger without panicking.
	assert.NotPanics(t, func() {
		assert.Nil(t, EnrichLogger(nil, "box-1"))
		LogBoxOpen(nil, "box-1")
		LogBoxClose(nil, "box-1", 3)
		LogSend(nil, "box-1", "k", true)
		LogConsume(nil, "box-1", "k", 1.5)
		LogConsumeTimeout(nil, "box-1", "k", time.Second)
		LogRemove(nil, "box-1", "k")
		LogClear(nil, "box-1", 2)
		LogLockTimeout(nil, "box-1", "send", "k")
		LogStoreError(nil, "box-1", "save", "k", errors.New("boom"))
		LogRestore(nil, "box-1", 4)
	})
}

func TestEnrichLogger(t *testing.T) {
	logger, buf := newCaptureLogger()

	enriched := EnrichLogger(logger, "box-42")
	require.NotNil(t, enriched)

	enriched.InfoContext(context.Background(), "hello")

	rec := lastRecord(t, buf)
	assert.Equal(t, "box-42", rec["box_id"])
}

func TestLogSend(t *testing.T) {
	t.Run("fresh entry", func(t *testing.T) {
		logger, buf := newCaptureLogger()
		LogSend(logger, "box-1", "temperature", false)

		rec := lastRecord(t, buf)
		assert.Equal(t, "entry sent", rec["msg"])
		assert.Equal(t, "box-1", rec["box_id"])
		assert.Equal(t, "temperature", rec["key"])
	})

	t.Run("replaced entry", func(t *testing.T) {
		logger, buf := newCaptureLogger()
		LogSend(logger, "box-1", "temperature", true)

		rec := lastRecord(t, buf)
		assert.Equal(t, "entry sent, previous value dropped", rec["msg"])
	})
}

func TestLogConsume(t *testing.T) {
	logger, buf := newCaptureLogger()
	LogConsume(logger, "box-1", "status", 12.5)

	rec := lastRecord(t, buf)
	assert.Equal(t, "entry consumed", rec["msg"])
	assert.Equal(t, "status", rec["key"])
	assert.Equal(t, 12.5, rec["wait_ms"])
}

func TestLogLockTimeout(t *testing.T) {
	logger, buf := newCaptureLogger()
	LogLockTimeout(logger, "box-1", "send", "k")

	rec := lastRecord(t, buf)
	assert.Equal(t, "lock unavailable", rec["msg"])
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "send", rec["op"])
}

func TestLogStoreError(t *testing.T) {
	logger, buf := newCaptureLogger()
	LogStoreError(logger, "box-1", "save", "k", errors.New("disk full"))

	rec := lastRecord(t, buf)
	assert.Equal(t, "store operation failed", rec["msg"])
	assert.Equal(t, "disk full", rec["error"])
}

func TestLogClear(t *testing.T) {
	logger, buf := newCaptureLogger()
	LogClear(logger, "box-1", 7)

	rec := lastRecord(t, buf)
	assert.Equal(t, "mailbox cleared", rec["msg"])
	assert.Equal(t, float64(7), rec["cleared"])
}

func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	time.Sleep(15 * time.Millisecond)
	elapsed := done()

	assert.GreaterOrEqual(t, elapsed, float64(10))
	assert.Less(t, elapsed, float64(5000))
}
