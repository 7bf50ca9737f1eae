// Package observability provides structured logging, metrics, and
// tracing for mailbox operations.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds mailbox context to a logger.
// Returns a new logger carrying the box_id field.
func EnrichLogger(logger *slog.Logger, boxID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("box_id", boxID))
}

// LogBoxOpen logs mailbox construction.
func LogBoxOpen(logger *slog.Logger, boxID string) {
	if logger == nil {
		return
	}
	logger.Info("mailbox opened",
		slog.String("box_id", boxID),
	)
}

// LogBoxClose logs mailbox teardown. Remaining undelivered entries are
// discarded, so their count is worth a record.
func LogBoxClose(logger *slog.Logger, boxID string, discarded int) {
	if logger == nil {
		return
	}
	logger.Info("mailbox closed",
		slog.String("box_id", boxID),
		slog.Int("discarded", discarded),
	)
}

// LogSend logs a delivered send. replaced indicates an undelivered
// entry for the same key was overwritten and its value lost.
func LogSend(logger *slog.Logger, boxID, key string, replaced bool) {
	if logger == nil {
		return
	}
	if replaced {
		logger.Debug("entry sent, previous value dropped",
			slog.String("box_id", boxID),
			slog.String("key", key),
		)
		return
	}
	logger.Debug("entry sent",
		slog.String("box_id", boxID),
		slog.String("key", key),
	)
}

// LogConsume logs a successful consume with the time spent waiting.
func LogConsume(logger *slog.Logger, boxID, key string, waitMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("entry consumed",
		slog.String("box_id", boxID),
		slog.String("key", key),
		slog.Float64("wait_ms", waitMs),
	)
}

// LogConsumeTimeout logs a consume that gave up without a value.
func LogConsumeTimeout(logger *slog.Logger, boxID, key string, timeout time.Duration) {
	if logger == nil {
		return
	}
	logger.Debug("timeout waiting for entry",
		slog.String("box_id", boxID),
		slog.String("key", key),
		slog.Duration("timeout", timeout),
	)
}

// LogRemove logs removal of an entry without delivery.
func LogRemove(logger *slog.Logger, boxID, key string) {
	if logger == nil {
		return
	}
	logger.Debug("entry removed",
		slog.String("box_id", boxID),
		slog.String("key", key),
	)
}

// LogClear logs a clear with the number of entries discarded.
func LogClear(logger *slog.Logger, boxID string, cleared int) {
	if logger == nil {
		return
	}
	logger.Debug("mailbox cleared",
		slog.String("box_id", boxID),
		slog.Int("cleared", cleared),
	)
}

// LogLockTimeout logs a failed bounded-wait lock acquisition.
// Contention is recoverable, so this is a warning, not an error.
func LogLockTimeout(logger *slog.Logger, boxID, op, key string) {
	if logger == nil {
		return
	}
	logger.Warn("lock unavailable",
		slog.String("box_id", boxID),
		slog.String("op", op),
		slog.String("key", key),
	)
}

// LogStoreError logs a failed persistence operation (non-fatal).
func LogStoreError(logger *slog.Logger, boxID, op, key string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("store operation failed",
		slog.String("box_id", boxID),
		slog.String("op", op),
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}

// LogRestore logs entries reloaded from a store at startup.
func LogRestore(logger *slog.Logger, boxID string, restored int) {
	if logger == nil {
		return
	}
	logger.Info("entries restored",
		slog.String("box_id", boxID),
		slog.Int("restored", restored),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
