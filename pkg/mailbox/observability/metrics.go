package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records mailbox metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordSend records a successful send. replaced indicates an
	// undelivered entry was overwritten and its value dropped.
	RecordSend(ctx context.Context, boxID string, replaced bool)

	// RecordDelivery records a consume that returned a value, with the
	// time the consumer spent waiting.
	RecordDelivery(ctx context.Context, boxID string, wait time.Duration)

	// RecordMiss records an operation that found no entry (timeout or
	// absent key).
	RecordMiss(ctx context.Context, boxID, op string)

	// RecordLockTimeout records a failed bounded-wait lock acquisition.
	RecordLockTimeout(ctx context.Context, boxID, op string)

	// RecordStoreError records a failed persistence operation.
	RecordStoreError(ctx context.Context, boxID, op string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	sends        metric.Int64Counter
	dropped      metric.Int64Counter
	deliveries   metric.Int64Counter
	waitLatency  metric.Float64Histogram
	misses       metric.Int64Counter
	lockTimeouts metric.Int64Counter
	storeErrors  metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("mailbox")

	sends, err := meter.Int64Counter("mailbox.sends",
		metric.WithDescription("Number of successful sends"),
	)
	if err != nil {
		return nil, err
	}

	dropped, err := meter.Int64Counter("mailbox.dropped",
		metric.WithDescription("Number of undelivered entries overwritten by a send"),
	)
	if err != nil {
		return nil, err
	}

	deliveries, err := meter.Int64Counter("mailbox.deliveries",
		metric.WithDescription("Number of consumes that returned a value"),
	)
	if err != nil {
		return nil, err
	}

	waitLatency, err := meter.Float64Histogram("mailbox.wait_ms",
		metric.WithDescription("Time consumers spent waiting for a value in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter("mailbox.misses",
		metric.WithDescription("Number of operations that found no entry"),
	)
	if err != nil {
		return nil, err
	}

	lockTimeouts, err := meter.Int64Counter("mailbox.lock_timeouts",
		metric.WithDescription("Number of failed bounded-wait lock acquisitions"),
	)
	if err != nil {
		return nil, err
	}

	storeErrors, err := meter.Int64Counter("mailbox.store_errors",
		metric.WithDescription("Number of failed persistence operations"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		sends:        sends,
		dropped:      dropped,
		deliveries:   deliveries,
		waitLatency:  waitLatency,
		misses:       misses,
		lockTimeouts: lockTimeouts,
		storeErrors:  storeErrors,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordSend records a successful send.
func (m *otelMetrics) RecordSend(ctx context.Context, boxID string, replaced bool) {
	attrs := []attribute.KeyValue{
		attribute.String("box_id", boxID),
	}
	m.sends.Add(ctx, 1, metric.WithAttributes(attrs...))
	if replaced {
		m.dropped.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordDelivery records a consume that returned a value.
func (m *otelMetrics) RecordDelivery(ctx context.Context, boxID string, wait time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("box_id", boxID),
	}
	m.deliveries.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.waitLatency.Record(ctx, float64(wait.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordMiss records an operation that found no entry.
func (m *otelMetrics) RecordMiss(ctx context.Context, boxID, op string) {
	m.misses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("box_id", boxID),
		attribute.String("op", op),
	))
}

// RecordLockTimeout records a failed lock acquisition.
func (m *otelMetrics) RecordLockTimeout(ctx context.Context, boxID, op string) {
	m.lockTimeouts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("box_id", boxID),
		attribute.String("op", op),
	))
}

// RecordStoreError records a failed persistence operation.
func (m *otelMetrics) RecordStoreError(ctx context.Context, boxID, op string) {
	m.storeErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("box_id", boxID),
		attribute.String("op", op),
	))
}
