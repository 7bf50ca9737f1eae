package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
// Use when metrics are disabled to avoid overhead.
type NoopMetrics struct{}

// Compile-time interface check.
var _ MetricsRecorder = NoopMetrics{}

// RecordSend does nothing.
func (NoopMetrics) RecordSend(_ context.Context, _ string, _ bool) {}

// RecordDelivery does nothing.
func (NoopMetrics) RecordDelivery(_ context.Context, _ string, _ time.Duration) {}

// RecordMiss does nothing.
func (NoopMetrics) RecordMiss(_ context.Context, _, _ string) {}

// RecordLockTimeout does nothing.
func (NoopMetrics) RecordLockTimeout(_ context.Context, _, _ string) {}

// RecordStoreError does nothing.
func (NoopMetrics) RecordStoreError(_ context.Context, _, _ string) {}

// NoopSpanManager is a SpanManager that does nothing.
// Use when tracing is disabled to avoid overhead.
type NoopSpanManager struct{}

// Compile-time interface check.
var _ SpanManager = NoopSpanManager{}

// noopSpan is a span that does nothing.
// We use the OTel noop package for a proper no-op span implementation.
var noopSpan = noop.Span{}

// StartWaitSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartWaitSpan(ctx context.Context, _, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(_ trace.Span, _ error) {}
