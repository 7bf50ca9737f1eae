package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the mailbox tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("mailbox")

// SpanManager handles trace span lifecycle for blocking operations.
// Only waits are worth a span; the non-blocking table operations finish
// in microseconds and would produce noise.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartWaitSpan starts a span covering a blocking consume or wait.
	StartWaitSpan(ctx context.Context, boxID, key, op string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartWaitSpan starts a span covering a blocking consume or wait.
func (m *otelSpanManager) StartWaitSpan(ctx context.Context, boxID, key, op string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "mailbox."+op,
		trace.WithAttributes(
			attribute.String("box.id", boxID),
			attribute.String("entry.key", key),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
