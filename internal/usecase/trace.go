package usecase

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var engineTracer = otel.Tracer("sleeper-trades/internal/usecase")
var engineNoopSpan = trace.SpanFromContext(context.Background())

func startEngineSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if strings.TrimSpace(name) == "" {
		return ctx, engineNoopSpan
	}
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, engineNoopSpan
	}
	return engineTracer.Start(ctx, name, opts...)
}
