package analysis

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
)

// #region analyzer

// Analyzer turns free text into a partial affect payload. Implementations
// may block on I/O; they are only ever called from the Sampler goroutine.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (affect.Partial, error)
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(ctx context.Context, text string) (affect.Partial, error)

// Analyze calls f(ctx, text).
func (f AnalyzerFunc) Analyze(ctx context.Context, text string) (affect.Partial, error) {
	return f(ctx, text)
}

// ErrEmptyText is returned for blank input.
var ErrEmptyText = errors.New("analysis: empty text")

// #endregion analyzer

// #region tracing

const tracerName = "github.com/danielpatrickdp/affect-field/go-controller/internal/analysis"

// startSpan opens a span on the global tracer provider, a no-op unless
// telemetry.Setup registered one.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan records the outcome and closes the span.
func endSpan(span trace.Span, p affect.Partial, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("analysis.channels", len(p)))
	}
	span.End()
}

// #endregion tracing
