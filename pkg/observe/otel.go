package observe

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flare-dev/flare/pkg/flare"
)

// Default tracer name for flare applications.
const defaultTracerName = "flare"

// TraceConfig configures transaction tracing.
type TraceConfig struct {
	// TracerName is the name of the tracer (default: "flare").
	TracerName string

	// Attributes are added to every transaction span.
	Attributes []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// TraceOption configures transaction tracing.
type TraceOption func(*TraceConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TraceOption {
	return func(c *TraceConfig) {
		c.TracerName = name
	}
}

// WithSpanAttributes adds attributes to every transaction span.
func WithSpanAttributes(attrs ...attribute.KeyValue) TraceOption {
	return func(c *TraceConfig) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// defaultTraceConfig returns the default tracing configuration.
func defaultTraceConfig() TraceConfig {
	return TraceConfig{
		TracerName: defaultTracerName,
	}
}

// Tracer wraps reactive transactions in OpenTelemetry spans.
//
// The tracer uses the global OpenTelemetry tracer provider. Configure it
// in your main() before creating the tracer:
//
//	tp := sdktrace.NewTracerProvider(
//	    sdktrace.WithBatcher(exporter),
//	)
//	otel.SetTracerProvider(tp)
type Tracer struct {
	config TraceConfig
}

// NewTracer creates a transaction tracer resolved from the global
// tracer provider.
func NewTracer(opts ...TraceOption) *Tracer {
	config := defaultTraceConfig()
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)

	return &Tracer{config: config}
}

// SpanTx runs fn inside a single reactive batch wrapped in a span named
// "flare.tx/<name>". A panic escaping fn is recorded on the span, sets
// an error status, and is re-raised.
func (t *Tracer) SpanTx(ctx context.Context, name string, fn func()) {
	spanName := fmt.Sprintf("flare.tx/%s", name)
	attrs := append([]attribute.KeyValue{
		attribute.String("flare.tx_name", name),
	}, t.config.Attributes...)

	_, span := t.config.tracer.Start(ctx, spanName,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			panic(r)
		}
		span.SetStatus(codes.Ok, "")
	}()

	flare.Batch(fn)
}
