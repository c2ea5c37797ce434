package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds tracing configuration
type TracingConfig struct {
	ServiceName string
	Environment string
	SampleRate  float64
}

// NewTracerProvider builds an SDK provider with service attribution.
// Exporters are attached by the caller through opts.
func NewTracerProvider(cfg TracingConfig, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "graphcore"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = getSampleRate(cfg.Environment)
	}

	res := resource.NewWithAttributes(semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		attribute.String("deployment.environment", cfg.Environment),
	)

	opts = append([]sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))),
	}, opts...)
	return sdktrace.NewTracerProvider(opts...)
}

func getSampleRate(environment string) float64 {
	switch environment {
	case "production":
		return 0.1
	case "staging":
		return 0.5
	default:
		return 1.0
	}
}

// Tracer starts spans for command calls
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer from provider, or from the global provider
// when provider is nil.
func NewTracer(serviceName string, provider trace.TracerProvider) *Tracer {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &Tracer{tracer: provider.Tracer(serviceName)}
}

// Start starts a span
func (t *Tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordError marks the span as failed
func RecordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
