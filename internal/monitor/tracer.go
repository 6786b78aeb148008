package monitor

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// TracerConfig tracing configuration
type TracerConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	JaegerEndpoint string
	SamplingRate   float64
	Enabled        bool
}

// Tracer distributed tracer
type Tracer struct {
	config   *TracerConfig
	provider *trace.TracerProvider
	tracer   oteltrace.Tracer
}

// NewTracer creates a tracer. A disabled tracer returns no-op spans.
func NewTracer(config *TracerConfig) (*Tracer, error) {
	if !config.Enabled {
		return &Tracer{
			config: config,
			tracer: otel.Tracer(config.ServiceName),
		}, nil
	}

	exporter, err := jaeger.New(
		jaeger.WithCollectorEndpoint(
			jaeger.WithEndpoint(config.JaegerEndpoint),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create jaeger exporter: %w", err)
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	provider := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.TraceIDRatioBased(config.SamplingRate)),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Tracer{
		config:   config,
		provider: provider,
		tracer:   provider.Tracer(config.ServiceName),
	}, nil
}

// StartSpan starts a new span
func (t *Tracer) StartSpan(ctx context.Context, operationName string, opts ...oteltrace.SpanStartOption) (context.Context, oteltrace.Span) {
	if !t.config.Enabled {
		return ctx, oteltrace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, operationName, opts...)
}

// StartCheckoutSpan starts a span covering one checkout attempt
func (t *Tracer) StartCheckoutSpan(ctx context.Context, buyerID string, basketID uint64) (context.Context, oteltrace.Span) {
	if !t.config.Enabled {
		return ctx, oteltrace.SpanFromContext(ctx)
	}

	return t.tracer.Start(ctx, "checkout.execute",
		oteltrace.WithAttributes(
			attribute.String("checkout.buyer_id", buyerID),
			attribute.Int64("checkout.basket_id", int64(basketID)),
		),
	)
}

// StartNotificationSpan starts a span for one fan-out channel
func (t *Tracer) StartNotificationSpan(ctx context.Context, channel string) (context.Context, oteltrace.Span) {
	if !t.config.Enabled {
		return ctx, oteltrace.SpanFromContext(ctx)
	}

	return t.tracer.Start(ctx, fmt.Sprintf("notify.%s", channel),
		oteltrace.WithSpanKind(oteltrace.SpanKindClient),
		oteltrace.WithAttributes(
			attribute.String("notify.channel", channel),
		),
	)
}

// RecordError records an error on the span
func (t *Tracer) RecordError(span oteltrace.Span, err error) {
	if !t.config.Enabled || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Shutdown flushes and stops the tracer
func (t *Tracer) Shutdown(ctx context.Context) error {
	if !t.config.Enabled || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// TraceID returns the current trace ID, if any
func (t *Tracer) TraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

// DefaultTracerConfig default tracer configuration
func DefaultTracerConfig() *TracerConfig {
	return &TracerConfig{
		ServiceName:    "storefront",
		ServiceVersion: "1.0.0",
		Environment:    "development",
		JaegerEndpoint: "http://localhost:14268/api/traces",
		SamplingRate:   1.0,
		Enabled:        false,
	}
}
