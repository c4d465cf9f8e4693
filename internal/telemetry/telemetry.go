// Package telemetry wires OpenTelemetry tracing and metrics.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/red11scout/blueallygenaiwebsite"

// Metrics holds the application instruments
type Metrics struct {
	RequestCount      metric.Int64Counter
	RequestDuration   metric.Float64Histogram
	CalculationCount  metric.Int64Counter
	ResearchCount     metric.Int64Counter
	ResearchDuration  metric.Float64Histogram
	CacheHitCount     metric.Int64Counter
	CacheMissCount    metric.Int64Counter
	AuditFailureCount metric.Int64Counter
}

// Setup installs an OTLP trace exporter for endpoint. With no endpoint the
// global no-op provider stays in place and the returned shutdown does nothing.
func Setup(ctx context.Context, serviceName, serviceVersion, endpoint string) (func(context.Context) error, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// NewMetrics creates the instruments on the global meter provider
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)
	m := &Metrics{}
	var err error

	if m.RequestCount, err = meter.Int64Counter("http.server.request.count",
		metric.WithDescription("Number of HTTP requests")); err != nil {
		return nil, err
	}
	if m.RequestDuration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms")); err != nil {
		return nil, err
	}
	if m.CalculationCount, err = meter.Int64Counter("roi.calculation.count",
		metric.WithDescription("Number of engine calculations by type")); err != nil {
		return nil, err
	}
	if m.ResearchCount, err = meter.Int64Counter("roi.research.count",
		metric.WithDescription("Number of company research runs by outcome")); err != nil {
		return nil, err
	}
	if m.ResearchDuration, err = meter.Float64Histogram("roi.research.duration",
		metric.WithDescription("Company research duration in milliseconds"),
		metric.WithUnit("ms")); err != nil {
		return nil, err
	}
	if m.CacheHitCount, err = meter.Int64Counter("cache.hit.count",
		metric.WithDescription("Number of cache hits")); err != nil {
		return nil, err
	}
	if m.CacheMissCount, err = meter.Int64Counter("cache.miss.count",
		metric.WithDescription("Number of cache misses")); err != nil {
		return nil, err
	}
	if m.AuditFailureCount, err = meter.Int64Counter("roi.audit.failure.count",
		metric.WithDescription("Number of audit records that could not be written")); err != nil {
		return nil, err
	}

	return m, nil
}

// NopMetrics returns instruments that are safe to use without Setup.
func NopMetrics() *Metrics {
	m, err := NewMetrics()
	if err != nil {
		// the global meter provider never fails instrument creation
		panic(err)
	}
	return m
}

// StartSpan starts a span on the application tracer
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on span, if any, and ends it
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// RecordRequest records an HTTP request
func (m *Metrics) RecordRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.RequestCount.Add(ctx, 1, attrs)
	m.RequestDuration.Record(ctx, float64(d.Milliseconds()), attrs)
}

// RecordCalculation counts one engine calculation of kind
func (m *Metrics) RecordCalculation(ctx context.Context, kind string) {
	m.CalculationCount.Add(ctx, 1, metric.WithAttributes(attribute.String("calculation.type", kind)))
}

// RecordResearch records a research run; outcome is cached, fresh or failed
func (m *Metrics) RecordResearch(ctx context.Context, outcome string, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String("research.outcome", outcome))
	m.ResearchCount.Add(ctx, 1, attrs)
	m.ResearchDuration.Record(ctx, float64(d.Milliseconds()), attrs)
}

// RecordCache counts a hit or miss in the named cache
func (m *Metrics) RecordCache(ctx context.Context, cache string, hit bool) {
	attrs := metric.WithAttributes(attribute.String("cache.name", cache))
	if hit {
		m.CacheHitCount.Add(ctx, 1, attrs)
		return
	}
	m.CacheMissCount.Add(ctx, 1, attrs)
}

// RecordAuditFailure counts a dropped audit record
func (m *Metrics) RecordAuditFailure(ctx context.Context, kind string) {
	m.AuditFailureCount.Add(ctx, 1, metric.WithAttributes(attribute.String("calculation.type", kind)))
}
