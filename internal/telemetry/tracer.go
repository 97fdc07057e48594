// Package telemetry provides the orchestrator's distributed tracing
// provider: one span per coordinator stage, exported via OTLP/gRPC when
// an endpoint is configured and to stdout otherwise (for local
// development without a collector running). Grounded on the teacher's
// telemetry.OTelProvider, trimmed to tracing only — C9/C10's own
// structured logs already cover the metrics the teacher's provider
// additionally exports, and wiring both would duplicate the same
// per-stage counters two ways.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	stdouttrace "go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// Provider owns the tracer provider lifecycle and exposes StartSpan for
// coordinator/workflow stages to wrap.
type Provider struct {
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
}

// NewProvider creates a Provider for serviceName. If endpoint is
// non-empty, spans export via OTLP/gRPC to that collector; otherwise
// they print to stdout, matching local-dev-friendly defaults elsewhere
// in the stack (obslog's text-format fallback).
func NewProvider(serviceName, endpoint string) (*Provider, error) {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	exporter, err := newExporter(endpoint)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return &Provider{
		tracerProvider: tp,
		tracer:         tp.Tracer(serviceName),
	}, nil
}

func newExporter(endpoint string) (sdktrace.SpanExporter, error) {
	if endpoint == "" {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	return otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
}

// StartSpan starts a child span named name under ctx, tagging it with
// attrs.
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// Shutdown flushes and stops the tracer provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.tracerProvider.Shutdown(ctx)
}
