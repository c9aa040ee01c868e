// Package apm bootstraps the OpenTelemetry trace pipeline.
package apm

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Exporter selects the span exporter backend.
type Exporter string

const (
	ExporterOTLP   Exporter = "otlp"
	ExporterZipkin Exporter = "zipkin"
	ExporterStdout Exporter = "stdout"
	ExporterNone   Exporter = "none"
)

// Options configures the trace provider.
type Options struct {
	ServiceName  string
	Exporter     Exporter
	OTLPEndpoint string
	ZipkinURL    string
}

// TraceProvider owns the installed tracer provider.
type TraceProvider interface {
	Stop() error
}

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

type emptyTraceProvider struct{}

func (emptyTraceProvider) Stop() error { return nil }

// NewTraceProvider installs the global tracer provider and propagators.
// With ExporterNone a no-op provider is installed and spans cost nothing.
func NewTraceProvider(ctx context.Context, opts Options) (TraceProvider, error) {
	var (
		exp sdktrace.SpanExporter
		err error
	)

	switch opts.Exporter {
	case ExporterOTLP:
		exp, err = otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(opts.OTLPEndpoint))
	case ExporterZipkin:
		exp, err = zipkin.New(opts.ZipkinURL)
	case ExporterStdout:
		exp, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case ExporterNone, "":
		otel.SetTracerProvider(noop.NewTracerProvider())
		return emptyTraceProvider{}, nil
	default:
		return nil, fmt.Errorf("apm: unknown trace exporter %q", opts.Exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("apm: create %s exporter: %w", opts.Exporter, err)
	}

	rsrc, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(opts.ServiceName),
			attribute.String("otel.exporter", string(opts.Exporter)),
		))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(rsrc),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	return &traceProvider{tp: tp}, nil
}

func (p *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.tp.Shutdown(ctx)
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(name)
}
