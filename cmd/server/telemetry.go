package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// serviceName identifies the server in exported traces.
const serviceName = "prisoners-dilemma"

// setupTelemetry sets the global tracer provider and propagators.
// Spans are only exported when the zipkin url is set.
// The returned function flushes spans that have not been exported and should be called when the server stops.
func (m mainFlags) setupTelemetry(ctx context.Context, log *logrus.Logger) (func(context.Context) error, error) {
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			b3.New(),
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)
	if len(m.zipkinURL) == 0 {
		log.Infof("no zipkin url, traces will not be exported")
		noop := func(context.Context) error { return nil }
		return noop, nil
	}
	exporter, err := zipkin.New(m.zipkinURL)
	if err != nil {
		return nil, fmt.Errorf("creating zipkin exporter: %w", err)
	}
	tp := newTracerProvider(exporter)
	otel.SetTracerProvider(tp)
	log.Infof("exporting traces to %v", m.zipkinURL)
	shutdown := func(ctx context.Context) error {
		log.Info("shutting down telemetry")
		return tp.Shutdown(ctx)
	}
	return shutdown, nil
}

// newTracerProvider creates a provider that samples all spans and sends them to the exporter in batches.
func newTracerProvider(exporter sdktrace.SpanExporter) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	return tp
}
