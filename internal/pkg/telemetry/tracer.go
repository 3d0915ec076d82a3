// Package telemetry wires structured logging and OpenTelemetry tracing for
// the storefront. SetupTracer initialises the OTel SDK with an OTLP gRPC
// exporter; call it once at the top of main() and defer the returned
// shutdown function. Spans created by the otelhttp transports around the
// collaborator API clients are exported automatically, and their trace IDs
// end up both in log lines (see logger.go) and in payment-attempt log rows.
package telemetry

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ShutdownFunc must be called before the process exits to flush any
// buffered spans and close the exporter connection cleanly.
type ShutdownFunc func(ctx context.Context) error

// SetupTracer initialises the global TracerProvider and TextMapPropagator
// for the given service name.
//
// Environment:
//   - OTEL_EXPORTER_OTLP_ENDPOINT: collector host:port, default localhost:4317
//   - OTEL_TRACES_SAMPLER_ARG: sampling ratio 0..1, default 1 (sample all)
func SetupTracer(ctx context.Context, serviceName string) (ShutdownFunc, error) {
	exporter, conn, err := newExporter(ctx)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(serviceName),
			semconv.DeploymentEnvironment(getEnv("OTEL_RESOURCE_ATTRIBUTES_ENV", "local")),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: failed to build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFromEnv()),
	)

	// otelhttp reads the global provider internally, so nothing needs to be
	// passed around manually.
	otel.SetTracerProvider(tp)

	// W3C TraceContext + Baggage, so trace_id survives the hop into the
	// backend APIs and shows up in their logs too.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("telemetry: error shutting down TracerProvider: %w", err)
		}
		return conn.Close()
	}, nil
}

func newExporter(ctx context.Context) (*otlptrace.Exporter, *grpc.ClientConn, error) {
	// The gRPC dialer expects host:port without a scheme.
	endpoint := stripScheme(getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"))

	conn, err := grpc.NewClient(
		endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: failed to dial OTel Collector at %s: %w", endpoint, err)
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: failed to create OTLP trace exporter: %w", err)
	}
	return exporter, conn, nil
}

// samplerFromEnv maps OTEL_TRACES_SAMPLER_ARG to a ratio sampler. The
// default samples every request, which is what local dev and the demo
// deployments want; production sets a ratio below 1.
func samplerFromEnv() sdktrace.Sampler {
	raw := os.Getenv("OTEL_TRACES_SAMPLER_ARG")
	if raw == "" {
		return sdktrace.AlwaysSample()
	}
	ratio, err := strconv.ParseFloat(raw, 64)
	if err != nil || ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func stripScheme(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "http://")
	return strings.TrimPrefix(endpoint, "https://")
}
