package otel

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const exportTimeout = 10 * time.Second

var (
	provider   *sdktrace.TracerProvider
	providerMu sync.Mutex
)

// InitTracer installs the global provider and W3C propagators and returns the
// service tracer. Spans stay in-process unless cfg.Exporting() holds.
func InitTracer(cfg Config) (trace.Tracer, error) {
	providerMu.Lock()
	defer providerMu.Unlock()

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !cfg.Exporting() {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp.Tracer(cfg.ServiceName), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(cfg.toResourceAttributes()...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build trace resource: %w", err)
	}

	provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithExportTimeout(exportTimeout)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRatio)),
	)
	otel.SetTracerProvider(provider)

	return provider.Tracer(cfg.ServiceName, trace.WithInstrumentationVersion(cfg.ServiceVersion)), nil
}

func sampler(ratio float64) sdktrace.Sampler {
	if ratio >= 1.0 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	if ratio <= 0 {
		return sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// newExporter picks OTLP/gRPC for grpc:// endpoints and OTLP/HTTP otherwise.
func newExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	var (
		exporter sdktrace.SpanExporter
		err      error
	)

	if cfg.usesGRPC() {
		grpcOpts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(strings.TrimPrefix(cfg.EndpointURL, grpcScheme)),
			otlptracegrpc.WithTimeout(exportTimeout),
		}
		if cfg.Insecure {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, grpcOpts...)
	} else {
		httpOpts := []otlptracehttp.Option{
			otlptracehttp.WithEndpointURL(cfg.EndpointURL),
			otlptracehttp.WithTimeout(exportTimeout),
		}
		if cfg.Insecure {
			httpOpts = append(httpOpts, otlptracehttp.WithInsecure())
		}
		exporter, err = otlptracehttp.New(ctx, httpOpts...)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create span exporter for %s: %w", cfg.EndpointURL, err)
	}
	return exporter, nil
}

// Shutdown flushes pending spans. It is a no-op when nothing was exported.
func Shutdown(ctx context.Context) error {
	providerMu.Lock()
	defer providerMu.Unlock()

	if provider == nil {
		return nil
	}

	err := provider.Shutdown(ctx)
	provider = nil
	if err != nil {
		return fmt.Errorf("failed to flush spans: %w", err)
	}
	return nil
}
