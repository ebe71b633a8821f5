// Package telemetry sets up OpenTelemetry tracing and metrics for the railops
// binaries and defines the engine's own instruments.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Resource attribute keys describing a railops deployment.
const (
	AttrComponent      = attribute.Key("railops.component")
	AttrTimeZone       = attribute.Key("railops.time_zone")
	AttrServiceClasses = attribute.Key("railops.service_classes")
	AttrRosterSource   = attribute.Key("railops.roster_source")
)

// Config holds configuration for telemetry setup.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	Enabled        bool

	// Component is the binary role, "api" or "worker".
	Component string

	// TimeZone is the zone operational minutes are read in.
	TimeZone string

	// ServiceClasses are the roster classes this process computes.
	ServiceClasses []string

	// RosterSource is "fixture" or "postgres".
	RosterSource string

	// SampleRatio is the share of root traces kept. Default: 1
	SampleRatio float64

	// MetricInterval is how often metrics are pushed. Default: 15 seconds
	MetricInterval time.Duration
}

// Provider holds the initialized telemetry providers and the engine
// instruments registered on them.
type Provider struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Instruments    *Instruments
}

// Shutdown flushes and stops both providers, joining their errors.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer provider: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ResourceAttributes returns the attributes identifying this process in
// exported traces and metrics.
func ResourceAttributes(cfg Config) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.Environment),
	}
	if cfg.Component != "" {
		attrs = append(attrs, AttrComponent.String(cfg.Component))
	}
	if cfg.TimeZone != "" {
		attrs = append(attrs, AttrTimeZone.String(cfg.TimeZone))
	}
	if len(cfg.ServiceClasses) > 0 {
		attrs = append(attrs, AttrServiceClasses.String(strings.Join(cfg.ServiceClasses, ",")))
	}
	if cfg.RosterSource != "" {
		attrs = append(attrs, AttrRosterSource.String(cfg.RosterSource))
	}
	return attrs
}

// Init installs the global tracer and meter providers and registers the
// engine instruments. With Enabled unset nothing is exported, but the
// returned Provider is still usable.
func Init(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return withInstruments(&Provider{
			Tracer: otel.Tracer(cfg.ServiceName),
			Meter:  otel.Meter(cfg.ServiceName),
		})
	}

	res, err := resource.New(ctx, resource.WithAttributes(ResourceAttributes(cfg)...))
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRatio)),
	)

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		_ = tracerProvider.Shutdown(ctx)
		return nil, fmt.Errorf("create metric exporter: %w", err)
	}
	interval := cfg.MetricInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(interval))),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	p, err := withInstruments(&Provider{
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		Tracer:         tracerProvider.Tracer(cfg.ServiceName),
		Meter:          meterProvider.Meter(cfg.ServiceName),
	})
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}
	return p, nil
}

func withInstruments(p *Provider) (*Provider, error) {
	inst, err := NewInstruments(p.Meter)
	if err != nil {
		return p, fmt.Errorf("register engine instruments: %w", err)
	}
	p.Instruments = inst
	return p, nil
}

// sampler keeps ratio of root traces and follows the parent otherwise.
func sampler(ratio float64) sdktrace.Sampler {
	if ratio <= 0 || ratio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// Tracer returns the global tracer with the given name.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
