package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/scod/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
	Environment    string `mapstructure:"environment"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `mapstructure:"interval"`
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "0.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Get("observability").Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by the resolution engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	constructions        metric.Int64Counter
	constructionDuration metric.Float64Histogram
	invocations          metric.Int64Counter
	invocationDuration   metric.Float64Histogram
	errors               metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	constructions, err := meter.Int64Counter("component.constructions",
		metric.WithDescription("Component construction attempts"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating component.constructions counter: %w", err)
	}

	constructionDuration, err := meter.Float64Histogram("component.construction.duration",
		metric.WithDescription("Duration of component construction in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating component.construction.duration histogram: %w", err)
	}

	invocations, err := meter.Int64Counter("operation.invocations",
		metric.WithDescription("Operation invocations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating operation.invocations counter: %w", err)
	}

	invocationDuration, err := meter.Float64Histogram("operation.duration",
		metric.WithDescription("Duration of operation invocations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating operation.duration histogram: %w", err)
	}

	errs, err := meter.Int64Counter("di.errors",
		metric.WithDescription("Resolution and invocation errors by code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.errors counter: %w", err)
	}

	return &Metrics{
		constructions:        constructions,
		constructionDuration: constructionDuration,
		invocations:          invocations,
		invocationDuration:   invocationDuration,
		errors:               errs,
	}, nil
}

// RecordConstruction records one component construction.
func (m *Metrics) RecordConstruction(ctx context.Context, component, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.constructions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("component", component),
		attribute.String("status", status),
	))
	m.constructionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("component", component),
	))
}

// RecordInvocation records one operation invocation.
func (m *Metrics) RecordInvocation(ctx context.Context, operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.invocations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
	m.invocationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordError records an error by code and the component or operation it belongs to.
func (m *Metrics) RecordError(ctx context.Context, code, source string) {
	if m == nil {
		return
	}
	m.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("source", source),
	))
}
