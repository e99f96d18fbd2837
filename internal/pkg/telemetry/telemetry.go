// Package telemetry initializes OpenTelemetry metrics, tracing and logs with
// OTLP gRPC exporters. Exporter endpoints follow the standard OTEL_EXPORTER_OTLP_*
// environment variables. When telemetry is disabled the global no-op
// providers stay in place, so instruments created by other packages keep
// working without exporting anything.
package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// NetworkKey tags telemetry with the indexed KILT network (spiritnet, peregrine).
const NetworkKey = attribute.Key("kilt.network")

// loggerProvider is set by Init and stays nil while telemetry is disabled.
var loggerProvider log.LoggerProvider

// LoggerProvider returns the log provider registered by Init, or nil when
// Init was not called.
func LoggerProvider() log.LoggerProvider {
	return loggerProvider
}

func initMeterProvider(ctx context.Context, res *sdkresource.Resource) (*sdkmetric.MeterProvider, error) {
	exporter, err := otlpmetricgrpc.New(ctx)
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)
	return mp, nil
}

func initTracerProvider(ctx context.Context, res *sdkresource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	return tp, nil
}

func initLoggerProvider(ctx context.Context, res *sdkresource.Resource) (*sdklog.LoggerProvider, error) {
	exporter, err := otlploggrpc.New(ctx)
	if err != nil {
		return nil, err
	}

	lp := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(res),
	)

	global.SetLoggerProvider(lp)
	loggerProvider = lp
	return lp, nil
}

func newResource(cfg config) (*sdkresource.Resource, error) {
	attrs := []attribute.KeyValue{semconv.ServiceName(cfg.serviceName)}
	if cfg.serviceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.serviceVersion))
	}
	if cfg.network != "" {
		attrs = append(attrs, NetworkKey.String(cfg.network))
	}

	return sdkresource.Merge(
		sdkresource.Default(),
		sdkresource.NewWithAttributes(semconv.SchemaURL, attrs...),
	)
}

// ShutdownFunc flushes and stops the telemetry pipelines.
type ShutdownFunc func(ctx context.Context) error

// Noop is the ShutdownFunc used when telemetry is disabled.
func Noop(context.Context) error { return nil }

type config struct {
	serviceName    string
	serviceVersion string
	network        string
}

// Option customizes the telemetry resource.
type Option func(*config)

// WithServiceVersion adds service.version to the resource.
func WithServiceVersion(v string) Option {
	return func(c *config) {
		c.serviceVersion = v
	}
}

// WithNetwork adds the indexed network to the resource.
func WithNetwork(network string) Option {
	return func(c *config) {
		c.network = network
	}
}

// Init registers OTLP meter, tracer and logger providers as the global
// providers and returns a ShutdownFunc to flush them on exit. It must run
// before logger.Init for log entries to be exported.
func Init(ctx context.Context, serviceName string, opts ...Option) (ShutdownFunc, error) {
	cfg := config{serviceName: serviceName}
	for _, opt := range opts {
		opt(&cfg)
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, err
	}

	mp, err := initMeterProvider(ctx, res)
	if err != nil {
		return nil, err
	}

	tp, err := initTracerProvider(ctx, res)
	if err != nil {
		return nil, errors.Join(err, mp.Shutdown(ctx))
	}

	lp, err := initLoggerProvider(ctx, res)
	if err != nil {
		return nil, errors.Join(err, mp.Shutdown(ctx), tp.Shutdown(ctx))
	}

	return func(ctx context.Context) error {
		return errors.Join(
			mp.Shutdown(ctx),
			tp.Shutdown(ctx),
			lp.Shutdown(ctx),
		)
	}, nil
}
