package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/w-flo/eu-emission-factors/internal/config"
)

const (
	ServiceVersion    = config.AppVersion
	InstrumentationID = "github.com/w-flo/eu-emission-factors"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	EnableTracing  bool
	TraceExporter  string // "stdout", "file"
	TraceFile      string
	// TraceWriter receives spans instead of stdout or TraceFile when set
	TraceWriter   io.Writer
	EnableMetrics bool
}

// OTelConfigFrom derives the telemetry setup from the application configuration
func OTelConfigFrom(cfg *config.Config) *OTelConfig {
	return &OTelConfig{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: ServiceVersion,
		EnableTracing:  cfg.Tracing.Enabled,
		TraceExporter:  cfg.Tracing.Exporter,
		TraceFile:      cfg.Tracing.FilePath,
		EnableMetrics:  cfg.Metrics.Enabled,
	}
}

// OTelProviders holds the OpenTelemetry providers. Tracer and Meter are no-op
// implementations when the corresponding signal is disabled.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	// Registry gathers the OpenTelemetry metrics in Prometheus form
	Registry *promclient.Registry
	Logger   *slog.Logger

	traceFile *os.File
}

// InitializeOTel sets up tracing and metrics for one process
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = OTelConfigFrom(config.Default())
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx := context.Background()

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	)

	providers := &OTelProviders{
		Tracer: tracenoop.NewTracerProvider().Tracer(InstrumentationID),
		Meter:  metricnoop.NewMeterProvider().Meter(InstrumentationID),
		Logger: logger,
	}

	if cfg.EnableTracing {
		if err := initializeTracing(cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	logger.DebugContext(ctx, "OpenTelemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	return providers, nil
}

// initializeTracing sets up span export to stdout or a file
func initializeTracing(cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	w := cfg.TraceWriter
	if w == nil {
		switch cfg.TraceExporter {
		case "stdout", "":
			w = os.Stdout
		case "file":
			if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
				return err
			}
			file, err := os.Create(cfg.TraceFile)
			if err != nil {
				return err
			}
			providers.traceFile = file
			w = file
		default:
			return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
		}
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(InstrumentationID, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	return nil
}

// initializeMetrics registers an OpenTelemetry meter provider backed by a
// private Prometheus registry
func initializeMetrics(cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	registry := promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.Registry = registry
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(InstrumentationID, metric.WithInstrumentationVersion(cfg.ServiceVersion))
	return nil
}

// WriteMetricsTextfile writes the gathered metrics in the node-exporter
// textfile format. It is a no-op when metrics are disabled.
func (p *OTelProviders) WriteMetricsTextfile(path string) error {
	if p.Registry == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return promclient.WriteToTextfile(path, p.Registry)
}

// Shutdown flushes and stops the OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if p.traceFile != nil {
		if err := p.traceFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("trace file close: %w", err))
		}
		p.traceFile = nil
	}

	return errors.Join(errs...)
}

// TraceIDFromContext returns the trace ID of the span in ctx, or "" without one
func TraceIDFromContext(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// SpanEvent adds an event to the span in ctx if it is recording
func SpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordSpanError marks the span in ctx as failed with err
func RecordSpanError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if err == nil || !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
