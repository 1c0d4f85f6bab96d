package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/w-flo/eu-emission-factors/internal/config"
	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
	"github.com/w-flo/eu-emission-factors/internal/shared/testutil"
)

func quietLogger(t *testing.T) *slog.Logger {
	logger, _ := testutil.NewTestLogger(t)
	return logger
}

func TestOTelDisabledByDefault(t *testing.T) {
	providers, err := InitializeOTel(nil, quietLogger(t))
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.Registry)
	require.NotNil(t, providers.Tracer)
	require.NotNil(t, providers.Meter)

	// no-op instruments still work
	metrics, err := NewRunMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordRecordsRead(context.Background(), "ets", 3)

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, providers.WriteMetricsTextfile(path))
	assert.NoFileExists(t, path)

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestTracingExport(t *testing.T) {
	var buf bytes.Buffer
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    "emission-factors-test",
		ServiceVersion: "test",
		EnableTracing:  true,
		TraceWriter:    &buf,
	}, quietLogger(t))
	require.NoError(t, err)

	ctx, span := providers.Tracer.Start(context.Background(), "calculate")
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	SpanEvent(ctx, "stale_degree_days", attribute.Bool("accepted", true), attribute.Int("year", 2022))
	RecordSpanError(ctx, errors.New("boom"))
	RecordSpanError(ctx, nil)
	span.End()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, providers.Shutdown(shutdownCtx))

	out := buf.String()
	assert.Contains(t, out, `"Name": "calculate"`)
	assert.Contains(t, out, "stale_degree_days")
	assert.Contains(t, out, "boom")
}

func TestTracingFileExporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output", "trace.json")
	cfg := config.Default()
	cfg.Tracing.Enabled = true
	cfg.Tracing.Exporter = "file"
	cfg.Tracing.FilePath = path

	providers, err := InitializeOTel(OTelConfigFrom(cfg), quietLogger(t))
	require.NoError(t, err)

	_, span := providers.Tracer.Start(context.Background(), "preprocess")
	span.End()
	require.NoError(t, providers.Shutdown(context.Background()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "preprocess")
}

func TestUnsupportedTraceExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{EnableTracing: true, TraceExporter: "jaeger"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported trace exporter")
}

func TestMetricsTextfile(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    "emission-factors-test",
		ServiceVersion: "test",
		EnableMetrics:  true,
	}, quietLogger(t))
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := NewRunMetrics(providers.Meter)
	require.NoError(t, err)
	system, err := NewSystemMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordRecordsRead(ctx, "ets", 42)
	metrics.RecordRecordsWritten(ctx, "powerplants", 7)
	metrics.RecordMatches(ctx, "manual", "active", 3)
	metrics.RecordDegreeDayFallback(ctx, "DE")
	metrics.RecordStage(ctx, "calculate", 1500*time.Millisecond, nil)
	metrics.RecordStage(ctx, "match", time.Second, apperrors.NewMatchingError("bad input", nil))
	stats := system.Collect(ctx, time.Now().Add(-time.Minute))
	assert.GreaterOrEqual(t, stats.RunDuration, time.Minute)
	assert.Len(t, stats.LogAttrs(), 10)

	path := filepath.Join(t.TempDir(), "output", "emission_factors.prom")
	require.NoError(t, providers.WriteMetricsTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "emfactors_records_read")
	assert.Contains(t, text, `source="ets"`)
	assert.Contains(t, text, `origin="manual"`)
	assert.Contains(t, text, "emfactors_stage_duration")
	assert.Contains(t, text, `error_type="MATCHING"`)
	assert.Contains(t, text, "emfactors_goroutines")
}

func TestNilRunMetrics(t *testing.T) {
	var metrics *RunMetrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		metrics.RecordStage(ctx, "calculate", time.Second, nil)
		metrics.RecordRecordsRead(ctx, "ets", 1)
		metrics.RecordMatches(ctx, "auto", "ignored", 1)
		metrics.RecordDegreeDayFallback(ctx, "DE")
	})

	var system *SystemMetrics
	assert.NotNil(t, system.Collect(ctx, time.Now()))
}
