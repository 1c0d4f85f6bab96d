package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
)

// RunMetrics holds the instruments recorded by preprocess and processing runs
type RunMetrics struct {
	StageDuration metric.Float64Histogram
	StageErrors   metric.Int64Counter
	RecordsRead   metric.Int64Counter
	RecordsOut    metric.Int64Counter
	Matches       metric.Int64Counter
	Fallbacks     metric.Int64Counter
}

// NewRunMetrics creates the run instruments on meter
func NewRunMetrics(meter metric.Meter) (*RunMetrics, error) {
	stageDuration, err := meter.Float64Histogram(
		"emfactors_stage_duration",
		metric.WithDescription("Duration of a pipeline stage"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stageErrors, err := meter.Int64Counter(
		"emfactors_stage_errors",
		metric.WithDescription("Number of failed pipeline stages"),
	)
	if err != nil {
		return nil, err
	}

	recordsRead, err := meter.Int64Counter(
		"emfactors_records_read",
		metric.WithDescription("Number of input records read"),
	)
	if err != nil {
		return nil, err
	}

	recordsOut, err := meter.Int64Counter(
		"emfactors_records_written",
		metric.WithDescription("Number of output rows written"),
	)
	if err != nil {
		return nil, err
	}

	matches, err := meter.Int64Counter(
		"emfactors_matches",
		metric.WithDescription("Number of power plant matches by origin and state"),
	)
	if err != nil {
		return nil, err
	}

	fallbacks, err := meter.Int64Counter(
		"emfactors_degree_day_fallbacks",
		metric.WithDescription("Number of matches using the degree day baseline because the current year is missing"),
	)
	if err != nil {
		return nil, err
	}

	return &RunMetrics{
		StageDuration: stageDuration,
		StageErrors:   stageErrors,
		RecordsRead:   recordsRead,
		RecordsOut:    recordsOut,
		Matches:       matches,
		Fallbacks:     fallbacks,
	}, nil
}

// RecordStage records the duration and outcome of a pipeline stage
func (m *RunMetrics) RecordStage(ctx context.Context, stage string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	m.StageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	))

	if err != nil {
		m.StageErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("stage", stage),
			attribute.String("error_type", errorType(err)),
		))
	}

	SpanEvent(ctx, "stage.metrics_recorded",
		attribute.String("stage", stage),
		attribute.Bool("success", err == nil),
		attribute.Float64("duration_seconds", duration.Seconds()),
	)
}

// RecordRecordsRead counts input records by source ("ets", "entsoe", "manual", ...)
func (m *RunMetrics) RecordRecordsRead(ctx context.Context, source string, n int) {
	if m == nil {
		return
	}
	m.RecordsRead.Add(ctx, int64(n), metric.WithAttributes(attribute.String("source", source)))
}

// RecordRecordsWritten counts output rows by file kind
func (m *RunMetrics) RecordRecordsWritten(ctx context.Context, output string, n int) {
	if m == nil {
		return
	}
	m.RecordsOut.Add(ctx, int64(n), metric.WithAttributes(attribute.String("output", output)))
}

// RecordMatches counts matches by origin ("manual", "auto") and state ("active", "ignored")
func (m *RunMetrics) RecordMatches(ctx context.Context, origin, state string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.Matches.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String("origin", origin),
		attribute.String("state", state),
	))
}

// RecordDegreeDayFallback counts a match whose country has no current degree day value
func (m *RunMetrics) RecordDegreeDayFallback(ctx context.Context, country string) {
	if m == nil {
		return
	}
	m.Fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("country", country)))
}

func errorType(err error) string {
	if t, ok := apperrors.TypeOf(err); ok {
		return string(t)
	}
	return fmt.Sprintf("%T", err)
}
