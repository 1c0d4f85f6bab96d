package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// SystemMetrics records Go runtime figures once per run
type SystemMetrics struct {
	goRoutines      metric.Int64Gauge
	memoryUsage     metric.Int64Gauge
	memoryAllocated metric.Int64Gauge
	gcCount         metric.Int64Gauge
	runDuration     metric.Float64Gauge
}

// NewSystemMetrics creates the runtime gauges on meter
func NewSystemMetrics(meter metric.Meter) (*SystemMetrics, error) {
	goRoutines, err := meter.Int64Gauge(
		"emfactors_goroutines",
		metric.WithDescription("Number of goroutines at the end of the run"),
	)
	if err != nil {
		return nil, err
	}

	memoryUsage, err := meter.Int64Gauge(
		"emfactors_memory_usage",
		metric.WithDescription("Heap bytes in use at the end of the run"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	memoryAllocated, err := meter.Int64Gauge(
		"emfactors_memory_allocated",
		metric.WithDescription("Cumulative heap bytes allocated during the run"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcCount, err := meter.Int64Gauge(
		"emfactors_gc_cycles",
		metric.WithDescription("Completed garbage collection cycles"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Gauge(
		"emfactors_run_duration",
		metric.WithDescription("Wall clock duration of the run"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &SystemMetrics{
		goRoutines:      goRoutines,
		memoryUsage:     memoryUsage,
		memoryAllocated: memoryAllocated,
		gcCount:         gcCount,
		runDuration:     runDuration,
	}, nil
}

// SystemStats holds runtime statistics
type SystemStats struct {
	GoRoutines      int64
	MemoryUsage     int64
	MemoryAllocated int64
	GCCount         uint32
	RunDuration     time.Duration
}

// Collect reads runtime statistics and records them
func (sm *SystemMetrics) Collect(ctx context.Context, startTime time.Time) *SystemStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := &SystemStats{
		GoRoutines:      int64(runtime.NumGoroutine()),
		MemoryUsage:     int64(memStats.HeapAlloc),
		MemoryAllocated: int64(memStats.TotalAlloc),
		GCCount:         memStats.NumGC,
		RunDuration:     time.Since(startTime),
	}

	if sm == nil {
		return stats
	}

	sm.goRoutines.Record(ctx, stats.GoRoutines)
	sm.memoryUsage.Record(ctx, stats.MemoryUsage)
	sm.memoryAllocated.Record(ctx, stats.MemoryAllocated)
	sm.gcCount.Record(ctx, int64(stats.GCCount))
	sm.runDuration.Record(ctx, stats.RunDuration.Seconds())

	return stats
}

// LogAttrs returns the statistics as slog key/value pairs
func (stats *SystemStats) LogAttrs() []any {
	return []any{
		"goroutines", stats.GoRoutines,
		"heap_bytes", stats.MemoryUsage,
		"allocated_bytes", stats.MemoryAllocated,
		"gc_cycles", stats.GCCount,
		"duration", stats.RunDuration.String(),
	}
}
