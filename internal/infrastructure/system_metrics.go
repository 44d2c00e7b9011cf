package infrastructure

import (
	"context"
	"log/slog"
	"runtime"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SystemMetrics records Go runtime resource usage at points of a run.
// The whole record set is held in memory, so heap size after fetching is the
// number worth watching.
type SystemMetrics struct {
	goRoutines metric.Int64Gauge
	heapAlloc  metric.Int64Gauge
	heapSystem metric.Int64Gauge
	gcCount    metric.Int64Gauge
}

// SystemSnapshot is one reading of the runtime counters
type SystemSnapshot struct {
	Phase          string
	Goroutines     int
	HeapAllocBytes uint64
	HeapSysBytes   uint64
	NumGC          uint32
}

// LogValue implements slog.LogValuer
func (s SystemSnapshot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("phase", s.Phase),
		slog.Int("goroutines", s.Goroutines),
		slog.Uint64("heap_alloc_bytes", s.HeapAllocBytes),
		slog.Uint64("heap_sys_bytes", s.HeapSysBytes),
		slog.Uint64("gc_count", uint64(s.NumGC)),
	)
}

// NewSystemMetrics creates the runtime gauges
func NewSystemMetrics(meter metric.Meter) (*SystemMetrics, error) {
	goRoutines, err := meter.Int64Gauge(
		"system_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return nil, err
	}

	heapAlloc, err := meter.Int64Gauge(
		"system_memory_allocated_bytes",
		metric.WithDescription("Heap bytes allocated by the Go runtime"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	heapSystem, err := meter.Int64Gauge(
		"system_memory_system_bytes",
		metric.WithDescription("Heap bytes obtained from the OS"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcCount, err := meter.Int64Gauge(
		"system_gc_cycles",
		metric.WithDescription("Completed garbage collection cycles"),
	)
	if err != nil {
		return nil, err
	}

	return &SystemMetrics{
		goRoutines: goRoutines,
		heapAlloc:  heapAlloc,
		heapSystem: heapSystem,
		gcCount:    gcCount,
	}, nil
}

// Snapshot reads the runtime counters and records them tagged with phase.
// A nil receiver still returns the reading.
func (m *SystemMetrics) Snapshot(ctx context.Context, phase string) SystemSnapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	snap := SystemSnapshot{
		Phase:          phase,
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: mem.HeapAlloc,
		HeapSysBytes:   mem.HeapSys,
		NumGC:          mem.NumGC,
	}

	if m == nil {
		return snap
	}

	attrs := metric.WithAttributes(attribute.String("phase", phase))
	m.goRoutines.Record(ctx, int64(snap.Goroutines), attrs)
	m.heapAlloc.Record(ctx, int64(snap.HeapAllocBytes), attrs)
	m.heapSystem.Record(ctx, int64(snap.HeapSysBytes), attrs)
	m.gcCount.Record(ctx, int64(snap.NumGC), attrs)

	return snap
}
