package knngraph

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting build metrics.
// Implement this interface to integrate with monitoring systems; see
// the metrics/prometheus package for a Prometheus adapter.
//
// Implementations must be safe for concurrent use: partitioning builders
// report cells from several goroutines.
type MetricsCollector interface {
	// RecordBuild is called once per ComputeGraph or ComputeNodeGraph call.
	// builder names the strategy, nodes is the input size, evaluations the
	// number of similarity evaluations and err is nil on success.
	RecordBuild(builder string, nodes int, evaluations int64, duration time.Duration, err error)

	// RecordCell is called after a partition cell has been solved and folded.
	RecordCell(stage, size int, evaluations int64, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(string, int, int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordCell(int, int, int64, time.Duration)            {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and tuning without external dependencies.
type BasicMetricsCollector struct {
	BuildCount       atomic.Int64
	BuildErrors      atomic.Int64
	BuildNodes       atomic.Int64
	BuildEvaluations atomic.Int64
	BuildTotalNanos  atomic.Int64
	CellCount        atomic.Int64
	CellNodes        atomic.Int64
	CellEvaluations  atomic.Int64
	CellTotalNanos   atomic.Int64
	MaxCellSize      atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(_ string, nodes int, evaluations int64, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildNodes.Add(int64(nodes))
	b.BuildEvaluations.Add(evaluations)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// RecordCell implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCell(_ int, size int, evaluations int64, duration time.Duration) {
	b.CellCount.Add(1)
	b.CellNodes.Add(int64(size))
	b.CellEvaluations.Add(evaluations)
	b.CellTotalNanos.Add(duration.Nanoseconds())
	for {
		cur := b.MaxCellSize.Load()
		if int64(size) <= cur || b.MaxCellSize.CompareAndSwap(cur, int64(size)) {
			return
		}
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:       b.BuildCount.Load(),
		BuildErrors:      b.BuildErrors.Load(),
		BuildNodes:       b.BuildNodes.Load(),
		BuildEvaluations: b.BuildEvaluations.Load(),
		BuildAvgNanos:    avg(b.BuildTotalNanos.Load(), b.BuildCount.Load()),
		CellCount:        b.CellCount.Load(),
		CellNodes:        b.CellNodes.Load(),
		CellEvaluations:  b.CellEvaluations.Load(),
		CellAvgNanos:     avg(b.CellTotalNanos.Load(), b.CellCount.Load()),
		MaxCellSize:      b.MaxCellSize.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount       int64
	BuildErrors      int64
	BuildNodes       int64
	BuildEvaluations int64
	BuildAvgNanos    int64
	CellCount        int64
	CellNodes        int64
	CellEvaluations  int64
	CellAvgNanos     int64
	MaxCellSize      int64
}
