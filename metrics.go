package simsearch

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/simsearch/engine"
	"github.com/hupe1980/simsearch/operation"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    evaluations prometheus.CounterVec
//	    distances   prometheus.Counter
//	}
//
//	func (p *PrometheusCollector) RecordEvaluate(kind string, d time.Duration, stats operation.Stats, err error) {
//	    p.evaluations.WithLabelValues(kind).Inc()
//	    p.distances.Add(float64(stats.DistanceComputations))
//	}
type MetricsCollector interface {
	// RecordEvaluate is called after an operation, or one partition clone of
	// it, has been evaluated. stats are the counters of that evaluation.
	RecordEvaluate(kind string, duration time.Duration, stats operation.Stats, err error)

	// RecordMerge is called after partial answers were merged into an
	// operation. skipped counts partitions an approximate query never visited.
	RecordMerge(kind string, merged, skipped int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordEvaluate(string, time.Duration, operation.Stats, error) {}
func (NoopMetricsCollector) RecordMerge(string, int, int, time.Duration, error)          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	EvaluateCount        atomic.Int64
	EvaluateErrors       atomic.Int64
	EvaluateTotalNanos   atomic.Int64
	DistanceComputations atomic.Int64
	ObjectsAccessed      atomic.Int64
	BlockReads           atomic.Int64
	MergeCount           atomic.Int64
	MergeErrors          atomic.Int64
	MergedAnswers        atomic.Int64
	SkippedPartitions    atomic.Int64
}

// RecordEvaluate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEvaluate(_ string, duration time.Duration, stats operation.Stats, err error) {
	b.EvaluateCount.Add(1)
	b.EvaluateTotalNanos.Add(duration.Nanoseconds())
	b.DistanceComputations.Add(stats.DistanceComputations)
	b.ObjectsAccessed.Add(stats.ObjectsAccessed)
	b.BlockReads.Add(stats.BlockReads)
	if err != nil {
		b.EvaluateErrors.Add(1)
	}
}

// RecordMerge implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMerge(_ string, merged, skipped int, _ time.Duration, err error) {
	b.MergeCount.Add(1)
	b.MergedAnswers.Add(int64(merged))
	b.SkippedPartitions.Add(int64(skipped))
	if err != nil {
		b.MergeErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		EvaluateCount:        b.EvaluateCount.Load(),
		EvaluateErrors:       b.EvaluateErrors.Load(),
		EvaluateAvgNanos:     b.getAvgEvaluateNanos(),
		DistanceComputations: b.DistanceComputations.Load(),
		ObjectsAccessed:      b.ObjectsAccessed.Load(),
		BlockReads:           b.BlockReads.Load(),
		MergeCount:           b.MergeCount.Load(),
		MergeErrors:          b.MergeErrors.Load(),
		MergedAnswers:        b.MergedAnswers.Load(),
		SkippedPartitions:    b.SkippedPartitions.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgEvaluateNanos() int64 {
	count := b.EvaluateCount.Load()
	if count == 0 {
		return 0
	}
	return b.EvaluateTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	EvaluateCount        int64
	EvaluateErrors       int64
	EvaluateAvgNanos     int64
	DistanceComputations int64
	ObjectsAccessed      int64
	BlockReads           int64
	MergeCount           int64
	MergeErrors          int64
	MergedAnswers        int64
	SkippedPartitions    int64
}

// metricsObserver feeds engine events into a MetricsCollector.
type metricsObserver struct {
	mc MetricsCollector
}

var _ engine.MetricsObserver = metricsObserver{}

func (m metricsObserver) OnEvaluate(kind string, d time.Duration, stats operation.Stats, err error) {
	m.mc.RecordEvaluate(kind, d, stats, err)
}

func (m metricsObserver) OnMerge(kind string, merged, skipped int, d time.Duration, err error) {
	m.mc.RecordMerge(kind, merged, skipped, d, err)
}
