package engine

import (
	"time"

	"github.com/hupe1980/simsearch/operation"
)

// MetricsObserver defines the interface for observing engine events.
type MetricsObserver interface {
	// OnEvaluate is called when an operation or a partition clone has been
	// evaluated. stats are the counters of that evaluation alone.
	OnEvaluate(kind string, duration time.Duration, stats operation.Stats, err error)

	// OnMerge is called when a partitioned evaluation completes. merged is
	// the number of partial answers folded into the operation and skipped
	// the number of partitions that were never dispatched.
	OnMerge(kind string, merged, skipped int, duration time.Duration, err error)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (NoopMetricsObserver) OnEvaluate(string, time.Duration, operation.Stats, error) {}
func (NoopMetricsObserver) OnMerge(string, int, int, time.Duration, error)          {}
