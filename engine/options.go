package engine

import (
	"io"
	"log/slog"

	"github.com/hupe1980/simsearch/internal/resource"
)

type options struct {
	logger      *slog.Logger
	metrics     MetricsObserver
	controller  *resource.Controller
	concurrency int
	rate        float64
}

// Option configures an Executor.
type Option func(*options)

// WithLogger sets the logger. Evaluations are logged at debug level,
// failures as warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetricsObserver sets the metrics observer.
func WithMetricsObserver(m MetricsObserver) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithConcurrency bounds the number of partitions evaluated at once.
// Ignored if WithController is used.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithPartitionRate limits how many partition evaluations are dispatched per
// second. Ignored if WithController is used.
func WithPartitionRate(perSecond float64) Option {
	return func(o *options) {
		o.rate = perSecond
	}
}

// WithController shares a resource controller between executors.
func WithController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		concurrency: 1,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.metrics == nil {
		o.metrics = NoopMetricsObserver{}
	}
	if o.controller == nil {
		o.controller = resource.NewController(resource.Config{
			MaxConcurrentPartitions: int64(o.concurrency),
			PartitionsPerSecond:     o.rate,
		})
	}
	return o
}
