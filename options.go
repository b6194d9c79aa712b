package simsearch

import (
	"github.com/hupe1980/simsearch/blobstore"
	"github.com/hupe1980/simsearch/codec"
	"github.com/hupe1980/simsearch/transport"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	concurrency      int
	partitionRate    float64
	memoryLimit      int64
	ioLimit          int64
	store            blobstore.Store
	blobCacheBytes   int64
	commits          transport.CommitLog
	codec            codec.Codec
	compression      codec.Compression
}

// Option configures a Searcher.
type Option func(*options)

// WithLogger sets the logger. Evaluations are logged at debug level.
//
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithConcurrency bounds the number of partitions evaluated at the same time.
// Values below 1 mean sequential evaluation.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = max(n, 1)
	}
}

// WithPartitionRate limits how many partition evaluations are started per
// second. 0 means unlimited.
func WithPartitionRate(perSecond float64) Option {
	return func(o *options) {
		o.partitionRate = perSecond
	}
}

// WithMemoryLimit bounds the bytes of spooled partial answers held in memory
// while gathering. 0 means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithIOLimit bounds the read throughput of gathering in bytes per second.
// 0 means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithBlobStore enables Publish and Gather through store.
func WithBlobStore(store blobstore.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithBlobCache keeps up to bytes of spooled frames in an LRU cache in front
// of the blob store, so repeated gathers of the same operation skip the
// store. 0 disables the cache.
func WithBlobCache(bytes int64) Option {
	return func(o *options) {
		o.blobCacheBytes = bytes
	}
}

// WithCommitLog records published peers in log. Publish then fails for a
// peer that already published the operation, and Gather merges only
// committed peers.
func WithCommitLog(log transport.CommitLog) Option {
	return func(o *options) {
		o.commits = log
	}
}

// WithCodec configures the codec of published partial answers.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression configures the compression of published partial answers.
func WithCompression(c codec.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		concurrency:      1,
		codec:            codec.Default,
		compression:      codec.CompressionZSTD,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
