package simsearch

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/hupe1980/simsearch/blobstore"
	"github.com/hupe1980/simsearch/engine"
	"github.com/hupe1980/simsearch/index"
	"github.com/hupe1980/simsearch/internal/cache"
	"github.com/hupe1980/simsearch/internal/resource"
	"github.com/hupe1980/simsearch/object"
	"github.com/hupe1980/simsearch/operation"
	"github.com/hupe1980/simsearch/rank"
	"github.com/hupe1980/simsearch/transport"
)

// Searcher evaluates operations over a set of partitions and exchanges
// partial answers with other peers through a blob store.
//
// Searcher is safe for concurrent use. A single operation must not be passed
// to two calls at the same time.
type Searcher struct {
	opts  options
	rc    *resource.Controller
	exec  *engine.Executor
	spool *transport.Spool

	mu    sync.RWMutex
	parts []engine.Partition
}

// New creates a Searcher without partitions.
func New(optFns ...Option) *Searcher {
	opts := applyOptions(optFns)

	rc := resource.NewController(resource.Config{
		MaxConcurrentPartitions: int64(opts.concurrency),
		PartitionsPerSecond:     opts.partitionRate,
		MemoryLimitBytes:        opts.memoryLimit,
		IOLimitBytesPerSec:      opts.ioLimit,
	})

	s := &Searcher{
		opts: opts,
		rc:   rc,
		exec: engine.New(
			engine.WithLogger(opts.logger.Logger),
			engine.WithMetricsObserver(metricsObserver{mc: opts.metricsCollector}),
			engine.WithController(rc),
		),
	}
	if opts.store != nil {
		store := opts.store
		if opts.blobCacheBytes > 0 {
			store = blobstore.NewCachingStore(store, cache.NewLRU(opts.blobCacheBytes, nil))
		}
		spoolOpts := []transport.SpoolOption{
			transport.WithEncoder(transport.NewEncoder(
				transport.WithCodec(opts.codec),
				transport.WithCompression(opts.compression),
			)),
			transport.WithController(rc),
			transport.WithLogger(opts.logger.Logger),
		}
		if opts.commits != nil {
			spoolOpts = append(spoolOpts, transport.WithCommitLog(opts.commits))
		}
		s.spool = transport.NewSpool(store, spoolOpts...)
	}
	return s
}

// AddPartition registers p. Partition IDs must be unique.
func (s *Searcher) AddPartition(p engine.Partition) error {
	if p.Open == nil {
		return fmt.Errorf("%w: partition %d has no Open func", operation.ErrInvalidArgument, p.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.parts, func(q engine.Partition) bool { return q.ID == p.ID }) {
		return fmt.Errorf("%w: %d", ErrDuplicatePartition, p.ID)
	}
	s.parts = append(s.parts, p)
	return nil
}

// AddIndex registers idx as partition id, scanned in index order.
func AddIndex[K any](s *Searcher, id uint32, idx index.Index[K, object.Object]) error {
	return s.AddPartition(engine.IndexPartition(id, idx))
}

// RemovePartition unregisters the partition with the given ID.
func (s *Searcher) RemovePartition(id uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.parts)
	s.parts = slices.DeleteFunc(s.parts, func(p engine.Partition) bool { return p.ID == id })
	return len(s.parts) != n
}

// Partitions returns the registered partition IDs in registration order.
func (s *Searcher) Partitions() []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]uint32, len(s.parts))
	for i, p := range s.parts {
		ids[i] = p.ID
	}
	return ids
}

func (s *Searcher) partitions() []engine.Partition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.parts)
}

// Search evaluates op over all partitions and ends it.
func (s *Searcher) Search(ctx context.Context, op operation.QueryOperation) error {
	err := s.exec.EvaluatePartitions(ctx, op, s.partitions())
	s.opts.logger.LogEvaluate(ctx, op, err)
	return translateError("evaluate", err)
}

// Incremental evaluates op over the partitions chained in registration order
// and yields its answer round by round. See engine.Executor.Incremental.
func (s *Searcher) Incremental(ctx context.Context, op *operation.IncrementalKNN) iter.Seq2[rank.RankedObject, error] {
	return func(yield func(rank.RankedObject, error) bool) {
		parts := s.partitions()
		if len(parts) == 0 {
			yield(rank.RankedObject{}, fmt.Errorf("%w: %w", ErrNoPartitions, engine.ErrNoPartitions))
			return
		}

		it := newChainIterator(ctx, parts)
		defer func() {
			if err := it.Close(); err != nil {
				s.opts.logger.WarnContext(ctx, "closing partition failed", "error", err)
			}
		}()

		for item, err := range s.exec.Incremental(ctx, op, it) {
			if !yield(item, translateError("evaluate", err)) {
				return
			}
		}
	}
}

// Publish evaluates a clone of op over the local partitions and spools the
// partial answer under peer.
func (s *Searcher) Publish(ctx context.Context, peer string, op operation.QueryOperation) error {
	if s.spool == nil {
		return ErrNoBlobStore
	}

	partial, ok := op.Clone(false).(operation.QueryOperation)
	if !ok {
		return fmt.Errorf("%w: %s clone is not a query", operation.ErrIncompatible, op.Kind())
	}
	if err := s.exec.EvaluatePartitions(ctx, partial, s.partitions()); err != nil {
		s.opts.logger.WithPeer(peer).LogEvaluate(ctx, partial, err)
		return translateError("evaluate", err)
	}
	s.opts.logger.WithPeer(peer).LogEvaluate(ctx, partial, nil)

	if err := s.spool.Put(ctx, peer, partial); err != nil {
		return &StorageError{Op: "publish", cause: err}
	}
	return nil
}

// Gather merges every partial answer published for op and ends op. op must
// not be finished: ending an operation freezes its answer.
func (s *Searcher) Gather(ctx context.Context, op operation.Operation) (int, error) {
	if s.spool == nil {
		return 0, ErrNoBlobStore
	}
	if op.IsFinished() {
		return 0, fmt.Errorf("gather %s: %w", op.Kind(), operation.ErrFinished)
	}

	start := time.Now()
	n, err := s.spool.Collect(ctx, op)
	s.opts.metricsCollector.RecordMerge(op.Kind(), n, 0, time.Since(start), err)
	s.opts.logger.LogMerge(ctx, op, n, err)
	if err != nil {
		_ = op.EndOperationWith(gatherCode(err))
		return n, translateGatherError(err)
	}

	op.EndOperation()
	return n, nil
}

// Discard deletes every partial answer published for op.
func (s *Searcher) Discard(ctx context.Context, op operation.Operation) error {
	if s.spool == nil {
		return ErrNoBlobStore
	}
	if err := s.spool.Clear(ctx, op); err != nil {
		return &StorageError{Op: "discard", cause: err}
	}
	return nil
}

func gatherCode(err error) operation.ErrorCode {
	var ise *operation.InvalidStateError
	switch {
	case errors.As(err, &ise):
		return operation.InvalidState
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return operation.UnknownError
	default:
		return operation.StorageFailure
	}
}

func translateGatherError(err error) error {
	var ise *operation.InvalidStateError
	if errors.As(err, &ise) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &StorageError{Op: "gather", cause: err}
}
