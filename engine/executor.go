package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/simsearch/index"
	"github.com/hupe1980/simsearch/object"
	"github.com/hupe1980/simsearch/operation"
)

// Partition is an independently evaluated part of the data.
type Partition struct {
	// ID is passed to partitioned and approximate operations.
	ID uint32
	// Size is the number of objects in the partition, 0 if unknown.
	Size int
	// Open returns the candidates of the partition. Iterators implementing
	// io.Closer are closed after evaluation.
	Open func(ctx context.Context) (object.Iterator, error)
}

// IndexPartition returns a partition that scans idx in index order.
func IndexPartition[K any](id uint32, idx index.Index[K, object.Object]) Partition {
	return Partition{
		ID:   id,
		Size: idx.Size(),
		Open: func(context.Context) (object.Iterator, error) {
			s, err := idx.Search()
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	}
}

// Executor evaluates operations.
//
// Executor is safe for concurrent use; a single operation must not be
// evaluated by two calls at the same time.
type Executor struct {
	opts options
}

// New creates an Executor.
func New(optFns ...Option) *Executor {
	return &Executor{opts: applyOptions(optFns)}
}

// Evaluate runs op over it once and ends the operation. If evaluation fails
// and op is still pending it is ended with StorageFailure.
func (e *Executor) Evaluate(ctx context.Context, op operation.QueryOperation, it object.Iterator) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	before := *op.Stats()
	n, err := op.Evaluate(it)
	e.observe(ctx, op, delta(*op.Stats(), before), time.Since(start), n, err)
	if err != nil {
		fail(op, err)
		return err
	}

	op.EndOperation()
	return nil
}

// EvaluatePartitions evaluates a clone of op on every partition and merges
// the partial answers into op, which is ended afterwards.
func (e *Executor) EvaluatePartitions(ctx context.Context, op operation.QueryOperation, parts []Partition) error {
	if len(parts) == 0 {
		return ErrNoPartitions
	}
	if op.IsFinished() {
		return fmt.Errorf("%s: %w", op.Kind(), operation.ErrFinished)
	}

	start := time.Now()
	approx, _ := op.(operation.ApproximateOperation)
	if approx != nil && approx.Approximation().DataSize() == 0 {
		if total := totalSize(parts); total > 0 {
			approx.Approximation().SetDataSize(total)
		}
	}

	var (
		mu      sync.Mutex
		stopped atomic.Bool
		merged  int
		skipped int
	)
	merge := func(part operation.Operation) error {
		mu.Lock()
		defer mu.Unlock()
		if err := op.UpdateFrom(part); err != nil {
			return err
		}
		merged++
		if approx != nil && approx.Approximation().Reached(op.Stats()) {
			stopped.Store(true)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	var dispatchErr error
	for _, p := range parts {
		if stopped.Load() {
			skipped++
			continue
		}
		if err := e.opts.controller.AcquirePartition(gctx); err != nil {
			dispatchErr = err
			break
		}
		if stopped.Load() {
			e.opts.controller.ReleasePartition()
			skipped++
			continue
		}
		mu.Lock()
		part, ok := op.Clone(false).(operation.QueryOperation)
		mu.Unlock()
		if !ok {
			e.opts.controller.ReleasePartition()
			dispatchErr = ErrNotQuery
			break
		}
		g.Go(func() error {
			defer e.opts.controller.ReleasePartition()
			if err := e.evaluatePartition(gctx, part, p); err != nil {
				return &PartitionError{Partition: p.ID, Err: err}
			}
			return merge(part)
		})
	}

	err := g.Wait()
	if err == nil {
		err = dispatchErr
	}

	e.opts.metrics.OnMerge(op.Kind(), merged, skipped, time.Since(start), err)
	if err != nil {
		e.opts.logger.WarnContext(ctx, "partition evaluation failed",
			"kind", op.Kind(),
			"operation", op.ID(),
			"merged", merged,
			"error", err,
		)
		fail(op, err)
		return err
	}

	if approx != nil && skipped > 0 {
		approx.Approximation().ObserveRadius(operation.RadiusNotGuaranteed)
	}
	e.opts.logger.DebugContext(ctx, "partitions merged",
		"kind", op.Kind(),
		"operation", op.ID(),
		"merged", merged,
		"skipped", skipped,
		"answer", op.AnswerCount(),
	)

	op.EndOperation()
	return nil
}

// evaluatePartition evaluates part, a clone of the caller's operation, over
// the candidates of p.
func (e *Executor) evaluatePartition(ctx context.Context, part operation.QueryOperation, p Partition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if pp, ok := part.(operation.PartitionedOperation); ok {
		pp.SetPartition(p.ID)
	}

	it, err := p.Open(ctx)
	if err != nil {
		return err
	}
	if c, ok := it.(io.Closer); ok {
		defer c.Close()
	}

	start := time.Now()
	n, err := part.Evaluate(it)
	e.observe(ctx, part, *part.Stats(), time.Since(start), n, err, slog.Uint64("partition", uint64(p.ID)))
	if err != nil {
		return err
	}

	if ap, ok := part.(operation.ApproximateOperation); ok {
		ap.Approximation().MarkVisited(p.ID)
	}
	return nil
}

func (e *Executor) observe(ctx context.Context, op operation.Operation, stats operation.Stats, d time.Duration, added int, err error, attrs ...any) {
	e.opts.metrics.OnEvaluate(op.Kind(), d, stats, err)

	args := append([]any{
		"kind", op.Kind(),
		"operation", op.ID(),
		"added", added,
		"accessed", stats.ObjectsAccessed,
		"distances", stats.DistanceComputations,
	}, attrs...)
	if err != nil {
		e.opts.logger.WarnContext(ctx, "evaluation failed", append(args, "error", err)...)
		return
	}
	e.opts.logger.DebugContext(ctx, "evaluation completed", append(args, "duration", d)...)
}

// fail ends a pending op with the code matching err.
func fail(op operation.Operation, err error) {
	if op.IsFinished() {
		return
	}
	code := operation.StorageFailure
	switch {
	case isInvalidState(err):
		code = operation.InvalidState
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = operation.UnknownError
	}
	_ = op.EndOperationWith(code)
}

func totalSize(parts []Partition) int {
	total := 0
	for _, p := range parts {
		if p.Size <= 0 {
			return 0
		}
		total += p.Size
	}
	return total
}

func delta(after, before operation.Stats) operation.Stats {
	return operation.Stats{
		DistanceComputations: after.DistanceComputations - before.DistanceComputations,
		ObjectsAccessed:      after.ObjectsAccessed - before.ObjectsAccessed,
		BlockReads:           after.BlockReads - before.BlockReads,
	}
}

func isInvalidState(err error) bool {
	var ise *operation.InvalidStateError
	return errors.As(err, &ise)
}
