package engine

import (
	"context"
	"iter"
	"time"

	"github.com/hupe1980/simsearch/object"
	"github.com/hupe1980/simsearch/operation"
	"github.com/hupe1980/simsearch/rank"
)

// Incremental evaluates op over it and yields its answer round by round
// until no ranked objects are pending. Iteration stops at the first error,
// which is yielded with a zero item.
//
// Breaking out of the loop leaves op finished with HasNext; the remaining
// rounds can still be read through NextRound.
func (e *Executor) Incremental(ctx context.Context, op *operation.IncrementalKNN, it object.Iterator) iter.Seq2[rank.RankedObject, error] {
	return func(yield func(rank.RankedObject, error) bool) {
		start := time.Now()
		before := *op.Stats()
		n, err := op.Evaluate(it)
		e.observe(ctx, op, delta(*op.Stats(), before), time.Since(start), n, err)
		if err != nil {
			fail(op, err)
			yield(rank.RankedObject{}, err)
			return
		}

		for {
			if err := ctx.Err(); err != nil {
				fail(op, err)
				yield(rank.RankedObject{}, err)
				return
			}

			op.EndOperation()
			for item := range op.Answer() {
				if !yield(item, nil) {
					return
				}
			}
			if !op.HasNext() {
				return
			}
			if err := op.NextRound(); err != nil {
				yield(rank.RankedObject{}, err)
				return
			}
		}
	}
}
