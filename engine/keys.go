package engine

import (
	"context"
	"errors"

	"github.com/hupe1980/simsearch/index"
	"github.com/hupe1980/simsearch/object"
	"github.com/hupe1980/simsearch/operation"
)

// NearestKeys returns up to n objects of idx whose keys are nearest to start,
// expanding outward in both directions from the position of start. With a
// nil prox the two directions alternate.
func NearestKeys[K any](ctx context.Context, idx index.OrderedIndex[K, object.Object], start K, prox index.Proximity[K, object.Object], n int) (_ []object.Object, err error) {
	if n <= 0 {
		return nil, nil
	}
	s, err := idx.SearchKey(start, false)
	if err != nil {
		return nil, err
	}
	d := index.NewDualSearch[K, object.Object](s, start, prox)
	defer func() {
		err = errors.Join(err, d.Close())
	}()

	out := make([]object.Object, 0, n)
	for len(out) < n && d.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, d.Current())
	}
	if err := d.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// EvaluateNearKey evaluates op over the objects of idx in order of key
// proximity to start and ends it. Combined with an approximate operation the
// objects whose keys are nearest are ranked before the evaluation stops.
func EvaluateNearKey[K any](ctx context.Context, e *Executor, op operation.QueryOperation, idx index.OrderedIndex[K, object.Object], start K, prox index.Proximity[K, object.Object]) (err error) {
	s, err := idx.SearchKey(start, false)
	if err != nil {
		return err
	}
	d := index.NewDualSearch[K, object.Object](s, start, prox)
	defer func() {
		err = errors.Join(err, d.Close())
	}()
	return e.Evaluate(ctx, op, d)
}
