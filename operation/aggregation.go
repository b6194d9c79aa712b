package operation

import (
	"fmt"
	"slices"

	"github.com/hupe1980/simsearch/object"
)

// queryGroup ranks candidates by an aggregation of their distances to several
// query objects.
type queryGroup struct {
	queries []object.Object
	agg     object.Aggregation
}

var _ object.Composite = queryGroup{}

func (g queryGroup) ID() object.ID               { return object.NilID }
func (g queryGroup) Locator() string             { return "" }
func (g queryGroup) SubObjects() []object.Object { return g.queries }

func (g queryGroup) Distance(o object.Object) float32 {
	d, _ := g.SubDistances(o)
	return d
}

func (g queryGroup) SubDistances(o object.Object) (float32, []float32) {
	ds := make([]float32, len(g.queries))
	for i, q := range g.queries {
		ds[i] = q.Distance(o)
	}
	return g.agg.Aggregate(ds), ds
}

// AggregationKNN retrieves the k objects with the smallest aggregated
// distance to a set of query objects. Every answer item keeps the individual
// distances it was aggregated from.
type AggregationKNN struct {
	Ranking
	group queryGroup
	k     int
}

// NewAggregationKNN creates a multi-object k-nearest-neighbors query.
func NewAggregationKNN(queries []object.Object, agg object.Aggregation, k int, optFns ...Option) (*AggregationKNN, error) {
	if len(queries) == 0 {
		return nil, fmt.Errorf("%w: %s: no query objects", ErrInvalidArgument, KindAggregationKNN)
	}
	for i, q := range queries {
		if q == nil {
			return nil, fmt.Errorf("%w: %s: query object %d is nil", ErrInvalidArgument, KindAggregationKNN, i)
		}
	}
	if agg == nil {
		agg = object.Sum
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: %s: k must be positive, got %d", ErrInvalidArgument, KindAggregationKNN, k)
	}
	queries = slices.Clone(queries)
	return &AggregationKNN{
		Ranking: newRanking(KindAggregationKNN, k, applyOptions(optFns), queries, agg, k),
		group:   queryGroup{queries: queries, agg: agg},
		k:       k,
	}, nil
}

// Queries returns the query objects.
func (op *AggregationKNN) Queries() []object.Object { return op.group.queries }

// Aggregation returns the aggregation function.
func (op *AggregationKNN) Aggregation() object.Aggregation { return op.group.agg }

// K returns the number of requested objects.
func (op *AggregationKNN) K() int { return op.k }

// Evaluate ranks every candidate of it by its aggregated distance.
func (op *AggregationKNN) Evaluate(it object.Iterator) (int, error) {
	n, _, err := op.scan(it, func(o object.Object) bool {
		_, ok := op.AddToAnswer(op.group, o, op.answer.Threshold())
		return ok
	}, nil)
	return n, err
}

// Clone copies the query, optionally with its answer.
func (op *AggregationKNN) Clone(withAnswer bool) Operation {
	c := *op
	c.Ranking = op.cloneRanking(withAnswer)
	return &c
}
