package operation

import (
	"fmt"

	"github.com/hupe1980/simsearch/object"
)

// KNN retrieves the k objects closest to a query object.
type KNN struct {
	Ranking
	query object.Object
	k     int
}

// NewKNN creates a k-nearest-neighbors query.
func NewKNN(query object.Object, k int, optFns ...Option) (*KNN, error) {
	if err := validateKNN(KindKNN, query, k); err != nil {
		return nil, err
	}
	return newKNN(KindKNN, query, k, applyOptions(optFns)), nil
}

func newKNN(kind string, query object.Object, k int, o options, extra ...any) *KNN {
	args := append([]any{query, k}, extra...)
	return &KNN{
		Ranking: newRanking(kind, k, o, args...),
		query:   query,
		k:       k,
	}
}

// Query returns the query object.
func (op *KNN) Query() object.Object { return op.query }

// K returns the number of requested neighbors.
func (op *KNN) K() int { return op.k }

// Evaluate ranks every candidate of it.
func (op *KNN) Evaluate(it object.Iterator) (int, error) {
	n, _, err := op.scan(it, op.visit, nil)
	return n, err
}

func (op *KNN) visit(o object.Object) bool {
	_, ok := op.AddToAnswer(op.query, o, op.answer.Threshold())
	return ok
}

// Clone copies the query, optionally with its answer.
func (op *KNN) Clone(withAnswer bool) Operation { return op.cloneKNN(withAnswer) }

func (op *KNN) cloneKNN(withAnswer bool) *KNN {
	c := *op
	c.Ranking = op.cloneRanking(withAnswer)
	return &c
}

func validateKNN(kind string, query object.Object, k int) error {
	if err := validateQuery(kind, query); err != nil {
		return err
	}
	if k <= 0 {
		return fmt.Errorf("%w: %s: k must be positive, got %d", ErrInvalidArgument, kind, k)
	}
	return nil
}

func validateQuery(kind string, query object.Object) error {
	if query == nil {
		return fmt.Errorf("%w: %s: query object is nil", ErrInvalidArgument, kind)
	}
	return nil
}
