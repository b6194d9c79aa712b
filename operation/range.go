package operation

import (
	"fmt"

	"github.com/hupe1980/simsearch/object"
)

// Range retrieves every object within a radius of a query object. If
// maxAnswerSize is positive, only that many closest objects are kept.
type Range struct {
	Ranking
	query         object.Object
	radius        float32
	maxAnswerSize int
}

// NewRange creates a range query. maxAnswerSize <= 0 means unlimited.
func NewRange(query object.Object, radius float32, maxAnswerSize int, optFns ...Option) (*Range, error) {
	if err := validateRange(KindRange, query, radius); err != nil {
		return nil, err
	}
	return newRange(KindRange, query, radius, maxAnswerSize, applyOptions(optFns)), nil
}

func newRange(kind string, query object.Object, radius float32, maxAnswerSize int, o options, extra ...any) *Range {
	maxAnswerSize = max(maxAnswerSize, 0)
	args := append([]any{query, radius, maxAnswerSize}, extra...)
	return &Range{
		Ranking:       newRanking(kind, maxAnswerSize, o, args...),
		query:         query,
		radius:        radius,
		maxAnswerSize: maxAnswerSize,
	}
}

func validateRange(kind string, query object.Object, radius float32) error {
	if err := validateQuery(kind, query); err != nil {
		return err
	}
	if radius < 0 || radius != radius {
		return fmt.Errorf("%w: %s: radius must be non-negative, got %v", ErrInvalidArgument, kind, radius)
	}
	return nil
}

// Query returns the query object.
func (op *Range) Query() object.Object { return op.query }

// Radius returns the query radius.
func (op *Range) Radius() float32 { return op.radius }

// MaxAnswerSize returns the answer limit or 0.
func (op *Range) MaxAnswerSize() int { return op.maxAnswerSize }

// Evaluate adds every candidate within the radius.
func (op *Range) Evaluate(it object.Iterator) (int, error) {
	n, _, err := op.scan(it, op.visit, nil)
	return n, err
}

func (op *Range) visit(o object.Object) bool {
	_, ok := op.AddToAnswer(op.query, o, op.threshold())
	return ok
}

func (op *Range) threshold() float32 {
	return min(op.radius, op.answer.Threshold())
}

// Clone copies the query, optionally with its answer.
func (op *Range) Clone(withAnswer bool) Operation { return op.cloneRange(withAnswer) }

func (op *Range) cloneRange(withAnswer bool) *Range {
	c := *op
	c.Ranking = op.cloneRanking(withAnswer)
	return &c
}
