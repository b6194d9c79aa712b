package operation

import (
	"fmt"
	"iter"
	"maps"

	"github.com/hupe1980/simsearch/object"
	"github.com/hupe1980/simsearch/rank"
)

// IncrementalKNN enumerates nearest neighbors in rounds of at least minNN
// objects. Ending a round reports HasNext while more ranked objects are
// pending and ResponseReturned once the last round has been delivered.
// Delivered objects are remembered by ID, or by reference when they have
// none, and are skipped by later rounds.
type IncrementalKNN struct {
	Ranking
	query    object.Object
	minNN    int
	returned int
	// delivered holds the IDs of objects returned by earlier rounds.
	delivered map[object.ID]struct{}
	// deliveredRefs holds returned objects without an ID.
	deliveredRefs map[object.Object]struct{}
}

// NewIncrementalKNN creates an incremental nearest-neighbor query. A
// non-positive minNN delivers everything in one round.
func NewIncrementalKNN(query object.Object, minNN int, optFns ...Option) (*IncrementalKNN, error) {
	if err := validateQuery(KindIncrementalKNN, query); err != nil {
		return nil, err
	}
	minNN = max(minNN, 0)
	return &IncrementalKNN{
		Ranking: newRanking(KindIncrementalKNN, 0, applyOptions(optFns), query, minNN),
		query:   query,
		minNN:   minNN,
	}, nil
}

// Query returns the query object.
func (op *IncrementalKNN) Query() object.Object { return op.query }

// MinNN returns the minimal round size.
func (op *IncrementalKNN) MinNN() int { return op.minNN }

// Returned returns the number of objects delivered by finished rounds.
func (op *IncrementalKNN) Returned() int { return op.returned }

// Evaluate ranks every candidate of it into the pending answer.
func (op *IncrementalKNN) Evaluate(it object.Iterator) (int, error) {
	n, _, err := op.scan(it, func(o object.Object) bool {
		if op.wasDelivered(o) {
			return false
		}
		_, ok := op.AddToAnswer(op.query, o, inf)
		return ok
	}, nil)
	return n, err
}

func (op *IncrementalKNN) wasDelivered(o object.Object) bool {
	if id := o.ID(); id != object.NilID {
		_, ok := op.delivered[id]
		return ok
	}
	_, ok := op.deliveredRefs[o]
	return ok
}

func (op *IncrementalKNN) markDelivered(o object.Object) {
	if id := o.ID(); id != object.NilID {
		if op.delivered == nil {
			op.delivered = make(map[object.ID]struct{})
		}
		op.delivered[id] = struct{}{}
		return
	}
	if op.deliveredRefs == nil {
		op.deliveredRefs = make(map[object.Object]struct{})
	}
	op.deliveredRefs[o] = struct{}{}
}

func (op *IncrementalKNN) roundSize() int {
	if op.minNN == 0 {
		return op.answer.Len()
	}
	return min(op.minNN, op.answer.Len())
}

// Answer iterates the objects of the current round.
func (op *IncrementalKNN) Answer() iter.Seq[rank.RankedObject] {
	return op.answer.Range(0, op.roundSize())
}

// AnswerCount returns the size of the current round.
func (op *IncrementalKNN) AnswerCount() int { return op.roundSize() }

// Pending returns the number of ranked objects not yet delivered, including
// the current round.
func (op *IncrementalKNN) Pending() int { return op.answer.Len() }

// EndOperation finishes the round with HasNext or ResponseReturned.
func (op *IncrementalKNN) EndOperation() {
	code := ResponseReturned
	if op.answer.Len() > op.roundSize() {
		code = HasNext
	}
	_ = op.EndOperationWith(code)
}

// HasNext reports whether another round is available.
func (op *IncrementalKNN) HasNext() bool { return op.code == HasNext }

// WasSuccessful reports whether the round finished with HasNext or
// ResponseReturned.
func (op *IncrementalKNN) WasSuccessful() bool {
	return op.code == HasNext || op.code == ResponseReturned
}

// NextRound drops the delivered round and reopens the operation for
// evaluation.
func (op *IncrementalKNN) NextRound() error {
	if op.code != HasNext {
		return invalidState(op.kind, "next round", fmt.Errorf("%w: code is %s", ErrNotFinished, op.code))
	}
	n := op.roundSize()
	for item := range op.answer.Range(0, n) {
		op.markDelivered(item.Object)
	}
	next := rank.NewCollection(0)
	for item := range op.answer.Range(n, -1) {
		next.Insert(item)
	}
	op.answer = next
	op.returned += n
	op.code = NotSet
	return nil
}

// Clone copies the query, optionally with its pending answer.
func (op *IncrementalKNN) Clone(withAnswer bool) Operation {
	c := *op
	c.Ranking = op.cloneRanking(withAnswer)
	c.delivered = maps.Clone(op.delivered)
	c.deliveredRefs = maps.Clone(op.deliveredRefs)
	return &c
}
