package operation

import (
	"fmt"
	"iter"
	"math"

	"github.com/hupe1980/simsearch/object"
	"github.com/hupe1980/simsearch/rank"
)

var inf = float32(math.Inf(1))

// Ranking is the shared part of operations whose answer is a distance
// ordered rank.Collection.
type Ranking struct {
	Base
	answer   *rank.Collection
	capacity int
}

func newRanking(kind string, capacity int, o options, args ...any) Ranking {
	return Ranking{
		Base:     newBase(kind, o, args...),
		answer:   rank.NewCollection(capacity),
		capacity: capacity,
	}
}

// AddToAnswer ranks candidate against query and adds it to the answer if its
// distance does not exceed threshold. Candidates whose precomputed distances
// already prove them farther than threshold are skipped without computing
// the real distance.
func (r *Ranking) AddToAnswer(query, candidate object.Object, threshold float32) (rank.RankedObject, bool) {
	item, _, ok := r.add(query, candidate, threshold)
	return item, ok
}

func (r *Ranking) add(query, candidate object.Object, threshold float32) (rank.RankedObject, *rank.RankedObject, bool) {
	r.stats.ObjectsAccessed++
	if threshold < inf {
		if f, ok := candidate.(object.PrecomputedFilter); ok && f.ExcludeUsingPrecomputed(query, threshold) {
			return rank.RankedObject{}, nil, false
		}
	}

	var (
		d    float32
		subs []float32
	)
	if c, ok := query.(object.Composite); ok {
		d, subs = c.SubDistances(candidate)
		r.stats.DistanceComputations += int64(max(len(subs), 1))
	} else {
		d = query.Distance(candidate)
		r.stats.DistanceComputations++
	}
	if d >= inf || !(d <= threshold) {
		return rank.RankedObject{}, nil, false
	}

	item := rank.NewWithSubDistances(r.answerType.Apply(candidate), d, subs)
	ok, evicted := r.answer.Add(item)
	if !ok {
		return rank.RankedObject{}, nil, false
	}
	return item, evicted, true
}

// scan feeds candidates to visit until it is exhausted or stop reports true.
// exhausted is false if evaluation was stopped early.
func (r *Ranking) scan(it object.Iterator, visit func(object.Object) bool, stop func() bool) (added int, exhausted bool, err error) {
	if err := r.checkPending("evaluate"); err != nil {
		return 0, false, err
	}
	bc, _ := it.(object.BlockCounter)
	blocks := 0
	if bc != nil {
		blocks = bc.BlocksRead()
	}

	for {
		if stop != nil && stop() {
			return added, false, nil
		}
		if !it.Next() {
			break
		}
		if bc != nil {
			cur := bc.BlocksRead()
			r.stats.BlockReads += int64(cur - blocks)
			blocks = cur
		}
		if visit(it.Current()) {
			added++
		}
	}
	if err := it.Err(); err != nil {
		return added, false, fmt.Errorf("%s: evaluate: %w", r.kind, err)
	}
	return added, true, nil
}

// EndOperation finishes the query with ResponseReturned.
func (r *Ranking) EndOperation() { _ = r.EndOperationWith(ResponseReturned) }

// EndOperationWith finishes the query. The answer stops accepting objects.
func (r *Ranking) EndOperationWith(code ErrorCode) error {
	if err := r.Base.EndOperationWith(code); err != nil {
		return err
	}
	r.answer.Freeze()
	return nil
}

// WasSuccessful reports whether the query returned its response.
func (r *Ranking) WasSuccessful() bool { return r.code == ResponseReturned }

// Answer iterates the answer in distance order.
func (r *Ranking) Answer() iter.Seq[rank.RankedObject] { return r.answer.All() }

// AnswerRange iterates count items after skipping skip. A negative count
// means all remaining items.
func (r *Ranking) AnswerRange(skip, count int) iter.Seq[rank.RankedObject] {
	return r.answer.Range(skip, count)
}

// AnswerCount returns the number of answer items.
func (r *Ranking) AnswerCount() int { return r.answer.Len() }

// AnswerThreshold returns the distance a new candidate has to beat.
func (r *Ranking) AnswerThreshold() float32 { return r.answer.Threshold() }

// Collection returns the answer collection.
func (r *Ranking) Collection() *rank.Collection { return r.answer }

// ResetAnswer drops the answer.
func (r *Ranking) ResetAnswer() { r.answer = rank.NewCollection(r.capacity) }

func (r *Ranking) cloneRanking(withAnswer bool) Ranking {
	c := Ranking{Base: r.Base.clone(withAnswer), capacity: r.capacity}
	if withAnswer {
		c.answer = r.answer.Clone()
		if r.answer.Frozen() {
			c.answer.Freeze()
		}
	} else {
		c.answer = rank.NewCollection(r.capacity)
	}
	return c
}

// UpdateFrom merges the answer of a ranking operation of the same kind.
func (r *Ranking) UpdateFrom(other Operation) error {
	o, ok := other.(RankingOperation)
	if !ok || other.Kind() != r.kind {
		return incompatible(r.kind, other)
	}
	if err := r.checkMergeable(); err != nil {
		return err
	}
	r.mergeRanking(o)
	return nil
}

// checkMergeable rejects merges into an ended query, whose answer no longer
// accepts objects.
func (r *Ranking) checkMergeable() error {
	if r.answer.Frozen() {
		return invalidState(r.kind, "update", ErrFinished)
	}
	return nil
}

func (r *Ranking) mergeRanking(o RankingOperation) {
	c := o.Collection()
	if c == r.answer {
		return
	}
	r.answer.Merge(c)
	r.Base.merge(o)
}
