package operation

import (
	"maps"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/simsearch/object"
	"github.com/hupe1980/simsearch/rank"
)

// partitions tracks which partition contributed each answer item. Every
// sub-answer is a subset of the global answer: items evicted from the
// global answer are removed from their partition as well.
type partitions struct {
	current uint32
	set     bool
	subs    map[uint32]*rank.Collection
}

func (p *partitions) setCurrent(id uint32) {
	p.current = id
	p.set = true
}

func (p *partitions) track(part uint32, tracked bool, item rank.RankedObject, evicted *rank.RankedObject) {
	if evicted != nil {
		for _, id := range p.ids() {
			if p.subs[id].Remove(*evicted) {
				break
			}
		}
	}
	if !tracked {
		return
	}
	if p.subs == nil {
		p.subs = make(map[uint32]*rank.Collection)
	}
	sub, ok := p.subs[part]
	if !ok {
		sub = rank.NewCollection(0)
		p.subs[part] = sub
	}
	sub.Insert(item)
}

func (p *partitions) answer(id uint32) []rank.RankedObject {
	if sub, ok := p.subs[id]; ok {
		return sub.Items()
	}
	return nil
}

func (p *partitions) ids() []uint32 {
	return slices.Sorted(maps.Keys(p.subs))
}

// holds reports whether item belongs to one of the given sub-answers.
func (p *partitions) holds(ids []uint32, item rank.RankedObject) bool {
	for _, id := range ids {
		if p.subs[id].Has(item) {
			return true
		}
	}
	return false
}

func (p *partitions) bitmap() *roaring.Bitmap {
	bm := roaring.New()
	for id, sub := range p.subs {
		if sub.Len() > 0 {
			bm.Add(id)
		}
	}
	return bm
}

func (p *partitions) clone(withAnswer bool) partitions {
	c := partitions{current: p.current, set: p.set}
	if withAnswer && len(p.subs) > 0 {
		c.subs = make(map[uint32]*rank.Collection, len(p.subs))
		for id, sub := range p.subs {
			c.subs[id] = sub.Clone()
		}
	}
	return c
}

func (p *partitions) reset() { p.subs = nil }

// mergePartitioned folds the global answer of o into r partition by
// partition. Items of o that belong to no partition are merged last.
func mergePartitioned(r *Ranking, p *partitions, o *Ranking, op *partitions) {
	ids := op.ids()
	for _, id := range ids {
		for _, item := range op.subs[id].Items() {
			if ok, evicted := r.answer.Add(item); ok {
				p.track(id, true, item, evicted)
			}
		}
	}
	for _, item := range o.answer.Items() {
		if op.holds(ids, item) {
			continue
		}
		if ok, evicted := r.answer.Add(item); ok {
			p.track(0, false, item, evicted)
		}
	}
	r.Base.merge(o)
}

// PartitionedKNN is a k-nearest-neighbors query that also keeps the answer
// contributed by each partition.
type PartitionedKNN struct {
	KNN
	parts partitions
}

// NewPartitionedKNN creates a partitioned k-nearest-neighbors query.
func NewPartitionedKNN(query object.Object, k int, optFns ...Option) (*PartitionedKNN, error) {
	if err := validateKNN(KindPartitionedKNN, query, k); err != nil {
		return nil, err
	}
	return &PartitionedKNN{KNN: *newKNN(KindPartitionedKNN, query, k, applyOptions(optFns))}, nil
}

// SetPartition sets the partition subsequent candidates belong to.
func (op *PartitionedKNN) SetPartition(id uint32) { op.parts.setCurrent(id) }

// PartitionAnswer returns the part of the answer contributed by partition id.
func (op *PartitionedKNN) PartitionAnswer(id uint32) []rank.RankedObject { return op.parts.answer(id) }

// Partitions returns the IDs of partitions with a non-empty sub-answer.
func (op *PartitionedKNN) Partitions() *roaring.Bitmap { return op.parts.bitmap() }

// Evaluate ranks candidates into the global answer and the current
// partition.
func (op *PartitionedKNN) Evaluate(it object.Iterator) (int, error) {
	n, _, err := op.scan(it, func(o object.Object) bool {
		item, evicted, ok := op.add(op.query, o, op.answer.Threshold())
		if ok {
			op.parts.track(op.parts.current, op.parts.set, item, evicted)
		}
		return ok
	}, nil)
	return n, err
}

// ResetAnswer drops the global and every partition answer.
func (op *PartitionedKNN) ResetAnswer() {
	op.KNN.ResetAnswer()
	op.parts.reset()
}

// Clone copies the query, optionally with its answers.
func (op *PartitionedKNN) Clone(withAnswer bool) Operation {
	return &PartitionedKNN{KNN: *op.cloneKNN(withAnswer), parts: op.parts.clone(withAnswer)}
}

// UpdateFrom merges the answers of other per partition.
func (op *PartitionedKNN) UpdateFrom(other Operation) error {
	o, ok := other.(*PartitionedKNN)
	if !ok {
		return incompatible(op.kind, other)
	}
	if err := op.checkMergeable(); err != nil {
		return err
	}
	if o != op {
		mergePartitioned(&op.Ranking, &op.parts, &o.Ranking, &o.parts)
	}
	return nil
}

// PartitionedRange is a range query that also keeps the answer contributed
// by each partition.
type PartitionedRange struct {
	Range
	parts partitions
}

// NewPartitionedRange creates a partitioned range query.
func NewPartitionedRange(query object.Object, radius float32, maxAnswerSize int, optFns ...Option) (*PartitionedRange, error) {
	if err := validateRange(KindPartitionedRange, query, radius); err != nil {
		return nil, err
	}
	return &PartitionedRange{Range: *newRange(KindPartitionedRange, query, radius, maxAnswerSize, applyOptions(optFns))}, nil
}

// SetPartition sets the partition subsequent candidates belong to.
func (op *PartitionedRange) SetPartition(id uint32) { op.parts.setCurrent(id) }

// PartitionAnswer returns the part of the answer contributed by partition id.
func (op *PartitionedRange) PartitionAnswer(id uint32) []rank.RankedObject {
	return op.parts.answer(id)
}

// Partitions returns the IDs of partitions with a non-empty sub-answer.
func (op *PartitionedRange) Partitions() *roaring.Bitmap { return op.parts.bitmap() }

// Evaluate adds candidates within the radius to the global answer and the
// current partition.
func (op *PartitionedRange) Evaluate(it object.Iterator) (int, error) {
	n, _, err := op.scan(it, func(o object.Object) bool {
		item, evicted, ok := op.add(op.query, o, op.threshold())
		if ok {
			op.parts.track(op.parts.current, op.parts.set, item, evicted)
		}
		return ok
	}, nil)
	return n, err
}

// ResetAnswer drops the global and every partition answer.
func (op *PartitionedRange) ResetAnswer() {
	op.Range.ResetAnswer()
	op.parts.reset()
}

// Clone copies the query, optionally with its answers.
func (op *PartitionedRange) Clone(withAnswer bool) Operation {
	return &PartitionedRange{Range: *op.cloneRange(withAnswer), parts: op.parts.clone(withAnswer)}
}

// UpdateFrom merges the answers of other per partition.
func (op *PartitionedRange) UpdateFrom(other Operation) error {
	o, ok := other.(*PartitionedRange)
	if !ok {
		return incompatible(op.kind, other)
	}
	if err := op.checkMergeable(); err != nil {
		return err
	}
	if o != op {
		mergePartitioned(&op.Ranking, &op.parts, &o.Ranking, &o.parts)
	}
	return nil
}
