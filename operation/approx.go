package operation

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/simsearch/object"
)

// StopCondition selects when an approximate evaluation stops early.
type StopCondition int

const (
	// StopPercentOfData stops after Value percent of the data was accessed.
	StopPercentOfData StopCondition = iota
	// StopObjectCount stops after Value objects were accessed.
	StopObjectCount
	// StopDistanceComputations stops after Value distance computations.
	StopDistanceComputations
	// StopPartitionCount stops after Value partitions were visited.
	StopPartitionCount
	// StopBlockReads stops after Value blocks were read.
	StopBlockReads
)

func (c StopCondition) String() string {
	switch c {
	case StopPercentOfData:
		return "percent-of-data"
	case StopObjectCount:
		return "object-count"
	case StopDistanceComputations:
		return "distance-computations"
	case StopPartitionCount:
		return "partition-count"
	case StopBlockReads:
		return "block-reads"
	default:
		return fmt.Sprintf("stop-condition(%d)", int(c))
	}
}

// RadiusNotGuaranteed is the guaranteed radius of an answer with no
// correctness guarantee.
const RadiusNotGuaranteed float32 = -1

// Approximation holds the stop condition of an approximate operation and the
// guarantees of its answer.
type Approximation struct {
	condition StopCondition
	value     float64
	dataSize  int
	radius    float32
	radiusSet bool
	visited   *roaring.Bitmap
}

func newApproximation(kind string, cond StopCondition, value float64) (Approximation, error) {
	if cond < StopPercentOfData || cond > StopBlockReads {
		return Approximation{}, fmt.Errorf("%w: %s: unknown stop condition %d", ErrInvalidArgument, kind, int(cond))
	}
	if value < 0 || (cond == StopPercentOfData && value > 100) {
		return Approximation{}, fmt.Errorf("%w: %s: invalid %s value %v", ErrInvalidArgument, kind, cond, value)
	}
	return Approximation{condition: cond, value: value, visited: roaring.New()}, nil
}

// Condition returns the stop condition.
func (a *Approximation) Condition() StopCondition { return a.condition }

// Value returns the stop condition parameter.
func (a *Approximation) Value() float64 { return a.value }

// SetDataSize sets the number of objects StopPercentOfData refers to.
func (a *Approximation) SetDataSize(n int) { a.dataSize = n }

// DataSize returns the number of objects StopPercentOfData refers to.
func (a *Approximation) DataSize() int { return a.dataSize }

// Reached reports whether the stop condition holds for s.
func (a *Approximation) Reached(s *Stats) bool {
	switch a.condition {
	case StopPercentOfData:
		if a.dataSize <= 0 {
			return false
		}
		return float64(s.ObjectsAccessed) >= a.value*float64(a.dataSize)/100
	case StopObjectCount:
		return float64(s.ObjectsAccessed) >= a.value
	case StopDistanceComputations:
		return float64(s.DistanceComputations) >= a.value
	case StopPartitionCount:
		return float64(a.visited.GetCardinality()) >= a.value
	case StopBlockReads:
		return float64(s.BlockReads) >= a.value
	}
	return false
}

// GuaranteedRadius returns the radius within which the answer is known to be
// correct, or RadiusNotGuaranteed.
func (a *Approximation) GuaranteedRadius() float32 {
	if !a.radiusSet {
		return RadiusNotGuaranteed
	}
	return a.radius
}

// SetGuaranteedRadius replaces the guaranteed radius.
func (a *Approximation) SetGuaranteedRadius(r float32) {
	a.radius = r
	a.radiusSet = true
}

// ObserveRadius lowers the guaranteed radius to r. The weakest guarantee wins.
func (a *Approximation) ObserveRadius(r float32) {
	if !a.radiusSet || r < a.radius {
		a.SetGuaranteedRadius(r)
	}
}

// MarkVisited records that partition id has been evaluated.
func (a *Approximation) MarkVisited(id uint32) { a.visited.Add(id) }

// Visited returns a copy of the visited partition set.
func (a *Approximation) Visited() *roaring.Bitmap { return a.visited.Clone() }

// VisitedCount returns the number of visited partitions.
func (a *Approximation) VisitedCount() uint64 { return a.visited.GetCardinality() }

func (a *Approximation) merge(o *Approximation) {
	if o.radiusSet {
		a.ObserveRadius(o.radius)
	}
	a.visited.Or(o.visited)
	a.dataSize = max(a.dataSize, o.dataSize)
}

func (a *Approximation) clone(withAnswer bool) Approximation {
	c := Approximation{condition: a.condition, value: a.value, dataSize: a.dataSize}
	if withAnswer {
		c.radius, c.radiusSet = a.radius, a.radiusSet
		c.visited = a.visited.Clone()
	} else {
		c.visited = roaring.New()
	}
	return c
}

// evaluated records the outcome of one evaluation: a scan that ran to the
// end of its candidates does not restrict the guarantee, an early stop
// voids it.
func (a *Approximation) evaluated(exhausted bool) {
	if exhausted {
		a.ObserveRadius(inf)
	} else {
		a.ObserveRadius(RadiusNotGuaranteed)
	}
}

func (a *Approximation) sizeFrom(it object.Iterator) {
	if a.dataSize > 0 {
		return
	}
	if s, ok := it.(object.Sizer); ok {
		a.dataSize = s.Size()
	}
}

// ApproxKNN is a k-nearest-neighbors query that may stop early.
type ApproxKNN struct {
	KNN
	approx Approximation
}

// NewApproxKNN creates an approximate k-nearest-neighbors query.
func NewApproxKNN(query object.Object, k int, cond StopCondition, value float64, optFns ...Option) (*ApproxKNN, error) {
	if err := validateKNN(KindApproxKNN, query, k); err != nil {
		return nil, err
	}
	approx, err := newApproximation(KindApproxKNN, cond, value)
	if err != nil {
		return nil, err
	}
	return &ApproxKNN{
		KNN:    *newKNN(KindApproxKNN, query, k, applyOptions(optFns), cond, value),
		approx: approx,
	}, nil
}

// Approximation returns the approximation state.
func (op *ApproxKNN) Approximation() *Approximation { return &op.approx }

// Evaluate ranks candidates until it is exhausted or the stop condition is
// reached.
func (op *ApproxKNN) Evaluate(it object.Iterator) (int, error) {
	op.approx.sizeFrom(it)
	n, exhausted, err := op.scan(it, op.visit, op.stop)
	if err == nil {
		op.approx.evaluated(exhausted)
	}
	return n, err
}

func (op *ApproxKNN) stop() bool { return op.approx.Reached(&op.stats) }

// Clone copies the query, optionally with its answer and guarantees.
func (op *ApproxKNN) Clone(withAnswer bool) Operation {
	return &ApproxKNN{KNN: *op.cloneKNN(withAnswer), approx: op.approx.clone(withAnswer)}
}

// UpdateFrom merges answer and approximation state.
func (op *ApproxKNN) UpdateFrom(other Operation) error {
	o, ok := other.(*ApproxKNN)
	if !ok {
		return incompatible(op.kind, other)
	}
	if err := op.checkMergeable(); err != nil {
		return err
	}
	if o == op {
		return nil
	}
	op.mergeRanking(o)
	op.approx.merge(&o.approx)
	return nil
}

// ApproxRange is a range query that may stop early.
type ApproxRange struct {
	Range
	approx Approximation
}

// NewApproxRange creates an approximate range query.
func NewApproxRange(query object.Object, radius float32, maxAnswerSize int, cond StopCondition, value float64, optFns ...Option) (*ApproxRange, error) {
	if err := validateRange(KindApproxRange, query, radius); err != nil {
		return nil, err
	}
	approx, err := newApproximation(KindApproxRange, cond, value)
	if err != nil {
		return nil, err
	}
	return &ApproxRange{
		Range:  *newRange(KindApproxRange, query, radius, maxAnswerSize, applyOptions(optFns), cond, value),
		approx: approx,
	}, nil
}

// Approximation returns the approximation state.
func (op *ApproxRange) Approximation() *Approximation { return &op.approx }

// Evaluate adds candidates within the radius until it is exhausted or the
// stop condition is reached.
func (op *ApproxRange) Evaluate(it object.Iterator) (int, error) {
	op.approx.sizeFrom(it)
	n, exhausted, err := op.scan(it, op.visit, op.stop)
	if err == nil {
		op.approx.evaluated(exhausted)
	}
	return n, err
}

func (op *ApproxRange) stop() bool { return op.approx.Reached(&op.stats) }

// Clone copies the query, optionally with its answer and guarantees.
func (op *ApproxRange) Clone(withAnswer bool) Operation {
	return &ApproxRange{Range: *op.cloneRange(withAnswer), approx: op.approx.clone(withAnswer)}
}

// UpdateFrom merges answer and approximation state.
func (op *ApproxRange) UpdateFrom(other Operation) error {
	o, ok := other.(*ApproxRange)
	if !ok {
		return incompatible(op.kind, other)
	}
	if err := op.checkMergeable(); err != nil {
		return err
	}
	if o == op {
		return nil
	}
	op.mergeRanking(o)
	op.approx.merge(&o.approx)
	return nil
}
