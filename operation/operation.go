package operation

import (
	"iter"

	"github.com/google/uuid"

	"github.com/hupe1980/simsearch/object"
	"github.com/hupe1980/simsearch/rank"
)

// Operation is the common contract of every operation kind.
type Operation interface {
	// ID identifies the operation. Clones and decoded copies share it.
	ID() uuid.UUID
	Kind() string
	ErrorCode() ErrorCode
	IsFinished() bool
	// WasSuccessful applies the kind-specific success predicate.
	WasSuccessful() bool
	// EndOperation finishes the operation with its kind-specific success code.
	EndOperation()
	// EndOperationWith finishes the operation with code and notifies the
	// registered end callbacks.
	EndOperationWith(code ErrorCode) error
	OnEnd(fn EndFunc)
	AnswerType() AnswerType
	Stats() *Stats
	Parameter(name string) (any, bool)
	SetParameter(name string, value any)
	SupplementalData() any

	// Arguments returns the positional constructor arguments.
	Arguments() []any
	ArgumentCount() int
	Argument(i int) (any, error)

	// DataEqual compares kind and arguments, ignoring identity.
	DataEqual(other Operation) bool
	DataHash() uint64

	// Clone returns a copy with the same ID. Without answer the copy starts
	// with an empty answer and zeroed counters.
	Clone(withAnswer bool) Operation
	// UpdateFrom merges the answer and state of a partial operation.
	UpdateFrom(other Operation) error
}

// QueryOperation is an operation evaluated over candidate iterators.
type QueryOperation interface {
	Operation
	// Evaluate scans it and returns the number of objects added to the
	// answer by this call.
	Evaluate(it object.Iterator) (int, error)
	AnswerCount() int
	ResetAnswer()
}

// RankingOperation is a query whose answer is ordered by distance.
type RankingOperation interface {
	QueryOperation
	Answer() iter.Seq[rank.RankedObject]
	AnswerRange(skip, count int) iter.Seq[rank.RankedObject]
	AnswerThreshold() float32
	Collection() *rank.Collection
}

// PartitionedOperation keeps a sub-answer per partition.
type PartitionedOperation interface {
	RankingOperation
	SetPartition(id uint32)
	PartitionAnswer(id uint32) []rank.RankedObject
}

// ApproximateOperation stops early and tracks the radius within which its
// answer is guaranteed to be correct.
type ApproximateOperation interface {
	RankingOperation
	Approximation() *Approximation
}

// Remover is implemented by iterators that can delete the current object.
type Remover interface {
	Remove() error
}

// Inserter stores objects, typically an index.ModifiableIndex.
type Inserter interface {
	Add(obj object.Object) error
}
