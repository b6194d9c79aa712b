package object

import (
	"bytes"
	"errors"

	"github.com/google/uuid"
)

// ID is the 128-bit unique identifier of an object.
// The zero ID (uuid.Nil) means the object has no identity.
type ID = uuid.UUID

// NilID is the zero ID.
var NilID = uuid.Nil

// NewID returns a new random ID.
func NewID() ID {
	return uuid.New()
}

// CompareIDs orders IDs by their byte representation.
func CompareIDs(a, b ID) int {
	return bytes.Compare(a[:], b[:])
}

var (
	// ErrNotRecordable is returned when an object has no wire form.
	ErrNotRecordable = errors.New("object is not recordable")

	// ErrUnknownKind is returned when a record kind has no registered decoder.
	ErrUnknownKind = errors.New("unknown object kind")
)

// Object is an opaque reference owned by the storage layer.
//
// Distance must be symmetric and non-negative; metric-based pruning
// additionally relies on the triangle inequality.
type Object interface {
	ID() ID
	Locator() string
	Distance(other Object) float32
}

// Cloner is implemented by objects that can produce a deep copy.
type Cloner interface {
	Clone() Object
}

// SurplusClearer is implemented by objects carrying auxiliary data that is not
// needed in an answer.
type SurplusClearer interface {
	ClearSurplusData()
}

// PrecomputedFilter is implemented by objects that hold precomputed distances
// (e.g. to pivots) and can prove a lower bound on the distance to query.
//
// ExcludeUsingPrecomputed returns true only if the object is certainly farther
// than radius from query. Returning false never implies the opposite.
type PrecomputedFilter interface {
	ExcludeUsingPrecomputed(query Object, radius float32) bool
}

// Composite is implemented by meta objects made of sub-objects.
type Composite interface {
	SubObjects() []Object
	// SubDistances returns the aggregated distance and the per-sub-object
	// distances to other.
	SubDistances(other Object) (float32, []float32)
}

// DataEqualer is implemented by objects with content equality.
type DataEqualer interface {
	DataEqual(other Object) bool
	DataHash() uint64
}

// DataEqual compares two objects by content when both support it and by ID
// otherwise.
func DataEqual(a, b Object) bool {
	if a == nil || b == nil {
		return a == b
	}
	if ea, ok := a.(DataEqualer); ok {
		return ea.DataEqual(b)
	}
	return a.ID() != NilID && a.ID() == b.ID()
}

// Clone returns a deep copy of o if it supports cloning, and o otherwise.
func Clone(o Object) Object {
	if c, ok := o.(Cloner); ok {
		return c.Clone()
	}
	return o
}
