package rank

import (
	"cmp"
	"fmt"

	"github.com/hupe1980/simsearch/object"
)

// RankedObject pairs an object with its distance to the query.
// Treat it as immutable once constructed.
type RankedObject struct {
	// Object is the ranked object.
	Object object.Object
	// Distance is the distance to the query object.
	Distance float32
	// SubDistances holds per-sub-object distances for composite queries.
	SubDistances []float32
}

// New creates a RankedObject.
func New(o object.Object, d float32) RankedObject {
	return RankedObject{Object: o, Distance: d}
}

// NewWithSubDistances creates a RankedObject that retains the per-sub-object
// distances it was aggregated from.
func NewWithSubDistances(o object.Object, d float32, subs []float32) RankedObject {
	return RankedObject{Object: o, Distance: d, SubDistances: subs}
}

// ID returns the ID of the ranked object or object.NilID.
func (r RankedObject) ID() object.ID {
	if r.Object == nil {
		return object.NilID
	}
	return r.Object.ID()
}

func (r RankedObject) String() string {
	if r.Object == nil {
		return fmt.Sprintf("<nil>:%g", r.Distance)
	}
	return fmt.Sprintf("%s:%g", r.Object.Locator(), r.Distance)
}

// Compare orders ranked objects by distance, then ID, then locator.
// It returns 0 for objects that only differ in insertion order.
func Compare(a, b RankedObject) int {
	if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
		return c
	}
	if c := object.CompareIDs(a.ID(), b.ID()); c != 0 {
		return c
	}
	return cmp.Compare(locator(a), locator(b))
}

// sameObject reports whether a and b reference the same object. Objects
// without an ID are compared by reference.
func sameObject(a, b RankedObject) bool {
	if id := a.ID(); id != object.NilID {
		return id == b.ID()
	}
	return a.Object == b.Object
}

func locator(r RankedObject) string {
	if r.Object == nil {
		return ""
	}
	return r.Object.Locator()
}
