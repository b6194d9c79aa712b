package memindex

import (
	"strings"

	"github.com/hupe1980/simsearch/index"
	"github.com/hupe1980/simsearch/object"
)

// ByID orders objects by their ID bytes.
var ByID index.Comparator[object.ID, object.Object] = index.ComparatorFunc[object.ID, object.Object](
	func(key object.ID, obj object.Object) int {
		return object.CompareIDs(key, obj.ID())
	})

// ByLocator orders objects by their locator.
var ByLocator index.Comparator[string, object.Object] = index.ComparatorFunc[string, object.Object](
	func(key string, obj object.Object) int {
		return strings.Compare(key, obj.Locator())
	})

// NewSortedByID creates an ordered object index keyed by ID.
func NewSortedByID() *Sorted[object.ID, object.Object] {
	return NewSorted(ByID, object.Object.ID)
}

// NewSortedByLocator creates an ordered object index keyed by locator.
func NewSortedByLocator() *Sorted[string, object.Object] {
	return NewSorted(ByLocator, object.Object.Locator)
}

// SameID reports whether a and b carry the same ID.
func SameID(a, b object.Object) bool { return a.ID() == b.ID() }
