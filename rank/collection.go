package rank

import (
	"iter"
	"math"
	"slices"
	"sort"

	"github.com/hupe1980/simsearch/object"
)

// Collection is a sorted, optionally capacity-bounded set of RankedObjects.
type Collection struct {
	items    []RankedObject
	capacity int // <= 0 means unbounded
	ids      map[object.ID]struct{}
	frozen   bool
}

// NewCollection creates a collection. capacity <= 0 means unbounded.
func NewCollection(capacity int) *Collection {
	c := &Collection{capacity: capacity}
	if capacity > 0 && capacity <= 1024 {
		c.items = make([]RankedObject, 0, capacity)
	}
	return c
}

// Len returns the number of items.
func (c *Collection) Len() int { return len(c.items) }

// Capacity returns the maximal number of items, or 0 if unbounded.
func (c *Collection) Capacity() int {
	if c.capacity <= 0 {
		return 0
	}
	return c.capacity
}

// IsFull reports whether a bounded collection reached its capacity.
func (c *Collection) IsFull() bool {
	return c.capacity > 0 && len(c.items) >= c.capacity
}

// Threshold returns the distance of the farthest item if the collection is
// full and +Inf otherwise. Candidates farther than the threshold can never be
// admitted.
func (c *Collection) Threshold() float32 {
	if !c.IsFull() || len(c.items) == 0 {
		return float32(math.Inf(1))
	}
	return c.items[len(c.items)-1].Distance
}

// Add inserts item at its ordered position.
//
// It returns false if the item was rejected: the collection is frozen, the
// object is already present, or the collection is full and item is not
// strictly closer than the farthest item. If an item had to be evicted to
// make room it is returned.
func (c *Collection) Add(item RankedObject) (bool, *RankedObject) {
	if c.frozen || math.IsNaN(float64(item.Distance)) {
		return false, nil
	}
	id := item.ID()
	if id != object.NilID {
		if _, dup := c.ids[id]; dup {
			return false, nil
		}
	}

	var evicted *RankedObject
	if c.IsFull() {
		last := c.items[len(c.items)-1]
		if !(item.Distance < last.Distance) {
			return false, nil
		}
		c.items = c.items[:len(c.items)-1]
		c.forget(last)
		evicted = &last
	}

	pos := sort.Search(len(c.items), func(i int) bool {
		return Compare(c.items[i], item) > 0
	})
	c.items = slices.Insert(c.items, pos, item)
	if id != object.NilID {
		if c.ids == nil {
			c.ids = make(map[object.ID]struct{})
		}
		c.ids[id] = struct{}{}
	}
	return true, evicted
}

// Insert is Add without the evicted item.
func (c *Collection) Insert(item RankedObject) bool {
	ok, _ := c.Add(item)
	return ok
}

// Remove deletes the item referencing the same object at the same distance.
func (c *Collection) Remove(item RankedObject) bool {
	start := sort.Search(len(c.items), func(i int) bool {
		return c.items[i].Distance >= item.Distance
	})
	for i := start; i < len(c.items) && c.items[i].Distance == item.Distance; i++ {
		if sameObject(c.items[i], item) {
			removed := c.items[i]
			c.items = slices.Delete(c.items, i, i+1)
			c.forget(removed)
			return true
		}
	}
	return false
}

// Has reports whether item's object is present at item's distance.
// Objects without an ID are matched by reference.
func (c *Collection) Has(item RankedObject) bool {
	start := sort.Search(len(c.items), func(i int) bool {
		return c.items[i].Distance >= item.Distance
	})
	for i := start; i < len(c.items) && c.items[i].Distance == item.Distance; i++ {
		if sameObject(c.items[i], item) {
			return true
		}
	}
	return false
}

// Contains reports whether an object with the given ID is present.
func (c *Collection) Contains(id object.ID) bool {
	_, ok := c.ids[id]
	return ok
}

// Merge adds every item of other in distance order and returns the number of
// inserted items.
func (c *Collection) Merge(other *Collection) int {
	if other == nil || other == c {
		return 0
	}
	added := 0
	for _, item := range other.items {
		if c.IsFull() && item.Distance >= c.Threshold() {
			// other is sorted, nothing further can be admitted.
			break
		}
		if c.Insert(item) {
			added++
		}
	}
	return added
}

// At returns the i-th closest item.
func (c *Collection) At(i int) RankedObject { return c.items[i] }

// First returns the closest item.
func (c *Collection) First() (RankedObject, bool) {
	if len(c.items) == 0 {
		return RankedObject{}, false
	}
	return c.items[0], true
}

// Last returns the farthest item.
func (c *Collection) Last() (RankedObject, bool) {
	if len(c.items) == 0 {
		return RankedObject{}, false
	}
	return c.items[len(c.items)-1], true
}

// Items returns a copy of the items in distance order.
func (c *Collection) Items() []RankedObject {
	return slices.Clone(c.items)
}

// Objects returns the ranked objects in distance order.
func (c *Collection) Objects() []object.Object {
	out := make([]object.Object, len(c.items))
	for i, item := range c.items {
		out[i] = item.Object
	}
	return out
}

// All returns an iterator over all items in distance order.
func (c *Collection) All() iter.Seq[RankedObject] {
	return c.Range(0, -1)
}

// Range returns an iterator that skips the first skip items and yields at
// most count items (count < 0 means all).
func (c *Collection) Range(skip, count int) iter.Seq[RankedObject] {
	return func(yield func(RankedObject) bool) {
		items := c.items
		if skip < 0 {
			skip = 0
		}
		for i := skip; i < len(items); i++ {
			if count >= 0 && i-skip >= count {
				return
			}
			if !yield(items[i]) {
				return
			}
		}
	}
}

// Within returns an iterator over the items with min <= distance <= max.
func (c *Collection) Within(minDist, maxDist float32) iter.Seq[RankedObject] {
	return func(yield func(RankedObject) bool) {
		items := c.items
		start := sort.Search(len(items), func(i int) bool {
			return items[i].Distance >= minDist
		})
		for i := start; i < len(items) && items[i].Distance <= maxDist; i++ {
			if !yield(items[i]) {
				return
			}
		}
	}
}

// Clear removes all items. The frozen state is kept.
func (c *Collection) Clear() {
	c.items = c.items[:0]
	c.ids = nil
}

// Clone returns an independent, unfrozen copy.
func (c *Collection) Clone() *Collection {
	out := &Collection{
		items:    slices.Clone(c.items),
		capacity: c.capacity,
	}
	if len(c.ids) > 0 {
		out.ids = make(map[object.ID]struct{}, len(c.ids))
		for id := range c.ids {
			out.ids[id] = struct{}{}
		}
	}
	return out
}

// Freeze makes the collection reject further inserts. It is registered as an
// end-of-operation callback to stop incremental growth once the owning
// operation has finished.
func (c *Collection) Freeze() { c.frozen = true }

// Frozen reports whether the collection rejects inserts.
func (c *Collection) Frozen() bool { return c.frozen }

func (c *Collection) forget(item RankedObject) {
	if id := item.ID(); id != object.NilID {
		delete(c.ids, id)
	}
}
