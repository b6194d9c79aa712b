package rank

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/simsearch/object"
)

func obj(loc string) object.Object {
	return object.NewVector([]float32{0}, object.WithLocator(loc))
}

func locators(c *Collection) []string {
	var out []string
	for item := range c.All() {
		out = append(out, item.Object.Locator())
	}
	return out
}

func assertSorted(t *testing.T, c *Collection) {
	t.Helper()
	items := c.Items()
	for i := 1; i < len(items); i++ {
		require.LessOrEqual(t, items[i-1].Distance, items[i].Distance, "items out of order at %d", i)
	}
	if c.Capacity() > 0 {
		require.LessOrEqual(t, c.Len(), c.Capacity())
	}
}

func TestCollectionOrderingInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, capacity := range []int{0, 1, 5, 50} {
		c := NewCollection(capacity)
		for i := 0; i < 500; i++ {
			c.Add(New(obj("x"), float32(rng.Intn(100))))
			assertSorted(t, c)
		}
	}
}

func TestCollectionEviction(t *testing.T) {
	c := NewCollection(3)
	a, b, d := obj("a"), obj("b"), obj("d")
	require.True(t, c.Insert(New(a, 1)))
	require.True(t, c.Insert(New(b, 2)))
	require.True(t, c.Insert(New(d, 5)))
	require.True(t, c.IsFull())
	assert.Equal(t, float32(5), c.Threshold())

	t.Run("FartherRejected", func(t *testing.T) {
		ok, evicted := c.Add(New(obj("e"), 6))
		assert.False(t, ok)
		assert.Nil(t, evicted)
		assert.Equal(t, []string{"a", "b", "d"}, locators(c))
	})

	t.Run("BoundaryTieRejected", func(t *testing.T) {
		ok, _ := c.Add(New(obj("e"), 5))
		assert.False(t, ok)
		assert.Equal(t, []string{"a", "b", "d"}, locators(c))
	})

	t.Run("CloserEvictsMax", func(t *testing.T) {
		ok, evicted := c.Add(New(obj("c"), 2))
		require.True(t, ok)
		require.NotNil(t, evicted)
		assert.Equal(t, d.ID(), evicted.ID())
		assert.False(t, c.Contains(d.ID()))
		assert.Equal(t, 3, c.Len())
		assert.Equal(t, float32(2), c.Threshold())
	})
}

func TestCollectionThresholdUnbounded(t *testing.T) {
	c := NewCollection(0)
	assert.True(t, math.IsInf(float64(c.Threshold()), 1))
	c.Insert(New(obj("a"), 1))
	assert.True(t, math.IsInf(float64(c.Threshold()), 1))
	assert.False(t, c.IsFull())

	c = NewCollection(2)
	c.Insert(New(obj("a"), 1))
	assert.True(t, math.IsInf(float64(c.Threshold()), 1), "not full yet")
}

func TestCollectionTieBreak(t *testing.T) {
	ids := []object.ID{object.NewID(), object.NewID(), object.NewID()}
	slices.SortFunc(ids, object.CompareIDs)

	mk := func(i int) RankedObject {
		return New(object.NewVector([]float32{0}, object.WithID(ids[i])), 1)
	}

	// Insertion order must not matter for equal distances.
	for _, order := range [][]int{{0, 1, 2}, {2, 1, 0}, {1, 2, 0}} {
		c := NewCollection(0)
		for _, i := range order {
			c.Insert(mk(i))
		}
		got := make([]object.ID, 0, 3)
		for item := range c.All() {
			got = append(got, item.ID())
		}
		assert.Equal(t, ids, got)
	}
}

func TestCollectionDuplicates(t *testing.T) {
	a := obj("a")
	c := NewCollection(0)
	require.True(t, c.Insert(New(a, 1)))
	assert.False(t, c.Insert(New(a, 1)))
	assert.Equal(t, 1, c.Len())

	// Objects without identity are never treated as duplicates.
	anon := object.NewVector([]float32{0}, object.WithID(object.NilID))
	require.True(t, c.Insert(New(anon, 2)))
	require.True(t, c.Insert(New(anon, 2)))
	assert.Equal(t, 3, c.Len())
}

func TestCollectionRemove(t *testing.T) {
	a, b := obj("a"), obj("b")
	c := NewCollection(0)
	c.Insert(New(a, 1))
	c.Insert(New(b, 1))

	assert.False(t, c.Remove(New(a, 2)), "distance must match")
	assert.True(t, c.Remove(New(a, 1)))
	assert.False(t, c.Contains(a.ID()))
	assert.Equal(t, []string{"b"}, locators(c))

	// After removal the object can be added again.
	assert.True(t, c.Insert(New(a, 1)))
}

func TestCollectionMergeContent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const k = 10

	var all []RankedObject
	for i := 0; i < 200; i++ {
		// Distinct distances so that the final content is unique.
		all = append(all, New(obj("x"), float32(i)+rng.Float32()*0.5))
	}
	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })

	direct := NewCollection(k)
	for _, item := range all {
		direct.Insert(item)
	}

	// Evaluate three arbitrary partitions separately and merge them in
	// different orders.
	parts := []*Collection{NewCollection(k), NewCollection(k), NewCollection(k)}
	for i, item := range all {
		parts[i%3].Insert(item)
	}

	for _, order := range [][]int{{0, 1, 2}, {2, 0, 1}} {
		merged := NewCollection(k)
		for _, i := range order {
			merged.Merge(parts[i])
		}
		assert.Equal(t, direct.Items(), merged.Items())
	}

	t.Run("OverlappingPartialsNoDuplicates", func(t *testing.T) {
		merged := NewCollection(0)
		merged.Merge(parts[0])
		merged.Merge(parts[0].Clone())
		assert.Equal(t, parts[0].Len(), merged.Len())
	})

	t.Run("TiedSurvivorMayDiffer", func(t *testing.T) {
		// With a tie at the boundary the surviving object depends on merge
		// order; only the distances are guaranteed.
		x, y := obj("x"), obj("y")
		p1, p2 := NewCollection(1), NewCollection(1)
		p1.Insert(New(x, 1))
		p2.Insert(New(y, 1))

		m1 := NewCollection(1)
		m1.Merge(p1)
		m1.Merge(p2)
		m2 := NewCollection(1)
		m2.Merge(p2)
		m2.Merge(p1)

		f1, _ := m1.First()
		f2, _ := m2.First()
		assert.Equal(t, f1.Distance, f2.Distance)
	})
}

func TestCollectionIteration(t *testing.T) {
	c := NewCollection(0)
	for i, loc := range []string{"a", "b", "c", "d", "e"} {
		c.Insert(New(obj(loc), float32(i)))
	}

	var got []string
	for item := range c.Range(1, 2) {
		got = append(got, item.Object.Locator())
	}
	assert.Equal(t, []string{"b", "c"}, got)

	got = got[:0]
	for item := range c.Range(3, -1) {
		got = append(got, item.Object.Locator())
	}
	assert.Equal(t, []string{"d", "e"}, got)

	got = got[:0]
	for item := range c.Within(1, 3) {
		got = append(got, item.Object.Locator())
	}
	assert.Equal(t, []string{"b", "c", "d"}, got)

	// Iteration restarts from scratch and does not mutate.
	assert.Equal(t, locators(c), locators(c))
	assert.Equal(t, 5, c.Len())

	got = got[:0]
	for item := range c.All() {
		got = append(got, item.Object.Locator())
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, got)

	first, ok := c.First()
	require.True(t, ok)
	assert.Equal(t, "a", first.Object.Locator())
	last, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, "e", last.Object.Locator())
	assert.Len(t, c.Objects(), 5)
}

func TestCollectionFreezeCloneClear(t *testing.T) {
	c := NewCollection(2)
	a := obj("a")
	c.Insert(New(a, 1))

	cl := c.Clone()
	c.Freeze()
	assert.True(t, c.Frozen())
	assert.False(t, c.Insert(New(obj("b"), 0)))

	assert.False(t, cl.Frozen())
	assert.True(t, cl.Insert(New(obj("b"), 0)))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2, cl.Len())
	assert.True(t, cl.Contains(a.ID()))

	cl.Clear()
	assert.Zero(t, cl.Len())
	assert.False(t, cl.Contains(a.ID()))

	_, ok := cl.First()
	assert.False(t, ok)
}
