package memindex

import (
	"sort"

	"github.com/hupe1980/simsearch/index"
)

var (
	_ index.OrderedIndex[int, int]    = (*Sorted[int, int])(nil)
	_ index.ModifiableIndex[int, int] = (*Sorted[int, int])(nil)
)

// Sorted is an in-memory ordered index. Objects are kept sorted by the key
// returned by keyOf, compared with cmp.
type Sorted[K, T any] struct {
	st    store[T]
	cmp   index.Comparator[K, T]
	keyOf func(T) K
}

// NewSorted creates an empty ordered index.
func NewSorted[K, T any](cmp index.Comparator[K, T], keyOf func(T) K) *Sorted[K, T] {
	return &Sorted[K, T]{cmp: cmp, keyOf: keyOf}
}

// Comparator returns the ordering comparator.
func (s *Sorted[K, T]) Comparator() index.Comparator[K, T] { return s.cmp }

// Size returns the number of stored objects.
func (s *Sorted[K, T]) Size() int {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	return len(s.st.items)
}

// Add inserts obj after all objects with an equal key.
func (s *Sorted[K, T]) Add(obj T) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	if s.st.destroyed {
		return index.ErrDestroyed
	}
	key := s.keyOf(obj)
	pos := sort.Search(len(s.st.items), func(i int) bool {
		return s.cmp.IndexCompare(key, s.st.items[i]) < 0
	})
	var zero T
	s.st.items = append(s.st.items, zero)
	copy(s.st.items[pos+1:], s.st.items[pos:])
	s.st.items[pos] = obj
	return nil
}

// Search returns an unrestricted search in key order.
func (s *Sorted[K, T]) Search() (*index.Search[K, T], error) {
	if err := s.alive(); err != nil {
		return nil, err
	}
	return index.NewSearch[K, T](newSource(&s.st, 0, 0)), nil
}

// SearchKeys returns a search over objects equal to any of keys.
func (s *Sorted[K, T]) SearchKeys(cmp index.Comparator[K, T], keys ...K) (*index.Search[K, T], error) {
	if err := s.alive(); err != nil {
		return nil, err
	}
	return index.NewKeySearch[K, T](newSource(&s.st, 0, 0), cmp, keys...), nil
}

// SearchRange returns a search over [from, to] under cmp. When cmp is nil the
// index comparator is used and the search starts at from.
func (s *Sorted[K, T]) SearchRange(cmp index.Comparator[K, T], from, to *K) (*index.Search[K, T], error) {
	if err := s.alive(); err != nil {
		return nil, err
	}
	if cmp == nil {
		return index.NewRangeSearch[K, T](s.boundedSource(from, from, to), s.cmp, from, to), nil
	}
	return index.NewRangeSearch[K, T](newSource(&s.st, 0, 0), cmp, from, to), nil
}

// SearchKey returns a search positioned before the first object >= key.
func (s *Sorted[K, T]) SearchKey(key K, restrictEqual bool) (*index.Search[K, T], error) {
	if err := s.alive(); err != nil {
		return nil, err
	}
	if restrictEqual {
		return index.NewRangeSearch[K, T](s.boundedSource(&key, &key, &key), s.cmp, &key, &key), nil
	}
	return index.NewSearch[K, T](newSource(&s.st, s.lowerBound(key), 0)), nil
}

// SearchFrom returns a search positioned at start and restricted to [from, to].
func (s *Sorted[K, T]) SearchFrom(start K, from, to *K) (*index.Search[K, T], error) {
	if err := s.alive(); err != nil {
		return nil, err
	}
	return index.NewRangeSearch[K, T](s.boundedSource(&start, from, to), s.cmp, from, to), nil
}

// boundedSource returns a source positioned before the first object >= start
// (or at the beginning for nil start) that stops reading outside [from, to].
func (s *Sorted[K, T]) boundedSource(start, from, to *K) *source[T] {
	pos := 0
	if start != nil {
		pos = s.lowerBound(*start)
	}
	src := newSource(&s.st, pos, 0)
	if from != nil {
		lo := *from
		src.below = func(obj T) bool { return s.cmp.IndexCompare(lo, obj) > 0 }
	}
	if to != nil {
		hi := *to
		src.above = func(obj T) bool { return s.cmp.IndexCompare(hi, obj) < 0 }
	}
	return src
}

// Finalize is a no-op for in-memory data.
func (s *Sorted[K, T]) Finalize() error { return s.alive() }

// Destroy drops all objects. The index cannot be used afterwards.
func (s *Sorted[K, T]) Destroy() error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.items = nil
	s.st.destroyed = true
	return nil
}

func (s *Sorted[K, T]) lowerBound(key K) int {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	return sort.Search(len(s.st.items), func(i int) bool {
		return s.cmp.IndexCompare(key, s.st.items[i]) <= 0
	})
}

func (s *Sorted[K, T]) alive() error {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	if s.st.destroyed {
		return index.ErrDestroyed
	}
	return nil
}
