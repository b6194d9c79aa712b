package index

// Search is a bidirectional cursor over a Source that only yields objects
// matching its key restriction.
//
// Search is NOT thread-safe. Use Clone to give another goroutine its own
// cursor.
type Search[K, T any] struct {
	src   Source[T]
	cmp   Comparator[K, T]
	keys  []K
	from  *K
	to    *K
	exact bool

	current    T
	positioned bool
	closed     bool
	err        error
}

// NewSearch creates an unrestricted search that yields every object of src.
func NewSearch[K, T any](src Source[T]) *Search[K, T] {
	return &Search[K, T]{src: src}
}

// NewKeySearch creates a search that yields objects equal to any of keys.
func NewKeySearch[K, T any](src Source[T], cmp Comparator[K, T], keys ...K) *Search[K, T] {
	return &Search[K, T]{src: src, cmp: cmp, keys: keys}
}

// NewRangeSearch creates a search restricted to [from, to]. A nil bound is
// unrestricted; from == to (the same pointer) restricts to equal objects.
func NewRangeSearch[K, T any](src Source[T], cmp Comparator[K, T], from, to *K) *Search[K, T] {
	return &Search[K, T]{
		src:   src,
		cmp:   cmp,
		from:  from,
		to:    to,
		exact: from != nil && from == to,
	}
}

// Comparator returns the comparator of a restricted search or nil.
func (s *Search[K, T]) Comparator() Comparator[K, T] { return s.cmp }

// Bounds returns the range restriction.
func (s *Search[K, T]) Bounds() (from, to *K) { return s.from, s.to }

// Matches reports whether obj satisfies the key restriction.
func (s *Search[K, T]) Matches(obj T) bool {
	if s.cmp == nil {
		return true
	}
	if len(s.keys) > 0 {
		for _, k := range s.keys {
			if s.cmp.IndexCompare(k, obj) == 0 {
				return true
			}
		}
		return false
	}
	if s.exact {
		return s.cmp.IndexCompare(*s.from, obj) == 0
	}
	if s.from != nil && s.cmp.IndexCompare(*s.from, obj) > 0 {
		return false
	}
	if s.to != nil && s.cmp.IndexCompare(*s.to, obj) < 0 {
		return false
	}
	return true
}

// Next moves to the next matching object. It returns false when the source is
// exhausted or failed; check Err to tell them apart.
func (s *Search[K, T]) Next() bool {
	return s.advance("next", s.src.ReadNext)
}

// Previous moves to the previous matching object. As the source position
// lies between objects, Previous right after Next yields the same object.
func (s *Search[K, T]) Previous() bool {
	return s.advance("previous", s.src.ReadPrevious)
}

func (s *Search[K, T]) advance(op string, read func() (T, bool, error)) bool {
	if s.closed {
		s.err = ErrClosed
		return false
	}
	if s.err != nil {
		return false
	}
	for {
		obj, ok, err := read()
		if err != nil {
			s.err = &StorageError{Op: op, Err: err}
			s.unposition()
			return false
		}
		if !ok {
			s.unposition()
			return false
		}
		if s.Matches(obj) {
			s.current = obj
			s.positioned = true
			return true
		}
	}
}

// Skip calls Next n times (Previous for negative n) and reports whether every
// step succeeded. It is not atomic with respect to concurrent modification.
func (s *Search[K, T]) Skip(n int) bool {
	for ; n > 0; n-- {
		if !s.Next() {
			return false
		}
	}
	for ; n < 0; n++ {
		if !s.Previous() {
			return false
		}
	}
	return true
}

// Current returns the current object or the zero value when not positioned.
func (s *Search[K, T]) Current() T {
	return s.current
}

// CurrentObject returns the current object or ErrNoCurrentObject.
func (s *Search[K, T]) CurrentObject() (T, error) {
	if s.closed {
		var zero T
		return zero, ErrClosed
	}
	if !s.positioned {
		var zero T
		return zero, ErrNoCurrentObject
	}
	return s.current, nil
}

// Remove removes the current object from a modifiable index.
func (s *Search[K, T]) Remove() error {
	if s.closed {
		return ErrClosed
	}
	if !s.positioned {
		return ErrNoCurrentObject
	}
	r, ok := s.src.(Remover)
	if !ok {
		return ErrNotModifiable
	}
	if err := r.RemoveCurrent(); err != nil {
		return &StorageError{Op: "remove", Err: err}
	}
	s.unposition()
	return nil
}

// Clone returns an independent search at the same position with the same
// restriction.
func (s *Search[K, T]) Clone() *Search[K, T] {
	c := *s
	c.src = s.src.Clone()
	return &c
}

// Err returns the first error encountered.
func (s *Search[K, T]) Err() error { return s.err }

// BlocksRead returns the number of blocks read by a block-organized source.
func (s *Search[K, T]) BlocksRead() int {
	if bc, ok := s.src.(BlockCounter); ok {
		return bc.BlocksRead()
	}
	return 0
}

// Close releases the source. Further calls fail with ErrClosed.
func (s *Search[K, T]) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.unposition()
	return s.src.Close()
}

func (s *Search[K, T]) unposition() {
	var zero T
	s.current = zero
	s.positioned = false
}
