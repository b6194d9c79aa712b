package memindex

import (
	"sync"

	"github.com/hupe1980/simsearch/index"
)

// store is the shared, lock-protected backing slice of an index.
type store[T any] struct {
	mu        sync.RWMutex
	items     []T
	destroyed bool
}

// source reads a store from a position between two items.
type source[T any] struct {
	st        *store[T]
	pos       int // gap before items[pos]
	last      int // index returned by the last read, -1 if none
	blockSize int
	lastBlock int
	blocks    int
	closed    bool
	// below and above report items outside the key bounds of an ordered
	// store; reads stop at the first such item.
	below func(T) bool
	above func(T) bool
}

var (
	_ index.Source[int]  = (*source[int])(nil)
	_ index.Remover      = (*source[int])(nil)
	_ index.BlockCounter = (*source[int])(nil)
)

func newSource[T any](st *store[T], pos, blockSize int) *source[T] {
	return &source[T]{st: st, pos: pos, last: -1, blockSize: blockSize, lastBlock: -1}
}

func (s *source[T]) ReadNext() (T, bool, error) {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()

	var zero T
	if err := s.check(); err != nil {
		return zero, false, err
	}
	if s.pos < 0 {
		s.pos = 0
	}
	if s.pos >= len(s.st.items) {
		s.pos = len(s.st.items)
		s.last = -1
		return zero, false, nil
	}
	if s.above != nil && s.above(s.st.items[s.pos]) {
		s.last = -1
		return zero, false, nil
	}
	s.last = s.pos
	s.pos++
	s.touch(s.last)
	return s.st.items[s.last], true, nil
}

func (s *source[T]) ReadPrevious() (T, bool, error) {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()

	var zero T
	if err := s.check(); err != nil {
		return zero, false, err
	}
	if s.pos > len(s.st.items) {
		s.pos = len(s.st.items)
	}
	if s.pos <= 0 {
		s.pos = 0
		s.last = -1
		return zero, false, nil
	}
	if s.below != nil && s.below(s.st.items[s.pos-1]) {
		s.last = -1
		return zero, false, nil
	}
	s.pos--
	s.last = s.pos
	s.touch(s.last)
	return s.st.items[s.last], true, nil
}

// RemoveCurrent removes the item returned by the last read.
func (s *source[T]) RemoveCurrent() error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	if s.st.destroyed {
		return index.ErrDestroyed
	}
	if s.last < 0 || s.last >= len(s.st.items) {
		return index.ErrNoCurrentObject
	}
	s.st.items = append(s.st.items[:s.last], s.st.items[s.last+1:]...)
	if s.last < s.pos {
		s.pos--
	}
	s.last = -1
	return nil
}

func (s *source[T]) Clone() index.Source[T] {
	c := *s
	return &c
}

func (s *source[T]) Close() error {
	s.closed = true
	return nil
}

// BlocksRead returns the number of block switches performed by this source.
func (s *source[T]) BlocksRead() int { return s.blocks }

func (s *source[T]) check() error {
	if s.closed {
		return index.ErrClosed
	}
	if s.st.destroyed {
		return index.ErrDestroyed
	}
	return nil
}

func (s *source[T]) touch(i int) {
	if s.blockSize <= 0 {
		return
	}
	if b := i / s.blockSize; b != s.lastBlock {
		s.lastBlock = b
		s.blocks++
	}
}
