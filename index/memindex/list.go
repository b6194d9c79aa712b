package memindex

import (
	"fmt"

	"github.com/hupe1980/simsearch/index"
)

var _ index.ModifiableIndex[int, int] = (*List[int, int])(nil)

// DefaultBlockSize is the number of objects per simulated storage block.
const DefaultBlockSize = 64

// ListOption configures a List.
type ListOption[T any] func(*listOptions[T])

type listOptions[T any] struct {
	blockSize int
	soft      int
	hard      int
	equal     func(a, b T) bool
}

// WithBlockSize sets the block size used for block-read accounting.
func WithBlockSize[T any](n int) ListOption[T] {
	return func(o *listOptions[T]) {
		o.blockSize = n
	}
}

// WithCapacity sets the soft and hard capacity. Zero disables a limit.
func WithCapacity[T any](soft, hard int) ListOption[T] {
	return func(o *listOptions[T]) {
		o.soft = soft
		o.hard = hard
	}
}

// WithDuplicateCheck rejects objects for which eq reports a stored match.
func WithDuplicateCheck[T any](eq func(a, b T) bool) ListOption[T] {
	return func(o *listOptions[T]) {
		o.equal = eq
	}
}

// List is an unordered in-memory index that keeps insertion order.
type List[K, T any] struct {
	st   store[T]
	opts listOptions[T]
}

// NewList creates an empty list index.
func NewList[K, T any](optFns ...ListOption[T]) *List[K, T] {
	opts := listOptions[T]{blockSize: DefaultBlockSize}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &List[K, T]{opts: opts}
}

// Size returns the number of stored objects.
func (l *List[K, T]) Size() int {
	l.st.mu.RLock()
	defer l.st.mu.RUnlock()
	return len(l.st.items)
}

// Add appends obj. A soft capacity violation stores obj and returns an error
// wrapping index.ErrSoftCapacity.
func (l *List[K, T]) Add(obj T) error {
	l.st.mu.Lock()
	defer l.st.mu.Unlock()

	if l.st.destroyed {
		return index.ErrDestroyed
	}
	n := len(l.st.items)
	if l.opts.hard > 0 && n >= l.opts.hard {
		return fmt.Errorf("%w: %d objects", index.ErrHardCapacity, n)
	}
	if l.opts.equal != nil {
		for _, it := range l.st.items {
			if l.opts.equal(it, obj) {
				return index.ErrDuplicate
			}
		}
	}
	l.st.items = append(l.st.items, obj)
	if l.opts.soft > 0 && n+1 > l.opts.soft {
		return fmt.Errorf("%w: %d objects", index.ErrSoftCapacity, n+1)
	}
	return nil
}

// Search returns a search over all objects in insertion order.
func (l *List[K, T]) Search() (*index.Search[K, T], error) {
	if err := l.alive(); err != nil {
		return nil, err
	}
	return index.NewSearch[K, T](l.source()), nil
}

// SearchKeys returns a search over objects equal to any of keys.
func (l *List[K, T]) SearchKeys(cmp index.Comparator[K, T], keys ...K) (*index.Search[K, T], error) {
	if err := l.alive(); err != nil {
		return nil, err
	}
	return index.NewKeySearch[K, T](l.source(), cmp, keys...), nil
}

// SearchRange returns a search over objects within [from, to] under cmp.
func (l *List[K, T]) SearchRange(cmp index.Comparator[K, T], from, to *K) (*index.Search[K, T], error) {
	if err := l.alive(); err != nil {
		return nil, err
	}
	return index.NewRangeSearch[K, T](l.source(), cmp, from, to), nil
}

// Finalize is a no-op for in-memory data.
func (l *List[K, T]) Finalize() error { return l.alive() }

// Destroy drops all objects. The index cannot be used afterwards.
func (l *List[K, T]) Destroy() error {
	l.st.mu.Lock()
	defer l.st.mu.Unlock()
	l.st.items = nil
	l.st.destroyed = true
	return nil
}

func (l *List[K, T]) source() *source[T] {
	return newSource(&l.st, 0, l.opts.blockSize)
}

func (l *List[K, T]) alive() error {
	l.st.mu.RLock()
	defer l.st.mu.RUnlock()
	if l.st.destroyed {
		return index.ErrDestroyed
	}
	return nil
}
