package index

// Index is a searchable collection of objects.
type Index[K, T any] interface {
	// Size returns the number of stored objects.
	Size() int

	// Search returns an unrestricted search in index order.
	Search() (*Search[K, T], error)

	// SearchKeys returns a search over objects equal to any of keys.
	SearchKeys(cmp Comparator[K, T], keys ...K) (*Search[K, T], error)

	// SearchRange returns a search over objects within [from, to].
	SearchRange(cmp Comparator[K, T], from, to *K) (*Search[K, T], error)
}

// OrderedIndex is an index whose objects are sorted by its own comparator.
type OrderedIndex[K, T any] interface {
	Index[K, T]

	// Comparator returns the ordering comparator.
	Comparator() Comparator[K, T]

	// SearchKey returns a search positioned at key. If restrictEqual is set
	// only objects equal to key are returned, otherwise the whole index can
	// be traversed from that position in both directions.
	SearchKey(key K, restrictEqual bool) (*Search[K, T], error)

	// SearchFrom returns a search positioned at start and restricted to
	// [from, to].
	SearchFrom(start K, from, to *K) (*Search[K, T], error)
}

// ModifiableIndex is an index that supports insertion and removal. Objects
// are removed through Search.Remove.
type ModifiableIndex[K, T any] interface {
	Index[K, T]

	// Add stores obj. Errors wrap ErrDuplicate, ErrSoftCapacity or
	// ErrHardCapacity. ErrSoftCapacity means the object was stored anyway.
	Add(obj T) error

	// Finalize flushes pending state and releases resources. The stored
	// data is kept.
	Finalize() error

	// Destroy removes all data and releases resources.
	Destroy() error
}
