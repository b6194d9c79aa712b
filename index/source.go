package index

// Comparator compares a key with an object of the index.
//
// IndexCompare returns a negative number if key sorts before obj, zero if they
// are equal and a positive number if key sorts after obj.
type Comparator[K, T any] interface {
	IndexCompare(key K, obj T) int
}

// ComparatorFunc adapts a function to Comparator.
type ComparatorFunc[K, T any] func(key K, obj T) int

// IndexCompare implements Comparator.
func (f ComparatorFunc[K, T]) IndexCompare(key K, obj T) int { return f(key, obj) }

// Source is the storage side of a search. It reads objects in index order
// relative to a position that lies between two objects: ReadNext returns the
// object after the position and ReadPrevious the one before it, each moving
// the position over the returned object.
//
// ok is false when there is nothing more in that direction.
type Source[T any] interface {
	ReadNext() (obj T, ok bool, err error)
	ReadPrevious() (obj T, ok bool, err error)
	// Clone returns an independent source at the same position.
	Clone() Source[T]
	Close() error
}

// Remover is implemented by sources of modifiable indices.
type Remover interface {
	// RemoveCurrent removes the object returned by the last read.
	RemoveCurrent() error
}

// BlockCounter is implemented by sources that read objects in blocks.
type BlockCounter interface {
	BlocksRead() int
}
