package index

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when a closed search is used.
	ErrClosed = errors.New("search is closed")

	// ErrNoCurrentObject is returned when the current object is requested
	// before the search was positioned, or after it was exhausted.
	ErrNoCurrentObject = errors.New("search has no current object")

	// ErrNotModifiable is returned by Remove on a read-only source.
	ErrNotModifiable = errors.New("search source is not modifiable")

	// ErrDuplicate is returned when an index rejects an object that is already stored.
	ErrDuplicate = errors.New("object already stored")

	// ErrSoftCapacity is returned when an object was stored above the soft capacity.
	ErrSoftCapacity = errors.New("soft capacity exceeded")

	// ErrHardCapacity is returned when an index is full.
	ErrHardCapacity = errors.New("hard capacity exceeded")

	// ErrDestroyed is returned by a destroyed index.
	ErrDestroyed = errors.New("index destroyed")
)

// StorageError wraps a failure of the underlying storage during traversal.
//
// The original underlying error can be accessed via errors.Unwrap.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
