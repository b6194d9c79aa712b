package simsearch

import (
	"errors"
	"fmt"

	"github.com/hupe1980/simsearch/engine"
	"github.com/hupe1980/simsearch/transport"
)

var (
	// ErrNoPartitions is returned when a search runs on a Searcher without partitions.
	ErrNoPartitions = errors.New("no partitions")
	// ErrDuplicatePartition is returned when a partition ID is added twice.
	ErrDuplicatePartition = errors.New("duplicate partition")
	// ErrNoBlobStore is returned by Publish and Gather when no blob store is configured.
	ErrNoBlobStore = errors.New("no blob store configured")
)

// StorageError reports a failure to read candidates or exchange partial
// answers.
//
// The original underlying error can be accessed via errors.Unwrap.
type StorageError struct {
	// Op names the failed step, such as "evaluate" or "gather".
	Op string
	// Partition is set when the failure belongs to a single partition.
	Partition    uint32
	HasPartition bool
	cause        error
}

func (e *StorageError) Error() string {
	if e.HasPartition {
		return fmt.Sprintf("simsearch: %s partition %d: %v", e.Op, e.Partition, e.cause)
	}
	return fmt.Sprintf("simsearch: %s: %v", e.Op, e.cause)
}

func (e *StorageError) Unwrap() error { return e.cause }

func translateError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, engine.ErrNoPartitions) {
		return fmt.Errorf("%w: %w", ErrNoPartitions, err)
	}
	var pe *engine.PartitionError
	if errors.As(err, &pe) {
		return &StorageError{Op: op, Partition: pe.Partition, HasPartition: true, cause: err}
	}
	var de *transport.DecodeError
	if errors.As(err, &de) {
		return &StorageError{Op: op, cause: err}
	}

	return err
}
