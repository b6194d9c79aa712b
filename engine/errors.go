package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPartitions is returned when EvaluatePartitions gets no partitions.
	ErrNoPartitions = errors.New("no partitions")

	// ErrNotQuery is returned when a clone does not support evaluation.
	ErrNotQuery = errors.New("operation clone is not a query")
)

// PartitionError reports the failure of a single partition.
type PartitionError struct {
	Partition uint32
	Err       error
}

func (e *PartitionError) Error() string {
	return fmt.Sprintf("partition %d: %v", e.Partition, e.Err)
}

func (e *PartitionError) Unwrap() error { return e.Err }
