// Package resource limits the caller side of a distributed evaluation.
//
// The Controller manages three resource types:
//
//   - Partitions: bound the number of partitions evaluated at once and the
//     rate at which new partition evaluations are dispatched
//   - Memory: track and limit the bytes of decoded partial answers (non-blocking, fail-fast)
//   - IO: rate-limit reads of spooled partial answers
//
// # Partitions
//
//	rc := resource.NewController(resource.Config{
//	    MaxConcurrentPartitions: 4,
//	    PartitionsPerSecond:     100,
//	})
//
//	if err := rc.AcquirePartition(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleasePartition()
//
// # Memory
//
// AcquireMemory is non-blocking and returns ErrMemoryLimitExceeded
// immediately if the limit would be exceeded:
//
//	if err := rc.AcquireMemory(int64(len(payload))); err != nil {
//	    // caller decides retry/backoff
//	}
//	defer rc.ReleaseMemory(int64(len(payload)))
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
// This allows optional limits without nil checks everywhere.
package resource
