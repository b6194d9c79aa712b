package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MaxConcurrentPartitions is the maximum number of partitions evaluated
	// at the same time. If 0, defaults to 1.
	MaxConcurrentPartitions int64

	// PartitionsPerSecond limits how fast partition evaluations are
	// dispatched. If 0, unlimited.
	PartitionsPerSecond float64

	// MemoryLimitBytes is the hard limit for decoded partial answers held at
	// the same time. If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// IOLimitBytesPerSec is the maximum throughput for reading spooled
	// partial answers. If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages the limits of a caller-side evaluation.
type Controller struct {
	cfg Config

	// Partitions
	partSem  *semaphore.Weighted
	dispatch *rate.Limiter // nil if unlimited

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// IO
	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentPartitions <= 0 {
		cfg.MaxConcurrentPartitions = 1
	}

	c := &Controller{
		cfg:     cfg,
		partSem: semaphore.NewWeighted(cfg.MaxConcurrentPartitions),
	}

	if cfg.PartitionsPerSecond > 0 {
		c.dispatch = rate.NewLimiter(rate.Limit(cfg.PartitionsPerSecond), 1)
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// MaxConcurrentPartitions returns the configured partition concurrency.
func (c *Controller) MaxConcurrentPartitions() int {
	if c == nil {
		return 1
	}
	return int(c.cfg.MaxConcurrentPartitions)
}

// AcquirePartition waits for the dispatch rate and reserves a partition
// slot. Blocks if all slots are busy.
func (c *Controller) AcquirePartition(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.dispatch != nil {
		if err := c.dispatch.Wait(ctx); err != nil {
			return err
		}
	}
	return c.partSem.Acquire(ctx, 1)
}

// TryAcquirePartition attempts to reserve a partition slot without blocking.
// The dispatch rate is not consulted.
func (c *Controller) TryAcquirePartition() bool {
	if c == nil {
		return true
	}
	return c.partSem.TryAcquire(1)
}

// ReleasePartition releases a partition slot.
func (c *Controller) ReleasePartition() {
	if c == nil {
		return
	}
	c.partSem.Release(1)
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	if burst := c.ioLimiter.Burst(); bytes > burst {
		bytes = burst
	}
	return c.ioLimiter.WaitN(ctx, bytes)
}

// TryAcquireIO attempts to acquire IO tokens without blocking.
// Returns true if tokens were acquired, false otherwise.
func (c *Controller) TryAcquireIO(bytes int) bool {
	if c == nil || c.ioLimiter == nil {
		return true
	}
	return c.ioLimiter.AllowN(time.Now(), bytes)
}
