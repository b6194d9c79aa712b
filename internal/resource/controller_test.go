package resource

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(50))
	assert.Equal(t, int64(50), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	// limit exceeded
	err := c.AcquireMemory(20)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, int64(90), c.MemoryUsage())

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(20))
	assert.Equal(t, int64(60), c.MemoryUsage())
	assert.Equal(t, int64(100), c.MemoryLimit())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMemory(1000))
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_Partitions(t *testing.T) {
	c := NewController(Config{MaxConcurrentPartitions: 2})
	assert.Equal(t, 2, c.MaxConcurrentPartitions())

	require.NoError(t, c.AcquirePartition(t.Context()))
	require.NoError(t, c.AcquirePartition(t.Context()))
	assert.False(t, c.TryAcquirePartition())

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquirePartition(ctx), context.DeadlineExceeded)

	c.ReleasePartition()
	assert.True(t, c.TryAcquirePartition())
}

func TestController_DispatchRate(t *testing.T) {
	c := NewController(Config{MaxConcurrentPartitions: 10, PartitionsPerSecond: 1})

	require.NoError(t, c.AcquirePartition(t.Context()))

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquirePartition(ctx))
}

func TestController_NilChecks(t *testing.T) {
	var c *Controller
	assert.NoError(t, c.AcquirePartition(t.Context()))
	assert.True(t, c.TryAcquirePartition())
	c.ReleasePartition()
	assert.NoError(t, c.AcquireMemory(10))
	c.ReleaseMemory(10)
	assert.NoError(t, c.AcquireIO(t.Context(), 10))
	assert.True(t, c.TryAcquireIO(10))
	assert.Equal(t, 1, c.MaxConcurrentPartitions())
}

func TestRateLimitedReader(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	data := bytes.Repeat([]byte("x"), 4096)

	r := NewRateLimitedReader(t.Context(), bytes.NewReader(data), c)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}
