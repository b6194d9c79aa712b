package simsearch

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/simsearch/engine"
	"github.com/hupe1980/simsearch/object"
)

// chainIterator scans partitions one after another, opening each lazily.
type chainIterator struct {
	ctx    context.Context
	parts  []engine.Partition
	cur    object.Iterator
	blocks int
	size   int
	err    error
}

func newChainIterator(ctx context.Context, parts []engine.Partition) *chainIterator {
	size := 0
	for _, p := range parts {
		if p.Size <= 0 {
			size = 0
			break
		}
		size += p.Size
	}
	return &chainIterator{ctx: ctx, parts: parts, size: size}
}

func (c *chainIterator) Next() bool {
	for c.err == nil {
		if c.cur != nil {
			if c.cur.Next() {
				return true
			}
			c.err = c.closeCurrent()
			continue
		}
		if len(c.parts) == 0 {
			return false
		}
		if err := c.ctx.Err(); err != nil {
			c.err = err
			return false
		}
		p := c.parts[0]
		c.parts = c.parts[1:]
		it, err := p.Open(c.ctx)
		if err != nil {
			c.err = &engine.PartitionError{Partition: p.ID, Err: err}
			return false
		}
		c.cur = it
	}
	return false
}

func (c *chainIterator) Current() object.Object {
	if c.cur == nil {
		return nil
	}
	return c.cur.Current()
}

func (c *chainIterator) Err() error { return c.err }

// BlocksRead sums the blocks read by all partitions scanned so far.
func (c *chainIterator) BlocksRead() int {
	n := c.blocks
	if bc, ok := c.cur.(object.BlockCounter); ok {
		n += bc.BlocksRead()
	}
	return n
}

// Size is the total size of the chained partitions, 0 if any is unknown.
func (c *chainIterator) Size() int { return c.size }

func (c *chainIterator) closeCurrent() error {
	it := c.cur
	c.cur = nil
	if bc, ok := it.(object.BlockCounter); ok {
		c.blocks += bc.BlocksRead()
	}
	err := it.Err()
	if cl, ok := it.(io.Closer); ok {
		err = errors.Join(err, cl.Close())
	}
	return err
}

// Close releases the partition being scanned.
func (c *chainIterator) Close() error {
	if c.cur == nil {
		return nil
	}
	return c.closeCurrent()
}
