// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package transfer provides the transfer-object allocator used for staging
// buffer and texture transfers.
//
// Allocation is two-level. A Pool is shared by every context of a screen
// and is safe for concurrent use. Each context derives a Child from it,
// which recycles transfers through a private free list without locking.
// A child must be destroyed before its parent.
package transfer

import (
	"errors"
	"fmt"
	"sync"
)

// Transfer pool errors.
var (
	// ErrPoolBusy is returned by Pool.Destroy while children remain.
	ErrPoolBusy = errors.New("transfer: pool has live children")

	// ErrPoolDestroyed is returned when deriving a child from a destroyed pool.
	ErrPoolDestroyed = errors.New("transfer: pool destroyed")

	// ErrChildDestroyed is returned when allocating from a destroyed child.
	ErrChildDestroyed = errors.New("transfer: child destroyed")

	// ErrExhausted is returned when the pool's item limit is reached.
	ErrExhausted = errors.New("transfer: pool exhausted")
)

// refillBatch is how many recycled items a child takes from its parent at once.
const refillBatch = 16

// Stats reports pool usage.
type Stats struct {
	// Children is the number of live children.
	Children int

	// Allocated is the number of transfers ever created.
	Allocated uint64

	// Live is the number of transfers currently handed out.
	Live int

	// Recycled is the number of transfers parked in the shared free list.
	Recycled int
}

// String returns a human-readable summary.
func (s Stats) String() string {
	return fmt.Sprintf("TransferPool[%d children, %d live, %d recycled, %d allocated]",
		s.Children, s.Live, s.Recycled, s.Allocated)
}

// Pool is the parent transfer allocator.
//
// Pool is safe for concurrent use.
type Pool struct {
	mu        sync.Mutex
	free      []*Transfer
	limit     int
	allocated uint64
	live      int
	children  int
	destroyed bool
}

// NewPool creates a parent pool. A positive limit caps the number of live
// transfers across all children; zero means unlimited.
func NewPool(limit int) *Pool {
	return &Pool{limit: limit}
}

// NewChild derives a child allocator.
func (p *Pool) NewChild() (*Child, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return nil, ErrPoolDestroyed
	}
	p.children++
	return &Child{parent: p}, nil
}

// Stats returns a snapshot of pool usage.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Children:  p.children,
		Allocated: p.allocated,
		Live:      p.live,
		Recycled:  len(p.free),
	}
}

// Destroy releases the shared free list. It fails with ErrPoolBusy while
// any child is alive. Destroying a destroyed pool has no effect.
func (p *Pool) Destroy() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return nil
	}
	if p.children > 0 {
		return fmt.Errorf("%w: %d", ErrPoolBusy, p.children)
	}
	p.destroyed = true
	p.free = nil
	return nil
}

// take moves up to n recycled transfers into dst, creating one new
// transfer if none are recycled.
func (p *Pool) take(dst []*Transfer, n int) ([]*Transfer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if k := len(p.free); k > 0 {
		if n > k {
			n = k
		}
		dst = append(dst, p.free[k-n:]...)
		clear(p.free[k-n:])
		p.free = p.free[:k-n]
		return dst, nil
	}
	if p.limit > 0 && p.live >= p.limit {
		return dst, ErrExhausted
	}
	p.allocated++
	return append(dst, &Transfer{}), nil
}

// give returns transfers to the shared free list.
func (p *Pool) give(ts []*Transfer) {
	p.mu.Lock()
	p.free = append(p.free, ts...)
	p.mu.Unlock()
}

func (p *Pool) addLive(n int) {
	p.mu.Lock()
	p.live += n
	p.mu.Unlock()
}

func (p *Pool) release(child *Child) {
	p.mu.Lock()
	p.children--
	p.free = append(p.free, child.free...)
	p.mu.Unlock()
}

// Child is a per-context transfer allocator.
//
// Child is not safe for concurrent use.
type Child struct {
	parent    *Pool
	free      []*Transfer
	live      int
	destroyed bool
}

// Alloc returns a zeroed transfer.
func (c *Child) Alloc() (*Transfer, error) {
	if c.destroyed {
		return nil, ErrChildDestroyed
	}
	if len(c.free) == 0 {
		var err error
		c.free, err = c.parent.take(c.free, refillBatch)
		if err != nil {
			return nil, err
		}
	}
	t := c.free[len(c.free)-1]
	c.free[len(c.free)-1] = nil
	c.free = c.free[:len(c.free)-1]

	*t = Transfer{owner: c}
	c.live++
	c.parent.addLive(1)
	return t, nil
}

// Free returns t to the allocator it came from. A transfer that outlives
// its child goes straight back to the parent.
func (c *Child) Free(t *Transfer) {
	if t == nil {
		return
	}
	owner := t.owner
	*t = Transfer{}
	if owner == nil {
		return
	}
	owner.parent.addLive(-1)
	if owner.destroyed {
		owner.parent.give([]*Transfer{t})
		return
	}
	owner.live--
	owner.free = append(owner.free, t)
}

// Live returns the number of transfers allocated from c and not yet freed.
func (c *Child) Live() int { return c.live }

// Destroy hands the child's free list back to the parent. Transfers still
// live are orphaned and return to the parent when freed.
// Destroying a destroyed child has no effect.
func (c *Child) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	c.parent.release(c)
	c.free = nil
}
