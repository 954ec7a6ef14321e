// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tegra

import (
	"sync/atomic"
	"time"

	"github.com/gogpu/tegra/stream"
)

// Fence is a reference-counted token for the work submitted up to one
// Context.Flush. The caller that receives it owns the first reference;
// the context keeps none, so a fence stays valid after its context is
// destroyed.
//
// A fence records that submission was attempted. Whether the work
// completed is observed with Wait, which needs the streams to report their
// submissions (see stream.Syncer) and the screen to be alive.
//
// Reference counting is safe for concurrent use.
type Fence struct {
	refs      atomic.Int32
	waiters   []stream.Waiter
	allocator Allocator
}

// newFence allocates a fence capturing the last submission of every
// channel.
func (c *Context) newFence() (*Fence, error) {
	a := c.screen.allocator
	if err := alloc(a, ObjectFence); err != nil {
		return nil, err
	}
	f := &Fence{allocator: a}
	f.refs.Store(1)
	for _, ch := range c.channels {
		if s, ok := ch.stream.(stream.Syncer); ok {
			if w := s.LastSubmit(); w != nil {
				f.waiters = append(f.waiters, w)
			}
		}
	}
	return f, nil
}

// RefCount returns the current reference count.
func (f *Fence) RefCount() int32 { return f.refs.Load() }

// Reference adds a reference.
func (f *Fence) Reference() {
	if f.refs.Add(1) <= 1 {
		panic("tegra: reference to a released fence")
	}
}

// Release drops a reference and reports whether it was the last one.
func (f *Fence) Release() bool {
	n := f.refs.Add(-1)
	switch {
	case n > 0:
		return false
	case n < 0:
		panic("tegra: fence released too many times")
	}
	f.waiters = nil
	f.allocator.Free(ObjectFence)
	return true
}

// Wait blocks until every engine reached the fence or the timeout elapsed.
// A zero timeout polls. A fence over streams that report no submissions is
// always signaled.
func (f *Fence) Wait(timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for _, w := range f.waiters {
		remaining := max(time.Until(deadline), 0)
		ok, err := w.Wait(remaining)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Signaled reports whether the fence has been reached, without blocking.
func (f *Fence) Signaled() bool {
	ok, err := f.Wait(0)
	return ok && err == nil
}
