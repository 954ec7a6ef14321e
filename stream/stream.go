// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package stream provides command streams: append-only buffers of 32-bit
// hardware command words with a fixed byte capacity.
//
// A stream is owned by exactly one channel. Words are pushed during
// recording and handed to the device by Flush, which resets the write
// position so the same backing storage serves every flush cycle.
//
// The default implementation, [HALFactory], submits through a gogpu/wgpu
// hal.Queue and tracks completion with one hal.Fence per engine class,
// the equivalent of a host1x syncpoint.
package stream

import (
	"fmt"
	"time"
)

// WordSize is the size of one command word in bytes.
const WordSize = 4

// Class identifies a host1x engine class.
type Class uint32

// Engine classes of the host1x bus.
const (
	// ClassGR2D is the 2D blit engine.
	ClassGR2D Class = 0x51

	// ClassGR3D is the 3D rendering engine.
	ClassGR3D Class = 0x60
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassGR2D:
		return "gr2d"
	case ClassGR3D:
		return "gr3d"
	default:
		return fmt.Sprintf("Class(%#x)", uint32(c))
	}
}

// Stream is an append-only command buffer bound to a fixed capacity.
//
// Implementations are not safe for concurrent use.
type Stream interface {
	// Push appends command words. It fails with ErrFull, without writing
	// anything, when the words do not fit in the remaining capacity.
	Push(words ...uint32) error

	// Len returns the number of pending bytes.
	Len() int

	// Cap returns the capacity in bytes.
	Cap() int

	// Flush submits the pending words and resets the write position.
	// Flushing an empty stream is a no-op that returns nil.
	Flush() error

	// Destroy releases the backing storage. Pending words are discarded.
	// Destroying a destroyed stream has no effect.
	Destroy()
}

// Factory creates streams.
type Factory interface {
	CreateStream(class Class, capacity int) (Stream, error)
}

// Waiter waits for a submission to complete.
type Waiter interface {
	// Wait blocks until the submission completes or the timeout elapses.
	// A zero timeout polls.
	Wait(timeout time.Duration) (bool, error)
}

// Syncer is implemented by streams that can report the completion point
// of their most recent submission. LastSubmit returns nil when nothing
// has been submitted yet.
type Syncer interface {
	LastSubmit() Waiter
}
