// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tegra

import (
	"fmt"

	"github.com/gogpu/tegra/stream"
)

// Channel binds one engine to the command stream it owns exclusively.
type Channel struct {
	ctx    *Context
	engine Engine
	stream stream.Stream
}

// newChannel creates the channel of engine e for ctx. On failure nothing
// stays allocated.
func newChannel(ctx *Context, e Engine) (*Channel, error) {
	s := ctx.screen
	ctx.logger.Debug("tegra: create channel", "engine", e, "class", e.Class(), "capacity", s.capacity)

	if err := alloc(s.allocator, ObjectChannel); err != nil {
		return nil, err
	}
	st, err := s.streams.CreateStream(e.Class(), s.capacity)
	if err != nil {
		s.allocator.Free(ObjectChannel)
		ee := newEngineError(e, "create", err)
		ctx.logger.Warn("tegra: stream creation failed", "engine", e, "code", ee.Code, "err", err)
		return nil, ee
	}

	ch := &Channel{ctx: ctx, engine: e, stream: st}
	ctx.logger.Debug("tegra: channel created", "engine", e, "channel", fmt.Sprintf("%p", ch))
	return ch, nil
}

// Engine returns the channel's engine.
func (ch *Channel) Engine() Engine { return ch.engine }

// Context returns the owning context.
func (ch *Channel) Context() *Context { return ch.ctx }

// Push appends command words to the channel's stream.
// It fails with stream.ErrFull when the stream has no room left.
func (ch *Channel) Push(words ...uint32) error {
	if ch.ctx.destroyed {
		return ErrContextDestroyed
	}
	return ch.stream.Push(words...)
}

// Pending returns the number of bytes waiting for the next flush.
func (ch *Channel) Pending() int { return ch.stream.Len() }

// Capacity returns the byte capacity of the channel's stream.
func (ch *Channel) Capacity() int { return ch.stream.Cap() }

// flush submits the stream. A failure is logged and returned as an
// *EngineError for the context to report; it is never retried.
func (ch *Channel) flush() error {
	log := ch.ctx.logger
	log.Debug("tegra: flush channel", "engine", ch.engine, "pending", ch.stream.Len())

	if err := ch.stream.Flush(); err != nil {
		ee := newEngineError(ch.engine, "flush", err)
		log.Warn("tegra: stream flush failed", "engine", ch.engine, "code", ee.Code, "err", err)
		return ee
	}
	return nil
}

// destroy releases the stream, discarding unflushed commands.
func (ch *Channel) destroy() {
	ch.ctx.logger.Debug("tegra: destroy channel", "engine", ch.engine, "discarded", ch.stream.Len())
	ch.stream.Destroy()
	ch.ctx.screen.allocator.Free(ObjectChannel)
}
