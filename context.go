// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tegra

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/tegra/transfer"
)

// Context is a rendering session. It owns one channel per engine, a child
// transfer pool and an upload service, and is the attachment point for
// state set up by StateInitializers.
//
// Context is NOT safe for concurrent use. A session is driven by one
// goroutine at a time.
type Context struct {
	screen *Screen
	tag    any
	flags  ContextFlags
	logger *slog.Logger

	// channels is indexed by Engine; index order is flush order.
	channels  [NumEngines]*Channel
	transfers *transfer.Child
	uploader  Uploader

	state     map[string]any
	cleanups  []func()
	destroyed bool
}

// unwind releases partially acquired resources in reverse order.
type unwind []func()

func (u *unwind) push(fn func()) { *u = append(*u, fn) }

func (u unwind) run() {
	for i := len(u) - 1; i >= 0; i-- {
		u[i]()
	}
}

// NewContext creates a context. tag is an opaque caller value returned by
// Context.Tag; flags are stored and otherwise ignored.
//
// Creation is all-or-nothing: on error the returned context is nil and
// everything acquired along the way has been released. Errors wrap
// ErrNoHostMemory, ErrUploader or ErrScreenDestroyed, or are an
// *EngineError carrying the stream's error code.
func (s *Screen) NewContext(tag any, flags ContextFlags) (_ *Context, err error) {
	log := s.logger
	log.Debug("tegra: create context", "screen", fmt.Sprintf("%p", s), "tag", tag, "flags", flags)

	if err := s.acquireContext(); err != nil {
		return nil, err
	}
	var undo unwind
	undo.push(s.releaseContext)
	defer func() {
		if err != nil {
			undo.run()
			log.Debug("tegra: create context failed", "err", err)
		}
	}()

	if err := alloc(s.allocator, ObjectContext); err != nil {
		return nil, err
	}
	undo.push(func() { s.allocator.Free(ObjectContext) })

	ctx := &Context{screen: s, tag: tag, flags: flags}
	ctx.logger = log.With("context", fmt.Sprintf("%p", ctx))

	for e := Engine2D; e < NumEngines; e++ {
		ch, err := newChannel(ctx, e)
		if err != nil {
			return nil, err
		}
		ctx.channels[e] = ch
		undo.push(ch.destroy)
	}

	child, err := s.transfers.NewChild()
	if err != nil {
		return nil, fmt.Errorf("tegra: derive transfer pool: %w", err)
	}
	ctx.transfers = child
	undo.push(child.Destroy)

	up, err := s.uploaders(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploader, err)
	}
	if up == nil {
		return nil, ErrUploader
	}
	ctx.uploader = up
	undo.push(up.Destroy)

	for _, si := range s.initializers {
		si.InitState(ctx)
	}

	ctx.logger.Debug("tegra: context created")
	return ctx, nil
}

// Screen returns the screen that created the context.
func (c *Context) Screen() *Screen { return c.screen }

// Tag returns the caller value passed to NewContext.
func (c *Context) Tag() any { return c.tag }

// Flags returns the creation flags.
func (c *Context) Flags() ContextFlags { return c.flags }

// Logger returns the context's logger.
func (c *Context) Logger() *slog.Logger { return c.logger }

// Channel returns the channel of engine e, or nil for an invalid engine or
// a destroyed context.
func (c *Context) Channel(e Engine) *Channel {
	if !e.Valid() {
		return nil
	}
	return c.channels[e]
}

// TransferPool returns the context's transfer allocator.
func (c *Context) TransferPool() *transfer.Child { return c.transfers }

// StreamUploader returns the upload service for vertex and index data.
func (c *Context) StreamUploader() Uploader { return c.uploader }

// ConstUploader returns the upload service for constant data. It is the
// same object as StreamUploader.
func (c *Context) ConstUploader() Uploader { return c.uploader }

// Flush submits the pending commands of the 2D engine and then of the 3D
// engine. Both engines are always flushed, whether or not they have pending
// commands and whether or not the other one failed.
//
// If fence is non-nil a new Fence with a reference count of 1 is stored in
// *fence and the caller owns it. The fence means the work was handed to the
// device, not that the submission succeeded: it is issued even when a
// stream flush fails. If the fence record cannot be allocated, *fence is
// left untouched.
//
// flags are accepted and ignored.
//
// The returned error is nil or joins non-fatal diagnostics: an *EngineError
// per failed stream flush and the fence allocation failure, if any. It does
// not mean that any part of the flush was skipped. ErrContextDestroyed is
// returned, and nothing is done, after Destroy.
func (c *Context) Flush(fence **Fence, flags FlushFlags) error {
	if c.destroyed {
		return ErrContextDestroyed
	}
	c.logger.Debug("tegra: flush", "fence", fence != nil, "flags", flags)

	var errs []error
	for _, ch := range c.channels {
		if err := ch.flush(); err != nil {
			errs = append(errs, err)
		}
	}

	if fence != nil {
		f, err := c.newFence()
		if err != nil {
			c.logger.Warn("tegra: fence allocation failed", "err", err)
			errs = append(errs, err)
		} else {
			*fence = f
		}
	}

	err := errors.Join(errs...)
	c.logger.Debug("tegra: flush done", "err", err)
	return err
}

// Destroy releases the context: state cleanups in reverse registration
// order, the transfer pool, the upload service, the 3D channel and the 2D
// channel. Pending commands are discarded; call Flush first if they
// matter. Fences returned earlier stay valid.
//
// Destroying a destroyed context has no effect.
func (c *Context) Destroy() {
	if c.destroyed {
		c.logger.Warn("tegra: context already destroyed")
		return
	}
	c.logger.Debug("tegra: destroy context")
	c.destroyed = true

	for i := len(c.cleanups) - 1; i >= 0; i-- {
		c.cleanups[i]()
	}
	c.cleanups = nil
	c.state = nil

	c.transfers.Destroy()
	c.uploader.Destroy()
	for e := NumEngines - 1; e >= 0; e-- {
		c.channels[e].destroy()
		c.channels[e] = nil
	}

	c.screen.allocator.Free(ObjectContext)
	c.screen.releaseContext()
	c.logger.Debug("tegra: context destroyed")
}
