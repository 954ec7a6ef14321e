// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/tegra"
	"github.com/gogpu/tegra/internal/halnoop"
	"github.com/gogpu/tegra/state"
	"github.com/gogpu/tegra/stream"
	"github.com/urfave/cli"
)

const fenceTimeout = time.Second

// failingFactory wraps a stream factory so that flushes of one class fail.
type failingFactory struct {
	stream.Factory
	class stream.Class
}

func (f failingFactory) CreateStream(class stream.Class, capacity int) (stream.Stream, error) {
	s, err := f.Factory.CreateStream(class, capacity)
	if err != nil || class != f.class {
		return s, err
	}
	return &failingStream{Stream: s}, nil
}

// failingStream keeps pushed words to itself and fails every flush. Like a
// real stream it drops the pending words on a failed flush.
type failingStream struct {
	stream.Stream
	pending int
}

func (s *failingStream) Push(words ...uint32) error {
	n := len(words) * stream.WordSize
	if s.pending+n > s.Cap() {
		return fmt.Errorf("%w: %d bytes pending, %d pushed, capacity %d", stream.ErrFull, s.pending, n, s.Cap())
	}
	s.pending += n
	return nil
}

func (s *failingStream) Len() int { return s.pending }

func (s *failingStream) Flush() error {
	s.pending = 0
	return stream.ErrIO
}

func (s *failingStream) LastSubmit() stream.Waiter {
	if sy, ok := s.Stream.(stream.Syncer); ok {
		return sy.LastSubmit()
	}
	return nil
}

func parseEngine(name string) (tegra.Engine, error) {
	for e := tegra.Engine2D; e < tegra.NumEngines; e++ {
		if e.String() == name {
			return e, nil
		}
	}
	return 0, fmt.Errorf("unknown engine %q", name)
}

func flushCommand(c *cli.Context) error {
	engine, err := parseEngine(c.String("engine"))
	if err != nil {
		return err
	}
	if n := c.Int("words"); n < 0 {
		return fmt.Errorf("invalid word count %d", n)
	}

	dev, err := halnoop.Open()
	if err != nil {
		return err
	}
	defer dev.Close()

	streams := stream.NewHALFactory(dev.Device, dev.Queue)
	defer streams.Destroy()

	var factory stream.Factory = streams
	if c.Bool("fail-2d") {
		factory = failingFactory{Factory: streams, class: stream.ClassGR2D}
	}

	screen, err := tegra.NewScreen(dev.Device, dev.Queue,
		tegra.WithStreamCapacity(c.Int("capacity")),
		tegra.WithStreamFactory(factory),
		tegra.WithStateInitializers(state.Defaults()...))
	if err != nil {
		return err
	}
	defer screen.Destroy()

	ctx, err := screen.NewContext("tegractl", 0)
	if err != nil {
		return err
	}
	defer ctx.Destroy()

	words := make([]uint32, c.Int("words"))
	for i := range words {
		words[i] = uint32(i)
	}

	for frame := range c.Int("frames") {
		ch := ctx.Channel(engine)
		if err := ch.Push(words...); err != nil {
			return fmt.Errorf("frame %d: push: %w", frame, err)
		}
		pending := ch.Pending()

		var fence *tegra.Fence
		flushErr := ctx.Flush(&fence, tegra.FlushEndOfFrame)
		if fence == nil {
			return fmt.Errorf("frame %d: no fence: %w", frame, flushErr)
		}
		ok, waitErr := fence.Wait(fenceTimeout)
		fence.Release()

		fmt.Fprintf(c.App.Writer, "frame %d: %s pushed %d bytes, fence signaled=%v\n", frame, engine, pending, ok)
		var ee *tegra.EngineError
		if errors.As(flushErr, &ee) {
			fmt.Fprintf(c.App.Writer, "frame %d: %s %s failed with code %d (ignored)\n", frame, ee.Engine, ee.Op, ee.Code)
		}
		if waitErr != nil {
			return fmt.Errorf("frame %d: wait: %w", frame, waitErr)
		}
	}
	return nil
}

func listEngines(c *cli.Context) error {
	for e := tegra.Engine2D; e < tegra.NumEngines; e++ {
		fmt.Fprintf(c.App.Writer, "%s\tclass %#x\n", e, uint32(e.Class()))
	}
	return nil
}
