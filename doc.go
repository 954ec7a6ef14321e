// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package tegra is the per-session control layer of a driver for a
// host1x-style GPU with two independent command engines: a 2D blit engine
// and a 3D rendering engine.
//
// # Overview
//
// A [Screen] wraps a gogpu/wgpu hal.Device and hal.Queue and creates
// rendering sessions. Each [Context] owns:
//   - one [Channel] per engine, each with an exclusively owned command stream
//   - a child transfer pool derived from the screen's parent pool
//   - one upload service, used for both streaming and constant data
//
// Commands are pushed into channels and submitted by [Context.Flush],
// which always flushes the 2D engine before the 3D engine and can hand
// back a reference-counted [Fence].
//
// # Quick Start
//
//	screen, err := tegra.NewScreen(device, queue,
//	    tegra.WithStateInitializers(state.Defaults()...))
//	if err != nil {
//	    return err
//	}
//	defer screen.Destroy()
//
//	ctx, err := screen.NewContext(nil, 0)
//	if err != nil {
//	    return err
//	}
//	defer ctx.Destroy()
//
//	_ = ctx.Channel(tegra.Engine2D).Push(words...)
//
//	var fence *tegra.Fence
//	if err := ctx.Flush(&fence, tegra.FlushEndOfFrame); err != nil {
//	    log.Printf("flush: %v", err) // non-fatal, both engines were flushed
//	}
//	defer fence.Release()
//
// # Error Handling
//
// Context creation is all-or-nothing. Flush never aborts: stream failures
// are returned as joined, non-fatal [*EngineError] values next to the
// fence.
//
// # Logging
//
// All diagnostics go through log/slog. Output is disabled by default; see
// [SetLogger] and [WithLogger].
package tegra

// Version is the current version of the module.
const Version = "0.1.0"
