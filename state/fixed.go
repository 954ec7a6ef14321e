// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/tegra"
)

// Viewport is a viewport transform.
type Viewport struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}

// Scissor is a scissor rectangle in pixels.
type Scissor struct {
	X, Y, Width, Height uint32
}

// FixedFunction holds the non-object pipeline state of a context.
type FixedFunction struct {
	BlendColor gputypes.Color
	StencilRef uint32
	SampleMask uint32
	Viewport   Viewport
	Scissor    *Scissor // nil disables the scissor test
}

func initFixedFunction(ctx *tegra.Context) {
	ctx.Bind(KeyFixedFunction, &FixedFunction{
		SampleMask: 0xFFFFFFFF,
		Viewport:   Viewport{MaxDepth: 1},
	})
}

// SetViewportFor sets a viewport covering fb and disables the scissor.
func (f *FixedFunction) SetViewportFor(fb Framebuffer) {
	f.Viewport = Viewport{
		Width:    float32(fb.Width),
		Height:   float32(fb.Height),
		MaxDepth: 1,
	}
	f.Scissor = nil
}
