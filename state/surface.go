// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/tegra"
)

// MaxColorTargets is the number of color attachments of a framebuffer.
const MaxColorTargets = 8

var (
	// ErrTooManyTargets is returned for more than MaxColorTargets color targets.
	ErrTooManyTargets = errors.New("state: too many color targets")

	// ErrNotDepthFormat is returned when the depth target has a color format.
	ErrNotDepthFormat = errors.New("state: depth target has no depth format")

	// ErrEmptyFramebuffer is returned for a framebuffer with a zero size.
	ErrEmptyFramebuffer = errors.New("state: framebuffer has zero size")
)

// Framebuffer describes the bound render targets.
type Framebuffer struct {
	Width, Height uint32
	Colors        []gputypes.TextureFormat
	Depth         gputypes.TextureFormat // TextureFormatUndefined for none
}

// Surface holds the framebuffer state of a context.
type Surface struct {
	fb Framebuffer
}

func initSurface(ctx *tegra.Context) {
	ctx.Bind(KeySurface, &Surface{})
}

// SetFramebuffer validates and binds fb.
func (s *Surface) SetFramebuffer(fb Framebuffer) error {
	if fb.Width == 0 || fb.Height == 0 {
		return ErrEmptyFramebuffer
	}
	if len(fb.Colors) > MaxColorTargets {
		return fmt.Errorf("%w: %d", ErrTooManyTargets, len(fb.Colors))
	}
	if fb.Depth != gputypes.TextureFormatUndefined && !isDepthFormat(fb.Depth) {
		return fmt.Errorf("%w: %v", ErrNotDepthFormat, fb.Depth)
	}
	fb.Colors = append([]gputypes.TextureFormat(nil), fb.Colors...)
	s.fb = fb
	return nil
}

// Framebuffer returns the bound framebuffer. The zero value means none.
func (s *Surface) Framebuffer() Framebuffer { return s.fb }

func isDepthFormat(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatDepth16Unorm,
		gputypes.TextureFormatDepth24Plus,
		gputypes.TextureFormatDepth24PlusStencil8,
		gputypes.TextureFormatDepth32Float,
		gputypes.TextureFormatDepth32FloatStencil8,
		gputypes.TextureFormatStencil8:
		return true
	}
	return false
}
