// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/tegra"
	"github.com/gogpu/wgpu/hal"
)

// MaxVertexBuffers is the number of vertex buffer slots.
const MaxVertexBuffers = 16

// ErrSlot is returned for a vertex buffer slot out of range.
var ErrSlot = errors.New("state: vertex buffer slot out of range")

// VertexBinding is a buffer bound to one vertex slot.
type VertexBinding struct {
	Buffer hal.Buffer
	Offset uint64
}

// VertexBuffers holds vertex layouts and the buffers bound to each slot.
type VertexBuffers struct {
	// Layouts is the table of vertex element layouts. Its default is a
	// float2 position with a float4 color.
	Layouts *Table[[]gputypes.VertexBufferLayout]

	slots [MaxVertexBuffers]VertexBinding
}

// DefaultVertexLayout matches the passthrough vertex shader.
func DefaultVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: 24,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x4, Offset: 8, ShaderLocation: 1}, // color
			},
		},
	}
}

func initVertexBuffers(ctx *tegra.Context) {
	vb := &VertexBuffers{Layouts: NewTable[[]gputypes.VertexBufferLayout](KeyVertexBuffers)}
	_ = vb.Layouts.Bind(vb.Layouts.Create(DefaultVertexLayout()))
	ctx.Bind(KeyVertexBuffers, vb)
}

// Set binds bindings to consecutive slots starting at first.
func (vb *VertexBuffers) Set(first int, bindings ...VertexBinding) error {
	if first < 0 || first+len(bindings) > MaxVertexBuffers {
		return fmt.Errorf("%w: %d+%d", ErrSlot, first, len(bindings))
	}
	copy(vb.slots[first:], bindings)
	return nil
}

// Upload uploads data through the context's stream uploader and binds the
// result to slot.
func (vb *VertexBuffers) Upload(ctx *tegra.Context, slot int, data []byte) error {
	if slot < 0 || slot >= MaxVertexBuffers {
		return fmt.Errorf("%w: %d", ErrSlot, slot)
	}
	buf, off, err := ctx.StreamUploader().Upload(data, uploadAlignment)
	if err != nil {
		return fmt.Errorf("state: vertex upload: %w", err)
	}
	vb.slots[slot] = VertexBinding{Buffer: buf, Offset: off}
	return nil
}

// Slot returns the binding of slot. The zero VertexBinding means none.
func (vb *VertexBuffers) Slot(slot int) VertexBinding {
	if slot < 0 || slot >= MaxVertexBuffers {
		return VertexBinding{}
	}
	return vb.slots[slot]
}

// Bound returns the number of slots with a buffer.
func (vb *VertexBuffers) Bound() int {
	n := 0
	for _, b := range vb.slots {
		if b.Buffer != nil {
			n++
		}
	}
	return n
}
