// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/tegra"
	"github.com/gogpu/wgpu/hal"
)

// BlendState is the color output state of every render target.
type BlendState struct {
	Targets []gputypes.ColorTargetState
}

// RasterizerState is primitive assembly and rasterization state.
type RasterizerState struct {
	Primitive   gputypes.PrimitiveState
	Multisample gputypes.MultisampleState
}

// DepthStencilState is depth and stencil test state.
type DepthStencilState = hal.DepthStencilState

// Default objects created and bound by the initializers. Each table's
// first handle names its default.
const DefaultHandle Handle = 1

// DefaultBlend returns premultiplied alpha blending into one BGRA target.
func DefaultBlend() BlendState {
	premulBlend := gputypes.BlendStatePremultiplied()
	return BlendState{Targets: []gputypes.ColorTargetState{{
		Format:    gputypes.TextureFormatBGRA8Unorm,
		Blend:     &premulBlend,
		WriteMask: gputypes.ColorWriteMaskAll,
	}}}
}

// DefaultRasterizer returns triangle lists without culling, single-sampled.
func DefaultRasterizer() RasterizerState {
	return RasterizerState{
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
}

// DefaultDepthStencil returns state with depth and stencil tests passing
// and no writes.
func DefaultDepthStencil() DepthStencilState {
	keep := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
	return DepthStencilState{
		Format:            gputypes.TextureFormatDepth24PlusStencil8,
		DepthWriteEnabled: false,
		DepthCompare:      gputypes.CompareFunctionAlways,
		StencilFront:      keep,
		StencilBack:       keep,
		StencilReadMask:   0xFF,
		StencilWriteMask:  0xFF,
	}
}

// bindDefault creates v in a new table, binds it and stores the table
// under key.
func bindDefault[T any](ctx *tegra.Context, key string, v T) {
	t := NewTable[T](key)
	_ = t.Bind(t.Create(v))
	ctx.Bind(key, t)
}

func initBlend(ctx *tegra.Context) {
	bindDefault(ctx, KeyBlend, DefaultBlend())
}

func initRasterizer(ctx *tegra.Context) {
	bindDefault(ctx, KeyRasterizer, DefaultRasterizer())
}

func initDepthStencil(ctx *tegra.Context) {
	bindDefault(ctx, KeyDepthStencil, DefaultDepthStencil())
}

// Sampler is a device sampler and the descriptor it was created from.
type Sampler struct {
	Desc    hal.SamplerDescriptor
	Sampler hal.Sampler
}

// Samplers is the sampler table of a context. Samplers are device objects;
// they are destroyed with the context.
type Samplers struct {
	*Table[*Sampler]
	device hal.Device
}

// DefaultSamplerDescriptor returns a linear clamp-to-edge sampler.
func DefaultSamplerDescriptor() hal.SamplerDescriptor {
	return hal.SamplerDescriptor{
		Label:        "tegra_default_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	}
}

func initSampler(ctx *tegra.Context) {
	s := &Samplers{
		Table:  NewTable[*Sampler](KeySampler),
		device: ctx.Screen().Device(),
	}
	ctx.Bind(KeySampler, s)
	ctx.OnDestroy(s.destroyAll)

	h, err := s.Create(DefaultSamplerDescriptor())
	if err != nil {
		ctx.Logger().Warn("state: default sampler unavailable", "err", err)
		return
	}
	_ = s.Bind(h)
}

// Create creates a device sampler from desc.
func (s *Samplers) Create(desc hal.SamplerDescriptor) (Handle, error) {
	smp, err := s.device.CreateSampler(&desc)
	if err != nil {
		return 0, fmt.Errorf("state: create sampler %q: %w", desc.Label, err)
	}
	return s.Table.Create(&Sampler{Desc: desc, Sampler: smp}), nil
}

// Delete destroys the sampler named by h.
func (s *Samplers) Delete(h Handle) bool {
	smp, ok := s.Table.Delete(h)
	if ok {
		s.device.DestroySampler(smp.Sampler)
	}
	return ok
}

func (s *Samplers) destroyAll() {
	s.Each(func(_ Handle, smp *Sampler) {
		s.device.DestroySampler(smp.Sampler)
	})
	s.Clear()
}
