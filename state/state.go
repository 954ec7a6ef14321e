// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package state provides the default state initializers of a tegra context:
// resource mapping, framebuffer surfaces, fixed-function state, blend,
// sampler, rasterizer, depth/stencil, vertex and fragment shader stages and
// vertex buffers.
//
// Each initializer binds its object into the context under a key and
// releases any device objects it created from Context.OnDestroy.
//
//	screen, err := tegra.NewScreen(device, queue,
//	    tegra.WithStateInitializers(state.Defaults()...))
//	...
//	blend, _ := state.BlendOf(ctx)
//	h := blend.Create(state.BlendState{...})
//	_ = blend.Bind(h)
package state

import (
	"github.com/gogpu/tegra"
)

// Context keys of the default initializers.
const (
	KeyResource      = "resource"
	KeySurface       = "surface"
	KeyFixedFunction = "state"
	KeyBlend         = "blend"
	KeySampler       = "sampler"
	KeyRasterizer    = "rasterizer"
	KeyDepthStencil  = "zsa"
	KeyVertexStage   = "vs"
	KeyFragmentStage = "fs"
	KeyVertexBuffers = "vbo"
)

// Defaults returns the default initializers in the order they must run.
func Defaults() []tegra.StateInitializer {
	return []tegra.StateInitializer{
		tegra.StateInitFunc(initResource),
		tegra.StateInitFunc(initSurface),
		tegra.StateInitFunc(initFixedFunction),
		tegra.StateInitFunc(initBlend),
		tegra.StateInitFunc(initSampler),
		tegra.StateInitFunc(initRasterizer),
		tegra.StateInitFunc(initDepthStencil),
		tegra.StateInitFunc(initVertexStage),
		tegra.StateInitFunc(initFragmentStage),
		tegra.StateInitFunc(initVertexBuffers),
	}
}

// lookup returns the value of type T bound under key.
func lookup[T any](ctx *tegra.Context, key string) (T, bool) {
	v, ok := ctx.Lookup(key)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// ResourcesOf returns the resource mapper of ctx.
func ResourcesOf(ctx *tegra.Context) (*Resources, bool) {
	return lookup[*Resources](ctx, KeyResource)
}

// SurfaceOf returns the framebuffer state of ctx.
func SurfaceOf(ctx *tegra.Context) (*Surface, bool) {
	return lookup[*Surface](ctx, KeySurface)
}

// FixedFunctionOf returns the fixed-function state of ctx.
func FixedFunctionOf(ctx *tegra.Context) (*FixedFunction, bool) {
	return lookup[*FixedFunction](ctx, KeyFixedFunction)
}

// BlendOf returns the blend state table of ctx.
func BlendOf(ctx *tegra.Context) (*Table[BlendState], bool) {
	return lookup[*Table[BlendState]](ctx, KeyBlend)
}

// SamplersOf returns the sampler table of ctx.
func SamplersOf(ctx *tegra.Context) (*Samplers, bool) {
	return lookup[*Samplers](ctx, KeySampler)
}

// RasterizerOf returns the rasterizer state table of ctx.
func RasterizerOf(ctx *tegra.Context) (*Table[RasterizerState], bool) {
	return lookup[*Table[RasterizerState]](ctx, KeyRasterizer)
}

// DepthStencilOf returns the depth/stencil state table of ctx.
func DepthStencilOf(ctx *tegra.Context) (*Table[DepthStencilState], bool) {
	return lookup[*Table[DepthStencilState]](ctx, KeyDepthStencil)
}

// VertexStageOf returns the vertex shader stage of ctx.
func VertexStageOf(ctx *tegra.Context) (*Stage, bool) {
	return lookup[*Stage](ctx, KeyVertexStage)
}

// FragmentStageOf returns the fragment shader stage of ctx.
func FragmentStageOf(ctx *tegra.Context) (*Stage, bool) {
	return lookup[*Stage](ctx, KeyFragmentStage)
}

// VertexBuffersOf returns the vertex buffer bindings of ctx.
func VertexBuffersOf(ctx *tegra.Context) (*VertexBuffers, bool) {
	return lookup[*VertexBuffers](ctx, KeyVertexBuffers)
}
