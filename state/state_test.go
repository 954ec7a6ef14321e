// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/tegra"
	"github.com/gogpu/tegra/internal/halnoop"
	"github.com/gogpu/tegra/transfer"
)

var allKeys = []string{
	KeyResource, KeySurface, KeyFixedFunction, KeyBlend, KeySampler,
	KeyRasterizer, KeyDepthStencil, KeyVertexStage, KeyFragmentStage, KeyVertexBuffers,
}

// createContext returns a context on a noop device with inits installed.
func createContext(t *testing.T, inits ...tegra.StateInitializer) *tegra.Context {
	t.Helper()
	dev, err := halnoop.Open()
	if err != nil {
		t.Fatalf("halnoop.Open failed: %v", err)
	}
	t.Cleanup(dev.Close)

	screen, err := tegra.NewScreen(dev.Device, dev.Queue, tegra.WithStateInitializers(inits...))
	if err != nil {
		t.Fatalf("NewScreen failed: %v", err)
	}
	ctx, err := screen.NewContext(nil, 0)
	if err != nil {
		t.Fatalf("NewContext failed: %v", err)
	}
	t.Cleanup(func() {
		ctx.Destroy()
		if err := screen.Destroy(); err != nil {
			t.Errorf("screen Destroy failed: %v", err)
		}
	})
	return ctx
}

func TestDefaultsOrder(t *testing.T) {
	defaults := Defaults()
	if len(defaults) != len(allKeys) {
		t.Fatalf("Defaults() has %d initializers, want %d", len(defaults), len(allKeys))
	}

	var order []string
	wrapped := make([]tegra.StateInitializer, len(defaults))
	for i, si := range defaults {
		wrapped[i] = tegra.StateInitFunc(func(ctx *tegra.Context) {
			si.InitState(ctx)
			for _, k := range allKeys {
				if _, ok := ctx.Lookup(k); ok && !slices.Contains(order, k) {
					order = append(order, k)
				}
			}
		})
	}
	createContext(t, wrapped...)

	if !slices.Equal(order, allKeys) {
		t.Errorf("initialization order = %v, want %v", order, allKeys)
	}
}

func TestDefaultsBound(t *testing.T) {
	ctx := createContext(t, Defaults()...)

	if _, ok := ResourcesOf(ctx); !ok {
		t.Error("ResourcesOf failed")
	}
	if _, ok := SurfaceOf(ctx); !ok {
		t.Error("SurfaceOf failed")
	}
	ff, ok := FixedFunctionOf(ctx)
	if !ok || ff.SampleMask != 0xFFFFFFFF || ff.Viewport.MaxDepth != 1 {
		t.Errorf("FixedFunctionOf = %+v, %v", ff, ok)
	}
	blend, ok := BlendOf(ctx)
	if !ok {
		t.Fatal("BlendOf failed")
	}
	if b, h, ok := blend.Bound(); !ok || h != DefaultHandle || len(b.Targets) != 1 {
		t.Errorf("default blend = %+v, %d, %v", b, h, ok)
	}
	rast, ok := RasterizerOf(ctx)
	if !ok {
		t.Fatal("RasterizerOf failed")
	}
	if r, _, _ := rast.Bound(); r.Primitive.Topology != gputypes.PrimitiveTopologyTriangleList {
		t.Errorf("default topology = %v", r.Primitive.Topology)
	}
	zsa, ok := DepthStencilOf(ctx)
	if !ok {
		t.Fatal("DepthStencilOf failed")
	}
	if z, _, _ := zsa.Bound(); z.DepthWriteEnabled || z.DepthCompare != gputypes.CompareFunctionAlways {
		t.Errorf("default depth/stencil = %+v", z)
	}
	smp, ok := SamplersOf(ctx)
	if !ok {
		t.Fatal("SamplersOf failed")
	}
	if _, h, ok := smp.Bound(); !ok || h != DefaultHandle {
		t.Errorf("default sampler not bound")
	}
	for _, get := range []func(*tegra.Context) (*Stage, bool){VertexStageOf, FragmentStageOf} {
		st, ok := get(ctx)
		if !ok {
			t.Fatal("stage lookup failed")
		}
		sh, _, ok := st.Bound()
		if !ok || sh.Module == nil {
			t.Errorf("%s: default shader not bound", st.Kind())
		}
	}
	vb, ok := VertexBuffersOf(ctx)
	if !ok {
		t.Fatal("VertexBuffersOf failed")
	}
	if l, _, ok := vb.Layouts.Bound(); !ok || l[0].ArrayStride != 24 {
		t.Errorf("default vertex layout = %+v", l)
	}
}

func TestLookupWithoutInitializers(t *testing.T) {
	ctx := createContext(t)
	if _, ok := BlendOf(ctx); ok {
		t.Error("BlendOf should fail without initializers")
	}
}

func TestDeviceObjectsReleasedOnDestroy(t *testing.T) {
	dev, err := halnoop.Open()
	if err != nil {
		t.Fatalf("halnoop.Open failed: %v", err)
	}
	defer dev.Close()

	screen, err := tegra.NewScreen(dev.Device, dev.Queue, tegra.WithStateInitializers(Defaults()...))
	if err != nil {
		t.Fatalf("NewScreen failed: %v", err)
	}
	ctx, err := screen.NewContext(nil, 0)
	if err != nil {
		t.Fatalf("NewContext failed: %v", err)
	}
	smp, _ := SamplersOf(ctx)
	vs, _ := VertexStageOf(ctx)
	if _, err := smp.Create(DefaultSamplerDescriptor()); err != nil {
		t.Fatalf("Create sampler failed: %v", err)
	}

	ctx.Destroy()
	if smp.Len() != 0 || vs.Len() != 0 {
		t.Errorf("after Destroy: %d samplers, %d vertex shaders; want 0", smp.Len(), vs.Len())
	}
	if err := screen.Destroy(); err != nil {
		t.Errorf("screen Destroy failed: %v", err)
	}
}

func TestResourcesMapUnmap(t *testing.T) {
	ctx := createContext(t, Defaults()...)
	res, _ := ResourcesOf(ctx)

	box := transfer.Box{Width: 16, Height: 4, Depth: 2}
	tr, err := res.Map("texture", 1, transfer.MapWrite, box, 64)
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	if len(tr.Data) != 64*4*2 || tr.LayerStride != 256 || tr.Level != 1 {
		t.Errorf("transfer = {len %d, layer %d, level %d}", len(tr.Data), tr.LayerStride, tr.Level)
	}
	if res.Mapped() != 1 || ctx.TransferPool().Live() != 1 {
		t.Errorf("Mapped() = %d, Live() = %d; want 1, 1", res.Mapped(), ctx.TransferPool().Live())
	}

	buf, _, err := res.Unmap(tr)
	if err != nil {
		t.Fatalf("Unmap failed: %v", err)
	}
	if buf == nil {
		t.Error("Unmap of a write transfer should return the upload buffer")
	}
	if res.Mapped() != 0 || ctx.TransferPool().Live() != 0 {
		t.Errorf("Mapped() = %d, Live() = %d; want 0, 0", res.Mapped(), ctx.TransferPool().Live())
	}

	tr, err = res.Map("texture", 0, transfer.MapRead, transfer.Box{Width: 1, Height: 1}, 4)
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	if buf, _, err := res.Unmap(tr); err != nil || buf != nil {
		t.Errorf("Unmap of a read transfer = %v, %v; want nil, nil", buf, err)
	}
}

func TestResourcesBadBox(t *testing.T) {
	ctx := createContext(t, Defaults()...)
	res, _ := ResourcesOf(ctx)

	for _, box := range []transfer.Box{{}, {Width: 1}, {Width: 1, Height: 1, Depth: -1}} {
		if _, err := res.Map(nil, 0, transfer.MapRead, box, 4); !errors.Is(err, ErrBadBox) {
			t.Errorf("Map(%+v) = %v, want ErrBadBox", box, err)
		}
	}
}

func TestSurfaceSetFramebuffer(t *testing.T) {
	tests := []struct {
		name    string
		fb      Framebuffer
		wantErr error
	}{
		{"color only", Framebuffer{Width: 64, Height: 64, Colors: []gputypes.TextureFormat{gputypes.TextureFormatBGRA8Unorm}}, nil},
		{"with depth", Framebuffer{Width: 8, Height: 8, Depth: gputypes.TextureFormatDepth24PlusStencil8}, nil},
		{"zero size", Framebuffer{Width: 0, Height: 8}, ErrEmptyFramebuffer},
		{"color as depth", Framebuffer{Width: 8, Height: 8, Depth: gputypes.TextureFormatRGBA8Unorm}, ErrNotDepthFormat},
		{"too many targets", Framebuffer{Width: 8, Height: 8, Colors: make([]gputypes.TextureFormat, MaxColorTargets+1)}, ErrTooManyTargets},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Surface{}
			err := s.SetFramebuffer(tt.fb)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SetFramebuffer() = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && s.Framebuffer().Width != tt.fb.Width {
				t.Error("framebuffer not bound")
			}
			if tt.wantErr != nil && s.Framebuffer().Width != 0 {
				t.Error("rejected framebuffer was bound")
			}
		})
	}
}

func TestFixedFunctionViewport(t *testing.T) {
	ff := &FixedFunction{Scissor: &Scissor{Width: 1, Height: 1}}
	ff.SetViewportFor(Framebuffer{Width: 640, Height: 480})

	if ff.Viewport.Width != 640 || ff.Viewport.Height != 480 || ff.Viewport.MaxDepth != 1 {
		t.Errorf("Viewport = %+v", ff.Viewport)
	}
	if ff.Scissor != nil {
		t.Error("SetViewportFor should disable the scissor")
	}
}

func TestStageCreateDelete(t *testing.T) {
	ctx := createContext(t, Defaults()...)
	fs, _ := FragmentStageOf(ctx)

	h, err := fs.Create("solid", passthroughFS, "fs_main")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if fs.Len() != 2 {
		t.Errorf("Len() = %d, want 2", fs.Len())
	}
	if !fs.Delete(h) || fs.Delete(h) {
		t.Error("Delete should succeed once")
	}
	if _, err := fs.Create("broken", "this is not wgsl", "main"); err == nil {
		t.Error("Create with invalid source should fail")
	}
}

func TestCompileSPIRV(t *testing.T) {
	for name, src := range map[string]string{"vs": passthroughVS, "fs": passthroughFS} {
		words, err := compileSPIRV(src)
		if err != nil {
			t.Fatalf("%s: compileSPIRV failed: %v", name, err)
		}
		// Header is magic, version, generator, bound and schema.
		if len(words) < 5 || words[0] != spirvMagic {
			t.Errorf("%s: header = %#x, want magic %#x", name, words[:min(len(words), 5)], spirvMagic)
		}
	}
}

func TestVertexBuffers(t *testing.T) {
	ctx := createContext(t, Defaults()...)
	vb, _ := VertexBuffersOf(ctx)

	if err := vb.Upload(ctx, 2, make([]byte, 48)); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if vb.Slot(2).Buffer == nil || vb.Bound() != 1 {
		t.Errorf("slot 2 = %+v, Bound() = %d", vb.Slot(2), vb.Bound())
	}
	if err := vb.Set(MaxVertexBuffers-1, VertexBinding{}, VertexBinding{}); !errors.Is(err, ErrSlot) {
		t.Errorf("Set past the last slot = %v, want ErrSlot", err)
	}
	if err := vb.Upload(ctx, -1, nil); !errors.Is(err, ErrSlot) {
		t.Errorf("Upload(-1) = %v, want ErrSlot", err)
	}
	if err := vb.Set(2, VertexBinding{}); err != nil {
		t.Errorf("Set failed: %v", err)
	}
	if vb.Bound() != 0 {
		t.Errorf("Bound() = %d after clearing slot 2, want 0", vb.Bound())
	}
}
