// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/tegra"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/passthrough_vs.wgsl
var passthroughVS string

//go:embed shaders/passthrough_fs.wgsl
var passthroughFS string

// StageKind is a programmable pipeline stage.
type StageKind int

const (
	StageVertex StageKind = iota
	StageFragment
)

func (k StageKind) String() string {
	if k == StageVertex {
		return "vs"
	}
	return "fs"
}

// Shader is a compiled shader module.
type Shader struct {
	Label      string
	EntryPoint string
	Module     hal.ShaderModule
}

// Stage is the shader table of one pipeline stage. Modules are device
// objects; they are destroyed with the context.
type Stage struct {
	*Table[*Shader]
	kind   StageKind
	device hal.Device
}

func newStage(ctx *tegra.Context, kind StageKind, key string) *Stage {
	s := &Stage{
		Table:  NewTable[*Shader](key),
		kind:   kind,
		device: ctx.Screen().Device(),
	}
	ctx.Bind(key, s)
	ctx.OnDestroy(s.destroyAll)
	return s
}

func initVertexStage(ctx *tegra.Context) {
	s := newStage(ctx, StageVertex, KeyVertexStage)
	s.bindDefault(ctx, "tegra_passthrough_vs", passthroughVS, "vs_main")
}

func initFragmentStage(ctx *tegra.Context) {
	s := newStage(ctx, StageFragment, KeyFragmentStage)
	s.bindDefault(ctx, "tegra_passthrough_fs", passthroughFS, "fs_main")
}

func (s *Stage) bindDefault(ctx *tegra.Context, label, source, entry string) {
	h, err := s.Create(label, source, entry)
	if err != nil {
		ctx.Logger().Warn("state: default shader unavailable", "stage", s.kind, "err", err)
		return
	}
	_ = s.Bind(h)
}

// Kind returns the stage.
func (s *Stage) Kind() StageKind { return s.kind }

// Create compiles WGSL source to SPIR-V and creates a shader module.
func (s *Stage) Create(label, wgsl, entryPoint string) (Handle, error) {
	spirv, err := compileSPIRV(wgsl)
	if err != nil {
		return 0, fmt.Errorf("state: %s %q: %w", s.kind, label, err)
	}
	module, err := s.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: label,
		Source: hal.ShaderSource{
			SPIRV: spirv,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("state: %s %q: create module: %w", s.kind, label, err)
	}
	return s.Table.Create(&Shader{Label: label, EntryPoint: entryPoint, Module: module}), nil
}

// Delete destroys the shader named by h.
func (s *Stage) Delete(h Handle) bool {
	sh, ok := s.Table.Delete(h)
	if ok {
		s.device.DestroyShaderModule(sh.Module)
	}
	return ok
}

func (s *Stage) destroyAll() {
	s.Each(func(_ Handle, sh *Shader) {
		s.device.DestroyShaderModule(sh.Module)
	})
	s.Clear()
}

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// compileSPIRV compiles WGSL and decodes the module into words.
func compileSPIRV(wgsl string) ([]uint32, error) {
	b, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	if len(b)%4 != 0 || len(b) < 4 || binary.LittleEndian.Uint32(b) != spirvMagic {
		return nil, fmt.Errorf("compile: malformed SPIR-V (%d bytes)", len(b))
	}
	words := make([]uint32, 0, len(b)/4)
	for ; len(b) > 0; b = b[4:] {
		words = append(words, binary.LittleEndian.Uint32(b))
	}
	return words, nil
}
