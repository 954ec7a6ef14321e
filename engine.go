// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tegra

import (
	"fmt"

	"github.com/gogpu/tegra/stream"
)

// Engine names one of the two command engines of a context.
// Engines index the context's fixed channel slots; the slot order is the
// flush order.
type Engine int

const (
	// Engine2D is the 2D blit engine.
	Engine2D Engine = iota

	// Engine3D is the 3D rendering engine.
	Engine3D

	// NumEngines is the number of engine slots of a context.
	NumEngines
)

// Class returns the host1x class of the engine.
func (e Engine) Class() stream.Class {
	switch e {
	case Engine2D:
		return stream.ClassGR2D
	case Engine3D:
		return stream.ClassGR3D
	default:
		return 0
	}
}

// String returns the engine name.
func (e Engine) String() string {
	switch e {
	case Engine2D:
		return "2d"
	case Engine3D:
		return "3d"
	default:
		return fmt.Sprintf("Engine(%d)", int(e))
	}
}

// Valid reports whether e names an engine slot.
func (e Engine) Valid() bool {
	return e >= 0 && e < NumEngines
}
