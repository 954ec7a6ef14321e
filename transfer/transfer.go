// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package transfer

// MapFlags describes how a transfer maps its resource.
type MapFlags uint32

// Map flags.
const (
	MapRead MapFlags = 1 << iota
	MapWrite
	MapDiscardRange
	MapDiscardWholeResource
	MapUnsynchronized
)

// Box is a 3D region of a resource.
type Box struct {
	X, Y, Z              int32
	Width, Height, Depth int32
}

// Transfer describes one in-progress staging transfer.
type Transfer struct {
	// Resource is the mapped resource, opaque to this package.
	Resource any

	Level       uint32
	Usage       MapFlags
	Box         Box
	Stride      uint32
	LayerStride uint64

	// Data is the CPU-side staging storage.
	Data []byte

	owner *Child
}
