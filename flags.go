// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tegra

// ContextFlags are passed to Screen.NewContext. They are stored on the
// context and not interpreted by this package.
type ContextFlags uint32

// Context creation flags.
const (
	ContextStreamOutput ContextFlags = 1 << iota
	ContextPreferThreaded
	ContextComputeOnly
	ContextRobust
	ContextLowPriority
	ContextHighPriority
)

// FlushFlags are passed to Context.Flush.
//
// Flush accepts any value, including bits not defined here, and does not
// change its behavior based on them. Their meaning is a contract with the
// submission layer.
type FlushFlags uint32

// Flush flags.
const (
	FlushEndOfFrame FlushFlags = 1 << iota
	FlushDeferred
	FlushFenceFD
	FlushAsync
	FlushHint
	FlushTopOfPipe
	FlushBottomOfPipe
)
