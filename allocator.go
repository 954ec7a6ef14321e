// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tegra

import "fmt"

// ObjectKind names a host-side record accounted by an Allocator.
type ObjectKind int

const (
	ObjectContext ObjectKind = iota
	ObjectChannel
	ObjectFence
)

func (k ObjectKind) String() string {
	switch k {
	case ObjectContext:
		return "context"
	case ObjectChannel:
		return "channel"
	case ObjectFence:
		return "fence"
	default:
		return fmt.Sprintf("ObjectKind(%d)", int(k))
	}
}

// Allocator accounts the host-side records of contexts, channels and
// fences. Alloc is called before a record is created and Free after it is
// released; every successful Alloc is matched by exactly one Free.
//
// A failing Alloc is reported as ErrNoHostMemory. Tests use this to inject
// allocation failures; embedders can use it to enforce a budget.
type Allocator interface {
	Alloc(kind ObjectKind) error
	Free(kind ObjectKind)
}

// unboundedAllocator never fails.
type unboundedAllocator struct{}

func (unboundedAllocator) Alloc(ObjectKind) error { return nil }
func (unboundedAllocator) Free(ObjectKind)        {}

func alloc(a Allocator, kind ObjectKind) error {
	if err := a.Alloc(kind); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNoHostMemory, kind, err)
	}
	return nil
}
