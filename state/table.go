// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"errors"
	"fmt"
	"sort"
)

// Handle names an object in a Table. The zero Handle names nothing.
type Handle uint32

// ErrUnknownHandle is returned when a handle is not in the table.
var ErrUnknownHandle = errors.New("state: unknown handle")

// Table holds state objects of one kind and tracks which one is bound.
// Handles are never reused.
//
// Table is not safe for concurrent use, like the context it lives in.
type Table[T any] struct {
	name  string
	next  Handle
	items map[Handle]T
	bound Handle
}

// NewTable creates an empty table. name appears in error messages.
func NewTable[T any](name string) *Table[T] {
	return &Table[T]{name: name, items: make(map[Handle]T)}
}

// Name returns the table name.
func (t *Table[T]) Name() string { return t.name }

// Create adds v and returns its handle.
func (t *Table[T]) Create(v T) Handle {
	t.next++
	t.items[t.next] = v
	return t.next
}

// Get returns the object named by h.
func (t *Table[T]) Get(h Handle) (T, bool) {
	v, ok := t.items[h]
	return v, ok
}

// Bind makes h the bound object. Binding the zero Handle unbinds.
func (t *Table[T]) Bind(h Handle) error {
	if h != 0 {
		if _, ok := t.items[h]; !ok {
			return fmt.Errorf("%w: %s %d", ErrUnknownHandle, t.name, h)
		}
	}
	t.bound = h
	return nil
}

// Bound returns the bound object and its handle.
func (t *Table[T]) Bound() (T, Handle, bool) {
	v, ok := t.items[t.bound]
	return v, t.bound, ok
}

// Delete removes h and returns the removed object. Deleting the bound
// object unbinds it.
func (t *Table[T]) Delete(h Handle) (T, bool) {
	v, ok := t.items[h]
	if !ok {
		return v, false
	}
	delete(t.items, h)
	if t.bound == h {
		t.bound = 0
	}
	return v, true
}

// Len returns the number of objects.
func (t *Table[T]) Len() int { return len(t.items) }

// Each calls fn for every object in creation order.
func (t *Table[T]) Each(fn func(Handle, T)) {
	hs := make([]Handle, 0, len(t.items))
	for h := range t.items {
		hs = append(hs, h)
	}
	sort.Slice(hs, func(i, j int) bool { return hs[i] < hs[j] })
	for _, h := range hs {
		fn(h, t.items[h])
	}
}

// Clear removes every object.
func (t *Table[T]) Clear() {
	clear(t.items)
	t.bound = 0
}
