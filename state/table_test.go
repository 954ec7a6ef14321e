// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"errors"
	"slices"
	"testing"
)

func TestTable(t *testing.T) {
	tbl := NewTable[string]("names")

	a := tbl.Create("a")
	b := tbl.Create("b")
	if a == 0 || a == b {
		t.Fatalf("handles a=%d b=%d should be distinct and non-zero", a, b)
	}
	if _, _, ok := tbl.Bound(); ok {
		t.Error("new table should have nothing bound")
	}
	if err := tbl.Bind(b); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if v, h, ok := tbl.Bound(); !ok || v != "b" || h != b {
		t.Errorf("Bound() = %q, %d, %v", v, h, ok)
	}
	if err := tbl.Bind(99); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("Bind(99) = %v, want ErrUnknownHandle", err)
	}

	if v, ok := tbl.Delete(b); !ok || v != "b" {
		t.Errorf("Delete(b) = %q, %v", v, ok)
	}
	if _, _, ok := tbl.Bound(); ok {
		t.Error("deleting the bound object should unbind it")
	}
	if c := tbl.Create("c"); c == b {
		t.Error("handles must not be reused")
	}

	var seen []string
	tbl.Each(func(_ Handle, v string) { seen = append(seen, v) })
	if !slices.Equal(seen, []string{"a", "c"}) {
		t.Errorf("Each visited %v, want [a c]", seen)
	}

	tbl.Clear()
	if tbl.Len() != 0 {
		t.Errorf("Len() after Clear = %d", tbl.Len())
	}
	if err := tbl.Bind(0); err != nil {
		t.Errorf("Bind(0) = %v, want nil", err)
	}
}
