// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

package layout

import (
	"testing"
	"unsafe"
)

func TestAlignUp(t *testing.T) {
	cases := []struct{ n, align, want uintptr }{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 8, 16},
		{17, 16, 32},
		{5, 1, 5},
	}
	for _, c := range cases {
		if got := AlignUp(c.n, c.align); got != c.want {
			t.Errorf("AlignUp(%d, %d) = %d, want %d", c.n, c.align, got, c.want)
		}
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, v := range []uintptr{1, 2, 4, 8, 1024} {
		if !IsPowerOfTwo(v) {
			t.Errorf("IsPowerOfTwo(%d) = false", v)
		}
	}
	for _, v := range []uintptr{0, 3, 6, 12, 1023} {
		if IsPowerOfTwo(v) {
			t.Errorf("IsPowerOfTwo(%d) = true", v)
		}
	}
}

func TestMoveAndZero(t *testing.T) {
	src := [4]uint64{1, 2, 3, 4}
	var dst [4]uint64
	Move(unsafe.Pointer(&dst), unsafe.Pointer(&src), unsafe.Sizeof(src))
	if dst != src {
		t.Fatalf("Move mismatch: %v != %v", dst, src)
	}
	Zero(unsafe.Pointer(&dst), unsafe.Sizeof(dst))
	if dst != [4]uint64{} {
		t.Fatalf("Zero left residue: %v", dst)
	}
}

func TestMoveZeroSize(t *testing.T) {
	// Must not dereference either pointer.
	Move(nil, nil, 0)
}

func TestCheckAlignedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on misaligned pointer")
		}
	}()
	var buf [2]uint64
	p := unsafe.Pointer(uintptr(unsafe.Pointer(&buf)) + 1)
	CheckAligned(p, 8, "test")
}
