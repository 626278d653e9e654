// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

package stackbox_test

import (
	"errors"
	"testing"

	"github.com/momentics/smallbox/api"
	"github.com/momentics/smallbox/space"
	"github.com/momentics/smallbox/stackbox"
)

func TestBasicPlacement(t *testing.T) {
	b, err := stackbox.Place[space.S1](uintptr(1234))
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := stackbox.Downcast[uintptr](&b); !ok || *got != 1234 {
		t.Errorf("downcast = %v, %v", got, ok)
	}
	b.Release()
}

func TestErasedPlacement(t *testing.T) {
	b, err := stackbox.New[space.S2]([2]uint32{7, 9})
	if err != nil {
		t.Fatal(err)
	}
	if v := b.Deref(); v != ([2]uint32{7, 9}) {
		t.Errorf("deref = %v", v)
	}
}

func TestOversize(t *testing.T) {
	if _, err := stackbox.Place[space.S1]([1]uintptr{0}); err != nil {
		t.Errorf("1 word in S1 should fit: %v", err)
	}
	_, err := stackbox.Place[space.S1]([2]uintptr{0, 0})
	if !errors.Is(err, api.ErrDoesNotFit) {
		t.Errorf("2 words in S1: got %v, want ErrDoesNotFit", err)
	}
}

func TestFailureLeavesValueUsable(t *testing.T) {
	val := [2]uintptr{11, 22}
	_, err := stackbox.Place[space.S1](val)
	if !errors.Is(err, api.ErrDoesNotFit) {
		t.Fatalf("got %v", err)
	}
	// The input remains fully usable after the refused placement.
	if val != ([2]uintptr{11, 22}) {
		t.Errorf("value mutated on failure path: %v", val)
	}
}

func TestAlignmentRefusal(t *testing.T) {
	// A byte-aligned descriptor cannot host a word-aligned value even
	// though the size fits.
	type bytes8 [8]byte
	_, err := stackbox.Place[bytes8](uint64(1))
	if !errors.Is(err, api.ErrDoesNotFit) {
		t.Errorf("word-aligned value in byte space: got %v, want ErrDoesNotFit", err)
	}
}

func TestExactFitBoundary(t *testing.T) {
	// Size == capacity and align == capacity alignment must be inline.
	b, err := stackbox.Place[space.S4]([4]uintptr{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("exact fit refused: %v", err)
	}
	if b.Size() != b.Capacity() {
		t.Errorf("size %d != capacity %d", b.Size(), b.Capacity())
	}
}

type dropCounter struct {
	hits *int
}

func (d dropCounter) Dispose() { *d.hits++ }

func TestReleaseRunsDtorOnce(t *testing.T) {
	hits := 0
	b, err := stackbox.Place[space.S2](dropCounter{&hits})
	if err != nil {
		t.Fatal(err)
	}
	if hits != 0 {
		t.Fatal("dtor ran before release")
	}
	b.Release()
	b.Release()
	if hits != 1 {
		t.Errorf("dtor ran %d times, want 1", hits)
	}
}

func TestResizeChain(t *testing.T) {
	m, err := stackbox.Place[space.S4]([2]uintptr{5, 6})
	if err != nil {
		t.Fatal(err)
	}
	l, err := stackbox.Resize[space.S8](&m)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Released() {
		t.Error("source box still owns after resize")
	}
	m2, err := stackbox.Resize[space.S4](&l)
	if err != nil {
		t.Fatal(err)
	}
	s, err := stackbox.Resize[space.S2](&m2)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := stackbox.Resize[space.S1](&s); !errors.Is(err, api.ErrDoesNotFit) {
		t.Errorf("resize into too-small space: got %v", err)
	}
	// Failed resize leaves the source live and intact.
	if s.Released() {
		t.Error("failed resize discharged the source box")
	}
	if got, ok := stackbox.Downcast[[2]uintptr](&s); !ok || *got != ([2]uintptr{5, 6}) {
		t.Errorf("content after resize chain = %v, %v", got, ok)
	}
}

func TestResizeDoesNotRunDtor(t *testing.T) {
	hits := 0
	b, err := stackbox.Place[space.S2](dropCounter{&hits})
	if err != nil {
		t.Fatal(err)
	}
	nb, err := stackbox.Resize[space.S4](&b)
	if err != nil {
		t.Fatal(err)
	}
	b.Release() // discharged source: must be a no-op
	if hits != 0 {
		t.Fatalf("dtor ran during move, hits = %d", hits)
	}
	nb.Release()
	if hits != 1 {
		t.Errorf("dtor ran %d times across move, want 1", hits)
	}
}

func TestZeroSizeValue(t *testing.T) {
	b, err := stackbox.Place[space.S1](struct{}{})
	if err != nil {
		t.Fatal(err)
	}
	if v := b.Deref(); v != struct{}{} {
		t.Errorf("zst deref = %v", v)
	}
}

func TestSlicePayload(t *testing.T) {
	b, err := stackbox.NewSlice[space.S4]([]uint64{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != 3 {
		t.Errorf("len = %d", b.Len())
	}
	v, ok := stackbox.DowncastSlice[uint64](&b)
	if !ok || len(v) != 3 || v[2] != 3 {
		t.Fatalf("slice downcast = %v, %v", v, ok)
	}
	// Mutation through the downcast aliases the buffer.
	v[0] = 99
	if again, _ := stackbox.DowncastSlice[uint64](&b); again[0] != 99 {
		t.Error("downcast slice does not alias the buffer")
	}
}

func TestSliceOversize(t *testing.T) {
	elems := make([]uint64, 32)
	_, err := stackbox.NewSlice[space.S4](elems)
	if !errors.Is(err, api.ErrDoesNotFit) {
		t.Errorf("32 words in S4: got %v", err)
	}
}

func TestTake(t *testing.T) {
	hits := 0
	b, err := stackbox.Place[space.S2](dropCounter{&hits})
	if err != nil {
		t.Fatal(err)
	}
	v, err := stackbox.Take[dropCounter](&b)
	if err != nil {
		t.Fatal(err)
	}
	b.Release() // ownership transferred: no dtor obligation remains
	if hits != 0 {
		t.Fatalf("dtor ran on taken box, hits = %d", hits)
	}
	v.Dispose()
	if hits != 1 {
		t.Errorf("taken value unusable, hits = %d", hits)
	}
}

func TestTakeTypeMismatch(t *testing.T) {
	b, _ := stackbox.Place[space.S1](uint64(5))
	if _, err := stackbox.Take[int32](&b); !errors.Is(err, api.ErrTypeMismatch) {
		t.Errorf("got %v, want ErrTypeMismatch", err)
	}
	// Box still owns the value after a refused extraction.
	if b.Released() {
		t.Error("mismatch discharged the box")
	}
}

func TestDowncastMismatch(t *testing.T) {
	b, _ := stackbox.Place[space.S1](uint64(5))
	if _, ok := stackbox.Downcast[int64](&b); ok {
		t.Error("downcast to wrong type succeeded")
	}
	if _, ok := stackbox.DowncastSlice[uint64](&b); ok {
		t.Error("sequence downcast on scalar payload succeeded")
	}
}

func TestDowncastRefusesPointerPayload(t *testing.T) {
	b, err := stackbox.Place[space.S1](new(int))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := stackbox.Downcast[*int](&b); ok {
		t.Error("pointer payload handed out as mutable alias")
	}
	if got, ok := b.Deref().(*int); !ok || got == nil {
		t.Error("deref of pointer payload failed")
	}
	b.Release()

	s, err := stackbox.NewSlice[space.S8]([]string{"x"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := stackbox.DowncastSlice[string](&s); ok {
		t.Error("pointer-carrying sequence handed out as mutable alias")
	}
	s.Release()
}

func TestNilValue(t *testing.T) {
	if _, err := stackbox.New[space.S1](nil); !errors.Is(err, api.ErrInvalidArgument) {
		t.Errorf("nil value: got %v, want ErrInvalidArgument", err)
	}
}

func BenchmarkPlaceInline(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		box, _ := stackbox.Place[space.S4]([2]uintptr{1, 2})
		box.Release()
	}
}
