// File: smallbox.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Adaptive box: inline-first storage with transparent heap fallback.
//
// A SmallBox is a tagged union of exactly two states, inline and heap.
// The tag and the storage location are kept consistent at all times,
// and exactly one destructor path runs per logical value. Heap regions
// are sized and aligned to the value itself, never to the declared
// capacity.

package smallbox

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/momentics/smallbox/api"
	"github.com/momentics/smallbox/internal/layout"
	"github.com/momentics/smallbox/internal/shape"
	"github.com/momentics/smallbox/pool"
	"github.com/momentics/smallbox/stackbox"
)

// SmallBox owns one value, stored inline in a buffer of capacity S or
// in a heap region obtained from its allocator.
type SmallBox[S any] struct {
	stack stackbox.StackBox[S] // inline variant storage
	hdl   shape.Handle         // heap variant shape record
	ptr   unsafe.Pointer       // heap region, nil when inline
	alloc api.Allocator
	heap  bool
	dead  bool // heap variant obligation discharged
}

// New boxes an erased value using the default allocator for overflow.
// It fails only on invalid input or allocator failure.
func New[S any](val any) (SmallBox[S], error) {
	return NewIn[S](pool.Default(), val)
}

// NewIn boxes an erased value, overflowing into regions from a.
func NewIn[S any](a api.Allocator, val any) (SmallBox[S], error) {
	sb, err := stackbox.New[S](val)
	if err == nil {
		return SmallBox[S]{stack: sb, alloc: a}, nil
	}
	if !errors.Is(err, api.ErrDoesNotFit) {
		return released[S](), err
	}
	hdl, err := shape.Of(val)
	if err != nil {
		return released[S](), err
	}
	b, err := heapBox[S](a, hdl)
	if err != nil {
		return released[S](), err
	}
	hdl.Store(b.ptr, val)
	return b, nil
}

// Place is the statically typed construction path.
func Place[S any, T any](val T) (SmallBox[S], error) {
	return PlaceIn[S](pool.Default(), val)
}

// PlaceIn boxes a statically typed value, overflowing into regions
// from a. Pointer-free values that fit inline are placed without any
// interface boxing.
func PlaceIn[S any, T any](a api.Allocator, val T) (SmallBox[S], error) {
	sb, err := stackbox.Place[S](val)
	if err == nil {
		return SmallBox[S]{stack: sb, alloc: a}, nil
	}
	b, err := heapBox[S](a, shape.OfType(val))
	if err != nil {
		return released[S](), err
	}
	*(*T)(b.ptr) = val
	return b, nil
}

// NewSlice boxes a copy of the slice elements as a sequence payload.
func NewSlice[S any, E any](elems []E) (SmallBox[S], error) {
	return NewSliceIn[S](pool.Default(), elems)
}

// NewSliceIn boxes slice elements, overflowing into regions from a.
func NewSliceIn[S any, E any](a api.Allocator, elems []E) (SmallBox[S], error) {
	sb, err := stackbox.NewSlice[S](elems)
	if err == nil {
		return SmallBox[S]{stack: sb, alloc: a}, nil
	}
	b, err := heapBox[S](a, shape.OfSlice(elems))
	if err != nil {
		return released[S](), err
	}
	if len(elems) > 0 {
		copy(unsafe.Slice((*E)(b.ptr), len(elems)), elems)
	}
	return b, nil
}

// heapBox allocates a region sized and aligned exactly to the value
// described by hdl and returns an empty heap-variant box over it.
func heapBox[S any](a api.Allocator, hdl shape.Handle) (SmallBox[S], error) {
	p, err := a.Alloc(hdl.Size(), hdl.Align())
	if err != nil {
		return released[S](), api.NewError(api.ErrCodeAllocFailure, "smallbox: heap fallback failed").
			WithContext("cause", err.Error()).
			WithContext("size", hdl.Size())
	}
	layout.CheckAligned(p, hdl.Align(), "heap placement")
	return SmallBox[S]{hdl: hdl, ptr: p, alloc: a, heap: true}, nil
}

func released[S any]() SmallBox[S] {
	return SmallBox[S]{dead: true, stack: releasedStack[S]()}
}

func releasedStack[S any]() stackbox.StackBox[S] {
	var sb stackbox.StackBox[S]
	sb.Forget()
	return sb
}

// IsHeap reports whether the value lives in a heap region. Pure tag
// query with no side effects.
func (b *SmallBox[S]) IsHeap() bool { return b.heap }

// Released reports whether the destructor obligation has been
// discharged.
func (b *SmallBox[S]) Released() bool {
	if b.heap {
		return b.dead
	}
	return b.stack.Released()
}

// Capacity returns the declared inline capacity, regardless of where
// the value actually lives.
func (b *SmallBox[S]) Capacity() uintptr {
	var z S
	return unsafe.Sizeof(z)
}

// Size returns the stored value's byte size.
func (b *SmallBox[S]) Size() uintptr { return b.handle().Size() }

// Align returns the stored value's alignment.
func (b *SmallBox[S]) Align() uintptr { return b.handle().Align() }

// Len returns the element count for sequence payloads, 1 otherwise.
func (b *SmallBox[S]) Len() int { return b.handle().Len() }

// Pointer returns the address of the stored value's bytes, inline or
// heap, uniformly. Raw access only: callers must not write pointers
// through it for pointer-carrying payloads (see Downcast).
func (b *SmallBox[S]) Pointer() unsafe.Pointer {
	if b.heap {
		b.mustLive()
		return b.ptr
	}
	return b.stack.Pointer()
}

// Deref returns the stored value. Scalar payloads are copied out and
// boxed; pointer-free sequence payloads are returned as a slice
// aliasing storage, pointer-carrying ones as a copy.
func (b *SmallBox[S]) Deref() any {
	if b.heap {
		b.mustLive()
		return b.hdl.Value(b.ptr)
	}
	return b.stack.Deref()
}

// Release destroys the box: the value's destructor runs at most once,
// then a heap region (if any) is returned to the allocator. Safe to
// call more than once.
func (b *SmallBox[S]) Release() {
	if !b.heap {
		b.stack.Release()
		return
	}
	if b.dead {
		return
	}
	b.dead = true
	b.hdl.Dispose(b.ptr)
	b.alloc.Free(b.ptr, b.hdl.Size(), b.hdl.Align())
	b.ptr = nil
}

// Forget discharges the destructor obligation without running the
// destructor and without returning the heap region. Move paths use it
// once ownership has transferred elsewhere.
func (b *SmallBox[S]) Forget() {
	if b.heap {
		b.dead = true
		return
	}
	b.stack.Forget()
}

// String implements fmt.Stringer over the stored value.
func (b *SmallBox[S]) String() string {
	if b.Released() {
		return "smallbox(released)"
	}
	return fmt.Sprintf("%v", b.Deref())
}

func (b *SmallBox[S]) handle() shape.Handle {
	if b.heap {
		return b.hdl
	}
	return b.stack.Handle()
}

func (b *SmallBox[S]) mustLive() {
	if b.dead {
		panic("smallbox: use after release")
	}
}
