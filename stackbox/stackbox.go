// File: stackbox/stackbox.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed-capacity inline box: places a value's bytes directly into an
// embedded buffer of a compile-time capacity descriptor, or refuses.
//
// The capacity descriptor is the type parameter S: its size is the
// inline capacity, its alignment bounds the alignment of hosted values.
// Placement is strict check-then-commit — on failure the caller's value
// is untouched and no resource is held.

package stackbox

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/momentics/smallbox/api"
	"github.com/momentics/smallbox/internal/layout"
	"github.com/momentics/smallbox/internal/shape"
)

// StackBox owns one value placed into an inline buffer of capacity S.
//
// A StackBox has move semantics: Resize and Take discharge the source
// box's destructor obligation, after which only Released and Release
// (a no-op) may be called on it. The zero StackBox is released.
type StackBox[S any] struct {
	space S
	hdl   shape.Handle
	dead  bool
}

// New places an erased value inline. Fails with api.ErrDoesNotFit when
// the value's size or alignment exceeds the capacity descriptor; the
// value is returned to the caller's ownership unchanged.
func New[S any](val any) (StackBox[S], error) {
	hdl, err := shape.Of(val)
	if err != nil {
		return StackBox[S]{dead: true}, err
	}
	var b StackBox[S]
	if err := b.commit(hdl); err != nil {
		return StackBox[S]{dead: true}, err
	}
	hdl.Store(unsafe.Pointer(&b.space), val)
	return b, nil
}

// Place is the statically typed placement path. For pointer-free types
// it performs no interface boxing at all.
func Place[S any, T any](val T) (StackBox[S], error) {
	hdl := shape.OfType(val)
	var b StackBox[S]
	if err := b.commit(hdl); err != nil {
		return StackBox[S]{dead: true}, err
	}
	*(*T)(unsafe.Pointer(&b.space)) = val
	return b, nil
}

// NewSlice places the elements of a slice inline as a sequence payload.
// The box owns a copy of the elements; the input slice remains usable.
func NewSlice[S any, E any](elems []E) (StackBox[S], error) {
	hdl := shape.OfSlice(elems)
	var b StackBox[S]
	if err := b.commit(hdl); err != nil {
		return StackBox[S]{dead: true}, err
	}
	if len(elems) > 0 {
		copy(unsafe.Slice((*E)(unsafe.Pointer(&b.space)), len(elems)), elems)
	}
	return b, nil
}

// commit performs the fit check and adopts the handle. It is the sole
// fallibility point of the component: the buffer is written only after
// commit succeeds.
func (b *StackBox[S]) commit(hdl shape.Handle) error {
	if hdl.Size() > unsafe.Sizeof(b.space) || hdl.Align() > unsafe.Alignof(b.space) {
		return api.ErrDoesNotFit
	}
	layout.CheckAligned(unsafe.Pointer(&b.space), hdl.Align(), "stackbox place")
	b.hdl = hdl
	return nil
}

// Capacity returns the descriptor's byte capacity.
func (b *StackBox[S]) Capacity() uintptr { return unsafe.Sizeof(b.space) }

// CapacityAlign returns the descriptor's alignment.
func (b *StackBox[S]) CapacityAlign() uintptr { return unsafe.Alignof(b.space) }

// Size returns the stored value's byte size.
func (b *StackBox[S]) Size() uintptr { return b.hdl.Size() }

// Align returns the stored value's alignment.
func (b *StackBox[S]) Align() uintptr { return b.hdl.Align() }

// Len returns the element count for sequence payloads, 1 otherwise.
func (b *StackBox[S]) Len() int { return b.hdl.Len() }

// Released reports whether the destructor obligation has been
// discharged (released, resized away, or taken).
func (b *StackBox[S]) Released() bool { return b.dead || !b.hdl.Valid() }

// Pointer returns the address of the stored value's bytes.
func (b *StackBox[S]) Pointer() unsafe.Pointer {
	b.mustLive()
	return unsafe.Pointer(&b.space)
}

// Deref returns the stored value. Scalar payloads are copied out and
// boxed; pointer-free sequence payloads are returned as a slice
// aliasing the buffer, pointer-carrying ones as a copy.
func (b *StackBox[S]) Deref() any {
	b.mustLive()
	return b.hdl.Value(unsafe.Pointer(&b.space))
}

// Handle exposes the value's shape record. Reserved for the adaptive
// box layer in the root package; external callers have no use for it.
func (b *StackBox[S]) Handle() shape.Handle { return b.hdl }

// Release runs the stored value's destructor (if any) and discharges
// the obligation. Safe to call more than once; only the first call has
// effect. The buffer itself is plain bytes and needs no reclamation.
func (b *StackBox[S]) Release() {
	if b.Released() {
		return
	}
	b.dead = true
	b.hdl.Dispose(unsafe.Pointer(&b.space))
}

// Forget discharges the destructor obligation without running the
// destructor. Used by move paths once ownership has transferred.
func (b *StackBox[S]) Forget() { b.dead = true }

func (b *StackBox[S]) mustLive() {
	if b.Released() {
		panic("stackbox: use after release")
	}
}

// String implements fmt.Stringer over the stored value.
func (b *StackBox[S]) String() string {
	if b.Released() {
		return "stackbox(released)"
	}
	return fmt.Sprintf("%v", b.Deref())
}

// Downcast returns a typed pointer to the stored value when its
// identity token is exactly T. The pointer aliases the buffer, so it
// serves both read and in-place mutation.
//
// Pointer-carrying types are refused: the buffer is GC-invisible raw
// storage kept live by an anchor captured at placement, and a pointer
// written through an alias would escape that anchor. Such payloads are
// read with Deref and replaced with Take plus a fresh placement.
func Downcast[T any, S any](b *StackBox[S]) (*T, bool) {
	if b.Released() || b.hdl.Kind() != shape.KindValue ||
		b.hdl.HasPointers() || !b.hdl.Is(reflect.TypeFor[T]()) {
		return nil, false
	}
	return (*T)(unsafe.Pointer(&b.space)), true
}

// DowncastSlice returns a typed slice aliasing a sequence payload when
// the element identity token is exactly E. Pointer-carrying element
// types are refused for the same reason Downcast refuses them.
func DowncastSlice[E any, S any](b *StackBox[S]) ([]E, bool) {
	if b.Released() || b.hdl.Kind() != shape.KindSequence ||
		b.hdl.HasPointers() || !b.hdl.Is(reflect.TypeFor[E]()) {
		return nil, false
	}
	return unsafe.Slice((*E)(unsafe.Pointer(&b.space)), b.hdl.Len()), true
}

// Take moves the value out of the box and discharges the destructor
// obligation without running the destructor: ownership transfers to the
// caller. The box must be discarded afterwards.
func Take[T any, S any](b *StackBox[S]) (T, error) {
	var zero T
	if b.Released() {
		return zero, api.ErrBoxReleased
	}
	if b.hdl.Kind() != shape.KindValue || !b.hdl.Is(reflect.TypeFor[T]()) {
		return zero, api.ErrTypeMismatch
	}
	v := *(*T)(unsafe.Pointer(&b.space))
	layout.Zero(unsafe.Pointer(&b.space), b.hdl.Size())
	b.dead = true
	return v, nil
}

// Resize relocates the value into a box of capacity S2. Follows the
// shared move protocol: bytes first, then the handle, then the source
// obligation is discharged. Fails with api.ErrDoesNotFit when the value
// does not fit S2, leaving the source box intact and live.
func Resize[S2 any, S any](b *StackBox[S]) (StackBox[S2], error) {
	if b.Released() {
		return StackBox[S2]{dead: true}, api.ErrBoxReleased
	}
	hdl := b.hdl
	var nb StackBox[S2]
	if err := nb.commit(hdl); err != nil {
		return StackBox[S2]{dead: true}, err
	}
	layout.Move(unsafe.Pointer(&nb.space), unsafe.Pointer(&b.space), hdl.Size())
	layout.Zero(unsafe.Pointer(&b.space), hdl.Size())
	b.Forget()
	return nb, nil
}
