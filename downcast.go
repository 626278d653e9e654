// File: downcast.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Typed extraction over the adaptive box. Every stored value carries a
// type-identity token in its shape handle, so downcasting is always
// answerable; a mismatch yields (zero, false) rather than a failure.

package smallbox

import (
	"reflect"
	"unsafe"

	"github.com/momentics/smallbox/api"
	"github.com/momentics/smallbox/internal/shape"
	"github.com/momentics/smallbox/stackbox"
)

// Downcast returns a typed pointer to the stored value when its
// identity token is exactly T. The pointer aliases the box's storage,
// inline or heap, so it serves both read and in-place mutation.
//
// Pointer-carrying types are refused, inline and heap alike: box
// storage is GC-invisible raw bytes kept live by an anchor captured at
// construction, and a pointer written through an alias would escape
// that anchor. Read such payloads with Deref; replace them with Take
// plus a fresh construction.
func Downcast[T any, S any](b *SmallBox[S]) (*T, bool) {
	if !b.heap {
		return stackbox.Downcast[T](&b.stack)
	}
	if b.dead || b.hdl.Kind() != shape.KindValue ||
		b.hdl.HasPointers() || !b.hdl.Is(reflect.TypeFor[T]()) {
		return nil, false
	}
	return (*T)(b.ptr), true
}

// DowncastSlice returns a typed slice aliasing a sequence payload when
// the element identity token is exactly E. Pointer-carrying element
// types are refused for the same reason Downcast refuses them.
func DowncastSlice[E any, S any](b *SmallBox[S]) ([]E, bool) {
	if !b.heap {
		return stackbox.DowncastSlice[E](&b.stack)
	}
	if b.dead || b.hdl.Kind() != shape.KindSequence ||
		b.hdl.HasPointers() || !b.hdl.Is(reflect.TypeFor[E]()) {
		return nil, false
	}
	return unsafe.Slice((*E)(b.ptr), b.hdl.Len()), true
}

// Take moves the value out of the box, discharging the destructor
// obligation without running the destructor. A heap region is returned
// to its allocator after the value's bytes have been copied out. The
// box must be discarded afterwards.
func Take[T any, S any](b *SmallBox[S]) (T, error) {
	if !b.heap {
		return stackbox.Take[T](&b.stack)
	}
	var zero T
	if b.dead {
		return zero, api.ErrBoxReleased
	}
	if b.hdl.Kind() != shape.KindValue || !b.hdl.Is(reflect.TypeFor[T]()) {
		return zero, api.ErrTypeMismatch
	}
	v := *(*T)(b.ptr)
	// Obligation transfers with the copy; only then is storage released.
	b.dead = true
	b.alloc.Free(b.ptr, b.hdl.Size(), b.hdl.Align())
	b.ptr = nil
	return v, nil
}

// Equal reports whether two live boxes hold observably equal values.
// Capacities may differ; released boxes are never equal to anything.
func Equal[S1 any, S2 any](a *SmallBox[S1], b *SmallBox[S2]) bool {
	if a.Released() || b.Released() {
		return false
	}
	return reflect.DeepEqual(a.Deref(), b.Deref())
}
