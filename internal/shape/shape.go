// File: internal/shape/shape.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Runtime shape handles for boxed values.
//
// A Handle is the metadata record that travels with the raw bytes of a
// boxed value: byte size and alignment, a type-identity token for
// downcasting, the element count for sequence payloads, and a destructor
// thunk captured at construction time. Boxes consult the handle through
// their accessor and release paths only; it is never exposed to callers.
//
// The handle also carries a GC anchor: when the stored type contains
// pointers, the bytes copied into a uintptr- or byte-backed buffer are
// invisible to the garbage collector, so the handle retains a reference
// to the original value. The anchor's copies alias the same referents as
// the buffer's copies, which keeps them live.

package shape

import (
	"reflect"
	"unsafe"

	"github.com/momentics/smallbox/api"
)

// Kind discriminates scalar-value payloads from sequence payloads.
type Kind uint8

const (
	KindValue Kind = iota
	KindSequence
)

// Handle describes one boxed value. The zero Handle is invalid.
type Handle struct {
	typ   reflect.Type // value type, or element type for sequences
	size  uintptr      // total bytes occupied by the payload
	align uintptr
	count int // element count for sequences, 1 otherwise
	kind  Kind
	dtor  func(unsafe.Pointer) // per-value (or per-element) destructor, may be nil
	ptrs  bool                 // payload embeds pointers the collector must see
	keep  any                  // GC anchor, nil for pointer-free types
}

// Of builds a handle for an erased value.
func Of(val any) (Handle, error) {
	if val == nil {
		return Handle{}, api.NewError(api.ErrCodeInvalidArgument, "cannot box nil value")
	}
	t := reflect.TypeOf(val)
	h := Handle{
		typ:   t,
		size:  t.Size(),
		align: uintptr(t.Align()),
		count: 1,
		kind:  KindValue,
		dtor:  dtorFor(t),
		ptrs:  containsPointers(t),
	}
	if h.ptrs {
		h.keep = val
	}
	return h, nil
}

// OfType builds a handle for a statically typed value. Unlike Of, it
// never touches an interface for pointer-free types, so the typed
// placement path stays allocation-free.
func OfType[T any](val T) Handle {
	t := reflect.TypeFor[T]()
	h := Handle{
		typ:   t,
		size:  t.Size(),
		align: uintptr(t.Align()),
		count: 1,
		kind:  KindValue,
		dtor:  dtorFor(t),
		ptrs:  containsPointers(t),
	}
	if h.ptrs {
		h.keep = val
	}
	return h
}

// OfSlice builds a sequence handle over the elements of a slice.
func OfSlice[E any](elems []E) Handle {
	t := reflect.TypeFor[E]()
	h := Handle{
		typ:   t,
		size:  t.Size() * uintptr(len(elems)),
		align: uintptr(t.Align()),
		count: len(elems),
		kind:  KindSequence,
		dtor:  dtorFor(t),
		ptrs:  containsPointers(t),
	}
	if h.ptrs && len(elems) > 0 {
		h.keep = elems
	}
	return h
}

// Size returns the payload's total byte size.
func (h Handle) Size() uintptr { return h.size }

// Align returns the payload's required alignment.
func (h Handle) Align() uintptr { return h.align }

// Len returns the element count for sequences, 1 for scalar values.
func (h Handle) Len() int { return h.count }

// Kind returns the payload kind.
func (h Handle) Kind() Kind { return h.kind }

// Type returns the identity token: the value type, or the element type
// for sequences.
func (h Handle) Type() reflect.Type { return h.typ }

// Is reports whether the identity token matches t exactly.
func (h Handle) Is(t reflect.Type) bool { return h.typ == t }

// Valid reports whether the handle describes a payload.
func (h Handle) Valid() bool { return h.typ != nil }

// HasPointers reports whether the payload embeds pointers. Storage for
// such payloads is GC-invisible raw bytes kept live by the handle's
// anchor, so no mutable alias over it may ever be handed out: a pointer
// written through such an alias would have no anchor.
func (h Handle) HasPointers() bool { return h.ptrs }

// Store writes an erased scalar value into pre-aligned storage at dst.
// Sequence payloads are written by their typed construction path and
// never go through Store.
func (h Handle) Store(dst unsafe.Pointer, val any) {
	if h.kind != KindValue {
		panic("shape: Store on sequence handle")
	}
	reflect.NewAt(h.typ, dst).Elem().Set(reflect.ValueOf(val))
}

// Value reconstructs the payload at p as an interface value. Scalar
// payloads are copied out. Sequence payloads alias p when the element
// type is pointer-free; pointer-carrying sequences are copied out so no
// writable alias over raw storage escapes.
func (h Handle) Value(p unsafe.Pointer) any {
	if h.kind == KindSequence {
		src := reflect.SliceAt(h.typ, p, h.count)
		if !h.ptrs {
			return src.Interface()
		}
		dst := reflect.MakeSlice(reflect.SliceOf(h.typ), h.count, h.count)
		reflect.Copy(dst, src)
		return dst.Interface()
	}
	return reflect.NewAt(h.typ, p).Elem().Interface()
}

// HasDtor reports whether the payload carries a destructor obligation
// beyond plain byte reclamation.
func (h Handle) HasDtor() bool { return h.dtor != nil }

// Dispose runs the destructor over the payload at p. For sequences the
// element destructor runs in index order. Callers must guarantee
// at-most-once dispatch.
func (h Handle) Dispose(p unsafe.Pointer) {
	if h.dtor == nil {
		return
	}
	if h.kind == KindValue {
		h.dtor(p)
		return
	}
	step := h.typ.Size()
	for i := 0; i < h.count; i++ {
		h.dtor(unsafe.Add(p, uintptr(i)*step))
	}
}

var disposableType = reflect.TypeFor[api.Disposable]()

// dtorFor captures a destructor thunk when t (or *t) implements the
// Disposable contract.
func dtorFor(t reflect.Type) func(unsafe.Pointer) {
	switch {
	case t.Implements(disposableType):
		return func(p unsafe.Pointer) {
			reflect.NewAt(t, p).Elem().Interface().(api.Disposable).Dispose()
		}
	case reflect.PointerTo(t).Implements(disposableType):
		return func(p unsafe.Pointer) {
			reflect.NewAt(t, p).Interface().(api.Disposable).Dispose()
		}
	}
	return nil
}

// containsPointers reports whether values of type t embed any pointer
// the garbage collector must be able to see.
func containsPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr, reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && containsPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if containsPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		// Ptr, String, Slice, Map, Chan, Func, Interface, UnsafePointer.
		return true
	}
}
