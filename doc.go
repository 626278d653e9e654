// Package smallbox
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Small-value optimization container: a box that embeds a value's bytes
// in a fixed-capacity inline buffer when it fits, and transparently
// falls back to an allocator-provided heap region when it does not.
//
// The inline capacity is a compile-time descriptor: any sized type
// supplied as the box's type parameter (see package space for the
// predefined word-count descriptors). Construction through New/Place
// always succeeds apart from allocator failure; callers who want to
// refuse heap fallback use package stackbox directly.
//
//	b, err := smallbox.New[space.S4]([2]uint64{0, 0})
//	// b.IsHeap() == false
//
//	big, err := smallbox.NewSlice[space.S4](make([]uintptr, 32))
//	// big.IsHeap() == true
//
// Boxes have move semantics: Resize and Take discharge the source box.
// A box must not be copied after first use. No internal locking is
// performed; a box is as goroutine-safe as its contained value.
//
// Pointer-carrying payloads are fully supported through Deref, Take and
// the destructor protocol, but Downcast refuses to hand out a mutable
// alias over them: box storage is raw bytes the collector cannot scan,
// and only the pointers anchored at construction are kept live.
package smallbox
