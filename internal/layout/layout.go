// File: internal/layout/layout.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Unified alignment arithmetic and raw byte relocation for box storage.
// Move is the only routine in the module permitted to copy value bytes
// between storage locations, and CheckAligned must guard every
// reinterpretation of a buffer as a typed value. Centralizing these
// here keeps the unsafe surface auditable in one place.

package layout

import (
	"fmt"
	"unsafe"
)

// IsPowerOfTwo reports whether align is a valid alignment value.
func IsPowerOfTwo(align uintptr) bool {
	return align != 0 && align&(align-1) == 0
}

// AlignUp rounds n up to the next multiple of align.
// align must be a power of two.
func AlignUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}

// IsAligned reports whether p is a multiple of align.
func IsAligned(p unsafe.Pointer, align uintptr) bool {
	return uintptr(p)&(align-1) == 0
}

// CheckAligned panics when p is not aligned to align. Misalignment here
// is a defect in the container, not a user error; it must never be
// silently absorbed into a misaligned typed access.
func CheckAligned(p unsafe.Pointer, align uintptr, what string) {
	if !IsPowerOfTwo(align) {
		panic(fmt.Sprintf("layout: %s: alignment %d is not a power of two", what, align))
	}
	if !IsAligned(p, align) {
		panic(fmt.Sprintf("layout: %s: pointer %#x violates alignment %d", what, uintptr(p), align))
	}
}

// Move copies size bytes from src to dst. Handles overlap (memmove
// semantics) and zero-size values. Both pointers must already satisfy
// the value's alignment; Move itself performs no typed access.
func Move(dst, src unsafe.Pointer, size uintptr) {
	if size == 0 {
		return
	}
	copy(unsafe.Slice((*byte)(dst), size), unsafe.Slice((*byte)(src), size))
}

// Zero clears size bytes at p. Moved-from buffers and recycled regions
// are scrubbed so they never retain stale copies of payload bytes.
func Zero(p unsafe.Pointer, size uintptr) {
	b := unsafe.Slice((*byte)(p), size)
	for i := range b {
		b[i] = 0
	}
}
