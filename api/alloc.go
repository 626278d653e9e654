// File: api/alloc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Allocator capability contract consumed by the adaptive box heap path.
//
// Regions are raw byte storage: the allocator never runs destructors and
// never interprets region contents. Callers must pass the same size and
// alignment to Free that they passed to Alloc.

package api

import "unsafe"

// Allocator abstracts heap region management for boxes that overflow
// their inline space.
type Allocator interface {
	// Alloc returns a region of at least `size` bytes whose address is a
	// multiple of `align`. align must be a power of two. A zero size
	// request is valid and returns a non-nil dangling-safe pointer.
	Alloc(size, align uintptr) (unsafe.Pointer, error)

	// Free returns a region to the allocator. ptr must originate from a
	// prior Alloc on the same allocator with identical size and align;
	// the region must not be used afterwards.
	Free(ptr unsafe.Pointer, size, align uintptr)

	// Stats exposes resource/accounting metrics for observability.
	Stats() AllocStats
}

// AllocStats aggregates region allocation/reuse stats.
type AllocStats struct {
	TotalAlloc int64
	TotalFree  int64
	InUse      int64
	Reused     int64
}
