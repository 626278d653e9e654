// File: pool/failalloc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Failure-injecting allocator decorator for leak and double-free
// testing of box migration paths.

package pool

import (
	"sync/atomic"
	"unsafe"

	"github.com/momentics/smallbox/api"
)

type failAllocator struct {
	inner     api.Allocator
	remaining atomic.Int64
}

// FailAfter wraps inner so that every allocation after the first n
// fails with an allocation error. Frees always pass through, so
// regions granted before the cutoff can still be returned.
func FailAfter(inner api.Allocator, n int) api.Allocator {
	f := &failAllocator{inner: inner}
	f.remaining.Store(int64(n))
	return f
}

func (f *failAllocator) Alloc(size, align uintptr) (unsafe.Pointer, error) {
	if f.remaining.Add(-1) < 0 {
		return nil, api.NewError(api.ErrCodeAllocFailure, "pool: injected allocation failure")
	}
	return f.inner.Alloc(size, align)
}

func (f *failAllocator) Free(ptr unsafe.Pointer, size, align uintptr) {
	f.inner.Free(ptr, size, align)
}

func (f *failAllocator) Stats() api.AllocStats {
	return f.inner.Stats()
}

var _ api.Allocator = (*failAllocator)(nil)
