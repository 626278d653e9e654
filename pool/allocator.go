// File: pool/allocator.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Portable aligned allocator with size-class free lists.
//
// Regions are carved from garbage-collected byte slabs. The allocator
// pins every slab whose region is outstanding or queued for reuse, so
// a raw region pointer stays valid until the region is dropped from
// its free list. Freeing a pointer the allocator does not own, or
// freeing the same region twice, is a loud defect, not a silent one.

package pool

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/momentics/smallbox/api"
	"github.com/momentics/smallbox/internal/layout"
)

// Predefined (power-of-two) region size classes (bytes).
// Requests above the largest class are allocated exact-size.
var sizeClasses = [...]uintptr{
	16, 32, 64, 128, 256, 512, 1024, 2048, 4096,
}

// classUpperBound returns the smallest class >= requested size, or the
// size itself for oversized requests.
func classUpperBound(size uintptr) uintptr {
	for _, c := range sizeClasses {
		if size <= c {
			return c
		}
	}
	return size
}

// For logging allocator events (can be replaced with structured logger).
var (
	logMu sync.Mutex
	logf  = func(format string, args ...any) {}
)

// SetLogf injects a diagnostic log function. The default discards.
func SetLogf(fn func(format string, args ...any)) {
	logMu.Lock()
	defer logMu.Unlock()
	if fn == nil {
		fn = func(string, ...any) {}
	}
	logf = fn
}

// zeroBase is the shared target of all zero-size allocations.
// Word-typed so the pointer is word aligned.
var zeroBase uintptr

type classKey struct {
	class uintptr
	align uintptr
}

// region records one outstanding or queued slab carve.
type region struct {
	backing []byte // pins the slab for the garbage collector
	class   uintptr
	align   uintptr
	queued  bool // sitting in a free list, not owned by any caller
}

// AlignedAllocator is the default api.Allocator implementation.
// Safe for concurrent use.
type AlignedAllocator struct {
	mu   sync.Mutex
	free map[classKey]*freeList
	live map[unsafe.Pointer]*region

	totalAlloc atomic.Int64
	totalFree  atomic.Int64
	reused     atomic.Int64
}

// NewAlignedAllocator creates an empty allocator.
func NewAlignedAllocator() *AlignedAllocator {
	return &AlignedAllocator{
		free: make(map[classKey]*freeList),
		live: make(map[unsafe.Pointer]*region),
	}
}

var (
	defaultOnce  sync.Once
	defaultAlloc *AlignedAllocator
)

// Default returns the process-wide allocator used by smallbox.New.
func Default() api.Allocator {
	defaultOnce.Do(func() {
		defaultAlloc = NewAlignedAllocator()
	})
	return defaultAlloc
}

// Alloc returns a region of at least size bytes aligned to align.
func (a *AlignedAllocator) Alloc(size, align uintptr) (unsafe.Pointer, error) {
	if !layout.IsPowerOfTwo(align) {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "pool: alignment must be a power of two").
			WithContext("align", align)
	}
	a.totalAlloc.Add(1)
	if size == 0 {
		return unsafe.Pointer(&zeroBase), nil
	}

	class := classUpperBound(size)
	key := classKey{class: class, align: align}

	a.mu.Lock()
	defer a.mu.Unlock()

	if fl := a.free[key]; fl != nil {
		if p, ok := fl.pop(); ok {
			a.live[p].queued = false
			a.reused.Add(1)
			return p, nil
		}
	}

	// Fresh slab: pad by align so an aligned region of `class` bytes
	// always exists inside it.
	backing := make([]byte, class+align)
	base := unsafe.Pointer(&backing[0])
	off := layout.AlignUp(uintptr(base), align) - uintptr(base)
	p := unsafe.Add(base, off)
	layout.CheckAligned(p, align, "pool alloc")

	a.live[p] = &region{backing: backing, class: class, align: align}
	return p, nil
}

// Free returns a region to the allocator. Small regions are queued for
// reuse; free-list overflow drops the region to the garbage collector.
func (a *AlignedAllocator) Free(ptr unsafe.Pointer, size, align uintptr) {
	a.totalFree.Add(1)
	if size == 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	r, ok := a.live[ptr]
	if !ok {
		panic("pool: free of pointer not owned by this allocator")
	}
	if r.queued {
		panic("pool: double free")
	}
	if r.align != align || r.class != classUpperBound(size) {
		panic("pool: free with mismatched size/align")
	}

	key := classKey{class: r.class, align: r.align}
	fl := a.free[key]
	if fl == nil {
		fl = newFreeList()
		a.free[key] = fl
	}
	if !fl.push(ptr) {
		delete(a.live, ptr)
		logf("pool: free list full for class %d, dropping region", r.class)
		return
	}
	// Scrub the region so reuse never hands out stale payload bytes.
	layout.Zero(ptr, r.class)
	r.queued = true
}

// Stats exposes allocation counters.
func (a *AlignedAllocator) Stats() api.AllocStats {
	alloc := a.totalAlloc.Load()
	free := a.totalFree.Load()
	return api.AllocStats{
		TotalAlloc: alloc,
		TotalFree:  free,
		InUse:      alloc - free,
		Reused:     a.reused.Load(),
	}
}

var _ api.Allocator = (*AlignedAllocator)(nil)
