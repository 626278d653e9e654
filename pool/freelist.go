// File: pool/freelist.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bounded per-class free list of reusable regions. Callers hold the
// allocator lock; the queue itself needs no synchronization.

package pool

import (
	"unsafe"

	"github.com/eapache/queue"
)

// defaultFreeListCapacity bounds how many regions a class retains.
const defaultFreeListCapacity = 1024

type freeList struct {
	q   *queue.Queue
	cap int
}

func newFreeList() *freeList {
	return &freeList{q: queue.New(), cap: defaultFreeListCapacity}
}

// push queues a region for reuse; false when the list is full.
func (f *freeList) push(p unsafe.Pointer) bool {
	if f.q.Length() >= f.cap {
		return false
	}
	f.q.Add(p)
	return true
}

// pop dequeues the oldest queued region.
func (f *freeList) pop() (unsafe.Pointer, bool) {
	if f.q.Length() == 0 {
		return nil, false
	}
	return f.q.Remove().(unsafe.Pointer), true
}
