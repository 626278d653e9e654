//go:build linux
// +build linux

// File: pool/alloc_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux mmap-backed allocator for page-granular regions. Sub-page
// requests delegate to the portable aligned allocator; everything at or
// above the page size maps anonymous memory, which is page aligned and
// therefore satisfies any alignment the Go type system can produce.

package pool

import (
	"os"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/momentics/smallbox/api"
	"github.com/momentics/smallbox/internal/layout"
)

type mmapAllocator struct {
	small    api.Allocator
	pageSize uintptr

	mu      sync.Mutex
	regions map[unsafe.Pointer][]byte

	totalAlloc atomic.Int64
	totalFree  atomic.Int64
}

// NewMmapAllocator returns an allocator that serves large regions from
// anonymous mappings and small ones from an AlignedAllocator.
func NewMmapAllocator() api.Allocator {
	return &mmapAllocator{
		small:    NewAlignedAllocator(),
		pageSize: uintptr(os.Getpagesize()),
		regions:  make(map[unsafe.Pointer][]byte),
	}
}

func (m *mmapAllocator) Alloc(size, align uintptr) (unsafe.Pointer, error) {
	if size < m.pageSize || align > m.pageSize {
		return m.small.Alloc(size, align)
	}
	length := layout.AlignUp(size, m.pageSize)
	b, err := unix.Mmap(-1, 0, int(length),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, api.NewError(api.ErrCodeAllocFailure, "pool: mmap failed").
			WithContext("size", size).
			WithContext("errno", err.Error())
	}
	p := unsafe.Pointer(&b[0])

	m.mu.Lock()
	m.regions[p] = b
	m.mu.Unlock()
	m.totalAlloc.Add(1)
	return p, nil
}

func (m *mmapAllocator) Free(ptr unsafe.Pointer, size, align uintptr) {
	m.mu.Lock()
	b, ok := m.regions[ptr]
	if ok {
		delete(m.regions, ptr)
	}
	m.mu.Unlock()

	if !ok {
		m.small.Free(ptr, size, align)
		return
	}
	m.totalFree.Add(1)
	if err := unix.Munmap(b); err != nil {
		logf("pool: munmap failed: %v", err)
	}
}

func (m *mmapAllocator) Stats() api.AllocStats {
	s := m.small.Stats()
	alloc := m.totalAlloc.Load()
	free := m.totalFree.Load()
	return api.AllocStats{
		TotalAlloc: s.TotalAlloc + alloc,
		TotalFree:  s.TotalFree + free,
		InUse:      s.InUse + alloc - free,
		Reused:     s.Reused,
	}
}

var _ api.Allocator = (*mmapAllocator)(nil)
