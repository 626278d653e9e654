//go:build !linux
// +build !linux

// File: pool/alloc_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fallback for platforms without the mmap path.

package pool

import "github.com/momentics/smallbox/api"

// NewMmapAllocator falls back to the portable aligned allocator on
// platforms without anonymous-mapping support.
func NewMmapAllocator() api.Allocator {
	return NewAlignedAllocator()
}
