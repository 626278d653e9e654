// Package pool
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Allocator capability implementations for the smallbox heap path.
// Provides an aligned general-purpose allocator with size-class free
// lists, an mmap-backed allocator for page-granular regions on Linux,
// and test decorators for failure injection.
// See allocator.go, freelist.go, alloc_linux.go for details.
package pool
