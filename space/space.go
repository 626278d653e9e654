// File: space/space.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package space provides predefined capacity descriptors for smallbox
// containers.
//
// A capacity descriptor is any sized Go type: its size is the inline
// capacity in bytes and its alignment bounds the alignment of values the
// space can host. The descriptors below cover power-of-two word counts;
// box types are not restricted to them — a raw array such as [100]byte
// is an equally valid descriptor (with byte alignment, so word-aligned
// values will overflow to the heap).
//
// Example:
//
//	b, err := stackbox.Place[space.S4](uint64(7))
package space

// S1 represents a 1-machine-word inline space.
type S1 [1]uintptr

// S2 represents a 2-machine-word inline space.
type S2 [2]uintptr

// S4 represents a 4-machine-word inline space.
type S4 [4]uintptr

// S8 represents an 8-machine-word inline space.
type S8 [8]uintptr

// S16 represents a 16-machine-word inline space.
type S16 [16]uintptr

// S32 represents a 32-machine-word inline space.
type S32 [32]uintptr

// S64 represents a 64-machine-word inline space.
type S64 [64]uintptr
