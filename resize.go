// File: resize.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Capacity migration. Inline values relocate between inline buffers
// when the target capacity suffices, fall back to the heap when it
// does not, and heap values simply retag — the region already fits the
// value exactly, so no bytes move.

package smallbox

import (
	"github.com/momentics/smallbox/api"
	"github.com/momentics/smallbox/internal/layout"
	"github.com/momentics/smallbox/stackbox"
)

// Resize migrates the box to capacity descriptor S2, consuming the
// source box. The shared move protocol holds throughout: bytes are
// copied first, the shape handle transfers unchanged, the source
// obligation is discharged, and only then is source storage reused or
// released. On allocator failure the source box is returned-to intact:
// it still owns the value and remains solely responsible for its
// destruction.
func Resize[S2 any, S any](b *SmallBox[S]) (SmallBox[S2], error) {
	if b.Released() {
		return released[S2](), api.ErrBoxReleased
	}

	if b.heap {
		// Retag: same region, same handle, new declared capacity. The
		// obligation moves in the same step, so no window exists where
		// both boxes (or neither) would run the destructor.
		nb := SmallBox[S2]{hdl: b.hdl, ptr: b.ptr, alloc: b.alloc, heap: true}
		b.dead = true
		b.ptr = nil
		return nb, nil
	}

	// Inline → inline when the value fits the new capacity.
	if sb, err := stackbox.Resize[S2](&b.stack); err == nil {
		return SmallBox[S2]{stack: sb, alloc: b.alloc}, nil
	}

	// Inline → heap migration, exactly as in construction fallback.
	hdl := b.stack.Handle()
	nb, err := heapBox[S2](b.alloc, hdl)
	if err != nil {
		return released[S2](), err
	}
	layout.Move(nb.ptr, b.stack.Pointer(), hdl.Size())
	b.stack.Forget()
	return nb, nil
}
