// File: api/value.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Disposable is the optional destructor contract for boxed values.
//
// When a value (or, for sequences, the element type) implements
// Disposable, the owning box invokes Dispose exactly once when the box
// is released. Values that own no external resources need not implement
// it. The container guarantees at-most-once dispatch across moves,
// resizes and heap migration.
type Disposable interface {
	Dispose()
}
