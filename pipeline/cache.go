package pipeline

import "sync/atomic"

// Cell is a single-slot, last-write-wins container. A store makes the new
// value instantly visible to future loads; a load concurrent with a store
// observes either the old or the new value whole, never a mix. No history is
// kept.
type Cell[T any] struct {
	p atomic.Pointer[T]
}

// NewCell returns a cell holding the given initial value.
func NewCell[T any](initial T) *Cell[T] {
	c := &Cell[T]{}
	c.p.Store(&initial)
	return c
}

// Store replaces the cell's value.
func (c *Cell[T]) Store(v T) {
	c.p.Store(&v)
}

// Load returns the most recently stored value.
func (c *Cell[T]) Load() T {
	return *c.p.Load()
}

// Snapshot pairs the last handled data message with the accumulated series.
// The presentation layer polls this and must treat it as read-only.
type Snapshot struct {
	Rec    Record
	Series Series
}
