// Package background runs work off the UI-owning goroutine.
//
// A Runner executes tasks on their own goroutines with a bound on how many
// run at once. A Tracker counts outstanding work across the Runner and the UI
// dispatcher together, so a command can tell when nothing is left to do even
// though each side may schedule work on the other.
package background

import (
	"sync"
	"sync/atomic"
)

// Tracker counts outstanding units of work. Work that schedules more work
// must call Add for the new unit before calling Done for its own, which keeps
// the count above zero until everything has finished.
type Tracker struct {
	wg sync.WaitGroup
	n  atomic.Int64
}

// NewTracker returns an idle tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Add records one more unit of outstanding work.
func (t *Tracker) Add() {
	t.n.Add(1)
	t.wg.Add(1)
}

// Done marks one unit of work finished.
func (t *Tracker) Done() {
	t.n.Add(-1)
	t.wg.Done()
}

// Wait blocks until no work is outstanding.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

// Idle reports whether no work is outstanding right now.
func (t *Tracker) Idle() bool {
	return t.n.Load() == 0
}

// Outstanding returns the number of units of work not yet done.
func (t *Tracker) Outstanding() int {
	return int(t.n.Load())
}
