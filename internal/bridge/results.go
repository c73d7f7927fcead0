package bridge

import "github.com/creaturesim/server/internal/core/ecs"

// ResultTable maps an originating entity to the single result of its latest
// command. It is double-buffered: the drain writes into a pending buffer,
// Promote (start of the next tick) makes that buffer readable, and Clear
// (start of the next drain) wipes it. A result is therefore readable for
// exactly one tick window.
//
// Publish, Promote and Clear run on the loop goroutine; TryGet may run from
// many jobs at once while none of those three run.
type ResultTable[R any] struct {
	visible    map[ecs.EntityID]R
	pending    map[ecs.EntityID]R
	generation uint64
}

func NewResultTable[R any]() *ResultTable[R] {
	return &ResultTable[R]{
		visible: make(map[ecs.EntityID]R, 64),
		pending: make(map[ecs.EntityID]R, 64),
	}
}

// Publish overwrites the pending result for id. Last write wins.
func (t *ResultTable[R]) Publish(id ecs.EntityID, r R) {
	t.pending[id] = r
}

// Promote makes the results published by the last drain readable and drops
// anything older.
func (t *ResultTable[R]) Promote() {
	t.visible, t.pending = t.pending, t.visible
	clear(t.pending)
	t.generation++
}

// Clear wipes the readable results. Called at the start of each drain.
func (t *ResultTable[R]) Clear() {
	clear(t.visible)
}

// TryGet returns the readable result for id, if any.
func (t *ResultTable[R]) TryGet(id ecs.EntityID) (R, bool) {
	r, ok := t.visible[id]
	return r, ok
}

// Generation counts Promote calls; it identifies the readable window.
func (t *ResultTable[R]) Generation() uint64 { return t.generation }

// Len returns the number of readable results.
func (t *ResultTable[R]) Len() int { return len(t.visible) }
