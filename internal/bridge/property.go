package bridge

import "sync/atomic"

// Property is a read-only snapshot replaced wholesale by the drain. Readers
// always get one complete snapshot, never a mix of two.
type Property[P any] struct {
	p atomic.Pointer[P]
}

func NewProperty[P any](initial P) *Property[P] {
	prop := &Property[P]{}
	prop.p.Store(&initial)
	return prop
}

// Load returns the current snapshot by value.
func (p *Property[P]) Load() P {
	return *p.p.Load()
}

// Store publishes a new snapshot.
func (p *Property[P]) Store(v P) {
	p.p.Store(&v)
}
