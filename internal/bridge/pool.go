package bridge

import "fmt"

// Handle names a pooled resource (audio source, light, UI text). The low 32
// bits are the slot index, the high 32 bits the slot generation. Generations
// start at 1, so the zero Handle is never valid.
type Handle uint64

func newHandle(index, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

func (h Handle) Index() uint32      { return uint32(h) }
func (h Handle) Generation() uint32 { return uint32(h >> 32) }
func (h Handle) IsZero() bool       { return h == 0 }

func (h Handle) String() string {
	if h == 0 {
		return "none"
	}
	return fmt.Sprintf("%d:%d", h.Index(), h.Generation())
}

type slot[T any] struct {
	value T
	gen   uint32
	used  bool
}

// Pool is a slot map of reusable values addressed by generation-checked
// handles. Releasing a slot bumps its generation, so stale handles resolve to
// nothing instead of to the slot's next occupant. Not safe for concurrent use:
// only the owning bridge's drain touches it.
type Pool[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

func NewPool[T any](capacity int) *Pool[T] {
	return &Pool[T]{
		slots: make([]slot[T], 0, capacity),
		free:  make([]uint32, 0, capacity),
	}
}

// Acquire reuses a free slot or grows the pool. The returned value is zeroed.
func (p *Pool[T]) Acquire() (Handle, *T) {
	var idx uint32
	if n := len(p.free); n > 0 {
		idx = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		idx = uint32(len(p.slots))
		p.slots = append(p.slots, slot[T]{gen: 1})
	}
	s := &p.slots[idx]
	var zero T
	s.value = zero
	s.used = true
	p.live++
	return newHandle(idx, s.gen), &s.value
}

// Get resolves h; ok is false for zero, released or stale handles.
func (p *Pool[T]) Get(h Handle) (*T, bool) {
	idx := h.Index()
	if h.IsZero() || int(idx) >= len(p.slots) {
		return nil, false
	}
	s := &p.slots[idx]
	if !s.used || s.gen != h.Generation() {
		return nil, false
	}
	return &s.value, true
}

// Release returns h's slot to the free list. Returns false for stale handles.
func (p *Pool[T]) Release(h Handle) bool {
	if _, ok := p.Get(h); !ok {
		return false
	}
	s := &p.slots[h.Index()]
	var zero T
	s.value = zero
	s.used = false
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	p.free = append(p.free, h.Index())
	p.live--
	return true
}

// Len returns the number of live values.
func (p *Pool[T]) Len() int { return p.live }

// Each visits live values in slot order. fn may Release the visited handle.
func (p *Pool[T]) Each(fn func(Handle, *T)) {
	for i := range p.slots {
		s := &p.slots[i]
		if s.used {
			fn(newHandle(uint32(i), s.gen), &s.value)
		}
	}
}
