package creature

import "github.com/creaturesim/server/internal/core/ecs"

// Frame is the predicted state of the world as it stood before one tick's
// prediction phase, plus the inputs that tick consumed.
type Frame struct {
	Tick       uint64
	Cores      map[ecs.EntityID]CreatureCore
	Transforms map[ecs.EntityID]Transform
	Velocities map[ecs.EntityID]Velocity
	Players    map[ecs.EntityID]PlayerInput
	Dummies    map[ecs.EntityID]DummyInput
}

// Capture copies the predicted stores into a frame for tick.
func (w *World) Capture(tick uint64) Frame {
	return Frame{
		Tick:       tick,
		Cores:      copyStore(w.Cores),
		Transforms: copyStore(w.Transforms),
		Velocities: copyStore(w.Velocities),
		Players:    copyStore(w.PlayerInputs),
		Dummies:    copyStore(w.DummyInputs),
	}
}

// RestoreState writes f's predicted state back. Entities destroyed since
// are skipped; entities missing from f are left alone.
func (w *World) RestoreState(f *Frame) {
	restoreStore(w.Cores, f.Cores)
	restoreStore(w.Transforms, f.Transforms)
	restoreStore(w.Velocities, f.Velocities)
}

// RestoreInputs writes f's player and dummy inputs back.
func (w *World) RestoreInputs(f *Frame) {
	restoreStore(w.PlayerInputs, f.Players)
	restoreStore(w.DummyInputs, f.Dummies)
}

// RestoreNewer writes back the state of entities present in live but absent
// from base, i.e. entities that appeared after base was captured.
func (w *World) RestoreNewer(live, base *Frame) {
	restoreMissing(w.Cores, live.Cores, base.Cores)
	restoreMissing(w.Transforms, live.Transforms, base.Transforms)
	restoreMissing(w.Velocities, live.Velocities, base.Velocities)
}

func copyStore[T any](s *ecs.PtrComponentStore[T]) map[ecs.EntityID]T {
	out := make(map[ecs.EntityID]T, s.Len())
	s.Each(func(id ecs.EntityID, c *T) {
		out[id] = *c
	})
	return out
}

func restoreStore[T any](s *ecs.PtrComponentStore[T], from map[ecs.EntityID]T) {
	for id, v := range from {
		if c, ok := s.Get(id); ok {
			*c = v
		}
	}
}

func restoreMissing[T any](s *ecs.PtrComponentStore[T], live, base map[ecs.EntityID]T) {
	for id, v := range live {
		if _, ok := base[id]; ok {
			continue
		}
		if c, ok := s.Get(id); ok {
			*c = v
		}
	}
}

// History is a ring of the most recent frames, keyed by tick.
type History struct {
	frames []Frame
	next   int
	count  int
}

func NewHistory(size int) *History {
	return &History{frames: make([]Frame, max(1, size))}
}

// Push stores f, evicting the oldest frame when full.
func (h *History) Push(f Frame) {
	h.frames[h.next] = f
	h.next = (h.next + 1) % len(h.frames)
	if h.count < len(h.frames) {
		h.count++
	}
}

// Frame returns the frame captured for tick, if still held.
func (h *History) Frame(tick uint64) (*Frame, bool) {
	for i := 0; i < h.count; i++ {
		f := &h.frames[(h.next-1-i+len(h.frames))%len(h.frames)]
		if f.Tick == tick {
			return f, true
		}
	}
	return nil, false
}

// Len returns the number of frames held.
func (h *History) Len() int { return h.count }
