package system

import (
	"time"

	"github.com/creaturesim/server/internal/core/event"
	coresys "github.com/creaturesim/server/internal/core/system"
)

// EventDispatchSystem swaps the bus buffers and delivers last tick's events.
// Registered first in Phase 0 so events emitted by this tick's packets wait
// for the next tick.
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
