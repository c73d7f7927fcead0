package system

import (
	"time"

	"github.com/creaturesim/server/internal/bridge/hub"
	"github.com/creaturesim/server/internal/core/ecs"
	coresys "github.com/creaturesim/server/internal/core/system"
	"github.com/creaturesim/server/internal/creature"
	"github.com/creaturesim/server/internal/transport/observer"
	"go.uber.org/zap"
)

// PresentationSystem copies motion state into the draw buffers in parallel.
// Phase 5 (Presentation).
type PresentationSystem struct {
	world *creature.World
	sched *ecs.Scheduler
}

func NewPresentationSystem(w *creature.World, sched *ecs.Scheduler) *PresentationSystem {
	return &PresentationSystem{world: w, sched: sched}
}

func (s *PresentationSystem) Phase() coresys.Phase { return coresys.PhasePresentation }

func (s *PresentationSystem) Update(_ time.Duration) {
	w := s.world
	ecs.ParallelEach2(s.sched, w.Cores, w.Sprites,
		func(_ int, id ecs.EntityID, c *creature.CreatureCore, sprite *creature.SpriteDrawBuffer) {
			shadow, ok := w.Shadows.Get(id)
			if !ok {
				return
			}
			creature.SyncPresentation(c, sprite, shadow)
		})
}

// Broadcaster is the observer feed as the presentation phase sees it.
type Broadcaster interface {
	Clients() int
	Broadcast(v any) error
}

// ObserverSystem builds one frame from the draw buffers and bridge
// snapshots every N ticks and hands it to the observer feed. Registered
// after PresentationSystem.
type ObserverSystem struct {
	world *creature.World
	hub   *hub.Hub
	feed  Broadcaster
	clock *coresys.Clock
	every uint64
	log   *zap.Logger
}

func NewObserverSystem(w *creature.World, h *hub.Hub, feed Broadcaster, clock *coresys.Clock, every int, log *zap.Logger) *ObserverSystem {
	return &ObserverSystem{world: w, hub: h, feed: feed, clock: clock, every: uint64(max(1, every)), log: log}
}

func (s *ObserverSystem) Phase() coresys.Phase { return coresys.PhasePresentation }

func (s *ObserverSystem) Update(_ time.Duration) {
	tick := s.clock.Tick()
	if tick%s.every != 0 || s.feed.Clients() == 0 {
		return
	}
	if err := s.feed.Broadcast(BuildFrame(s.world, s.hub, tick)); err != nil {
		s.log.Warn("observer frame encode failed", zap.Error(err))
	}
}

// BuildFrame snapshots every drawable entity in ascending id order.
func BuildFrame(w *creature.World, h *hub.Hub, tick uint64) observer.Frame {
	draw := h.Draw.Snapshot()
	f := observer.Frame{
		Type:        "frame",
		Tick:        tick,
		Entities:    make([]observer.Entity, 0, w.Sprites.Len()),
		Debug:       draw.Primitives,
		Camera:      h.Camera.Snapshot(),
		Environment: h.Environment.Snapshot(),
		Game:        h.Game.Snapshot(),
		UI:          h.UI.Snapshot(),
	}
	for _, id := range w.Sprites.IDs() {
		sprite, _ := w.Sprites.Get(id)
		e := observer.Entity{
			ID:     uint64(id),
			Sprite: append([]creature.DrawElement(nil), sprite.Elements...),
		}
		if tag, ok := w.Tags.Get(id); ok {
			e.Prefab = tag.Prefab
		}
		if tr, ok := w.Transforms.Get(id); ok {
			e.Position, e.Yaw = tr.Position, tr.Yaw
		}
		if shadow, ok := w.Shadows.Get(id); ok {
			e.Shadow = append([]creature.DrawElement(nil), shadow.Elements...)
		}
		f.Entities = append(f.Entities, e)
	}
	return f
}
