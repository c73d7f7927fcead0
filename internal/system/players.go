package system

import (
	"github.com/creaturesim/server/internal/bridge/hub"
	"github.com/creaturesim/server/internal/core/ecs"
	"github.com/creaturesim/server/internal/core/event"
	"github.com/creaturesim/server/internal/creature"
	"go.uber.org/zap"
)

// PlayerLifecycle spawns a player creature for every connected session and
// destroys it when the session goes away. It works purely through bus
// subscriptions, so it has no phase of its own.
type PlayerLifecycle struct {
	world  *creature.World
	hub    *hub.Hub
	bus    *event.Bus
	prefab string
	log    *zap.Logger
}

func NewPlayerLifecycle(w *creature.World, h *hub.Hub, bus *event.Bus, prefab string, log *zap.Logger) *PlayerLifecycle {
	p := &PlayerLifecycle{world: w, hub: h, bus: bus, prefab: prefab, log: log}
	event.Subscribe(bus, p.onConnected)
	event.Subscribe(bus, p.onDisconnected)
	return p
}

func (p *PlayerLifecycle) onConnected(e event.Connected) {
	owner := e.SessionID
	p.world.Commands().Instantiate(0, p.prefab, func(_ *ecs.World, id ecs.EntityID) {
		in, ok := p.world.PlayerInputs.Get(id)
		if !ok {
			p.log.Warn("player prefab has no input", zap.String("prefab", p.prefab))
			return
		}
		in.Owner = owner
		p.log.Info("player spawned",
			zap.Uint64("session", owner),
			zap.String("name", e.Name),
			zap.Uint64("entity", uint64(id)),
		)
		event.Emit(p.bus, event.PlayerSpawned{SessionID: owner, Entity: id})
	})
}

func (p *PlayerLifecycle) onDisconnected(e event.Disconnected) {
	id, ok := p.world.PlayerByOwner(e.SessionID)
	if !ok {
		return
	}
	p.hub.Input.ResetInput(0, id, e.SessionID)
	p.world.Commands().Destroy(0, id)
	p.log.Info("player removed", zap.Uint64("session", e.SessionID), zap.Uint64("entity", uint64(id)))
}
