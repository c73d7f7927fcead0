package system

import (
	"time"

	"github.com/creaturesim/server/internal/bridge/network"
	"github.com/creaturesim/server/internal/core/event"
	coresys "github.com/creaturesim/server/internal/core/system"
	"github.com/creaturesim/server/internal/creature"
	"github.com/creaturesim/server/internal/net"
	"go.uber.org/zap"
)

// ClientSystem drives a headless client: it reads chat pushed by the server
// and sends one autopilot input frame per tick while approved.
// Phase 0 (Input).
type ClientSystem struct {
	client *net.Client
	bus    *event.Bus
	clock  *coresys.Clock
	brain  creature.DummyBrain
	pilot  creature.DummyInput
	log    *zap.Logger
}

func NewClientSystem(c *net.Client, bus *event.Bus, clock *coresys.Clock, brain creature.DummyBrain, log *zap.Logger) *ClientSystem {
	return &ClientSystem{client: c, bus: bus, clock: clock, brain: brain, log: log}
}

func (s *ClientSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *ClientSystem) Update(_ time.Duration) {
	for _, line := range s.client.Poll() {
		s.log.Info("chat", zap.String("from", line.From), zap.String("text", line.Text))
		event.Emit(s.bus, event.ChatReceived{SessionID: s.client.Owner(), From: line.From, Text: line.Text})
	}
	if s.client.Status().State != network.StateConnected {
		return
	}
	s.brain.Think(&s.pilot)
	move := creature.DummyMotionInput(&s.pilot).Move
	if err := s.client.SendInput(uint32(s.clock.Tick()), move, s.pilot.Jump, false); err != nil {
		s.log.Debug("input send failed", zap.Error(err))
	}
}
