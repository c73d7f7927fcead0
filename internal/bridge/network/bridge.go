package network

import (
	"github.com/creaturesim/server/internal/bridge"
	"github.com/creaturesim/server/internal/core/ecs"
	"go.uber.org/zap"
)

// Bridge is the network façade.
type Bridge struct {
	*bridge.Bridge[Command, Property, struct{}]
	manager *Manager
}

func NewBridge(lanes int, m *Manager, log *zap.Logger) *Bridge {
	return &Bridge{
		Bridge:  bridge.New[Command, Property, struct{}]("network", lanes, m, log),
		manager: m,
	}
}

func (b *Bridge) Manager() *Manager { return b.manager }

func (b *Bridge) SendChatMessage(lane int, e ecs.EntityID, text string) {
	b.Enqueue(lane, SendChatMessage{Header: bridge.Header{Entity: e}, Text: text})
}

func (b *Bridge) Disconnect(lane int, e ecs.EntityID, owner uint64, reason string) {
	b.Enqueue(lane, Disconnect{Header: bridge.Header{Entity: e}, Owner: owner, Reason: reason})
}
