package input

import (
	"github.com/creaturesim/server/internal/bridge"
	"github.com/creaturesim/server/internal/core/ecs"
	"go.uber.org/zap"
)

// Bridge is the input façade.
type Bridge struct {
	*bridge.Bridge[Command, Property, struct{}]
	manager *Manager
}

func NewBridge(lanes int, m *Manager, log *zap.Logger) *Bridge {
	return &Bridge{
		Bridge:  bridge.New[Command, Property, struct{}]("input", lanes, m, log),
		manager: m,
	}
}

// Manager exposes Submit to the network handlers.
func (b *Bridge) Manager() *Manager { return b.manager }

func (b *Bridge) SetInputEnabled(lane int, e ecs.EntityID, enabled bool) {
	b.Enqueue(lane, SetInputEnabled{Header: bridge.Header{Entity: e}, Enabled: enabled})
}

func (b *Bridge) ResetInput(lane int, e ecs.EntityID, owner uint64) {
	b.Enqueue(lane, ResetInput{Header: bridge.Header{Entity: e}, Owner: owner})
}
