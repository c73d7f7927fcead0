package camera

import (
	"github.com/creaturesim/server/internal/bridge"
	"github.com/creaturesim/server/internal/core/ecs"
	"github.com/creaturesim/server/internal/core/vec"
	"go.uber.org/zap"
)

// Bridge is the camera façade used by jobs and the sequencer.
type Bridge struct {
	*bridge.Bridge[Command, Property, struct{}]
	manager *Manager
}

func NewBridge(lanes int, m *Manager, log *zap.Logger) *Bridge {
	return &Bridge{
		Bridge:  bridge.New[Command, Property, struct{}]("camera", lanes, m, log),
		manager: m,
	}
}

// Manager returns the camera service for boot-time wiring.
func (b *Bridge) Manager() *Manager { return b.manager }

func (b *Bridge) ShakeCamera(lane int, e ecs.EntityID, strength, duration float64, direction vec.Vec3) {
	b.Enqueue(lane, ShakeCamera{Header: bridge.Header{Entity: e}, Strength: strength, Duration: duration, Direction: direction})
}

func (b *Bridge) StopShaking(lane int, e ecs.EntityID) {
	b.Enqueue(lane, StopShaking{Header: bridge.Header{Entity: e}})
}

func (b *Bridge) MoveCamera(lane int, e ecs.EntityID, position, rotation vec.Vec3, duration float64) {
	b.Enqueue(lane, MoveCamera{Header: bridge.Header{Entity: e}, Position: position, Rotation: rotation, Duration: duration})
}

func (b *Bridge) SetFieldOfView(lane int, e ecs.EntityID, degrees float64) {
	b.Enqueue(lane, SetFieldOfView{Header: bridge.Header{Entity: e}, Degrees: degrees})
}
