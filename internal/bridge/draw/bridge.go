package draw

import (
	"image/color"

	"github.com/creaturesim/server/internal/bridge"
	"github.com/creaturesim/server/internal/core/ecs"
	"github.com/creaturesim/server/internal/core/vec"
	"go.uber.org/zap"
)

// Bridge is the debug-draw façade.
type Bridge struct {
	*bridge.Bridge[Command, Property, struct{}]
}

func NewBridge(lanes int, m *Manager, log *zap.Logger) *Bridge {
	return &Bridge{Bridge: bridge.New[Command, Property, struct{}]("draw", lanes, m, log)}
}

func (b *Bridge) DrawLine(lane int, e ecs.EntityID, from, to vec.Vec3, c color.RGBA, duration float64) {
	b.Enqueue(lane, DrawLine{Header: bridge.Header{Entity: e}, From: from, To: to, Color: c, Duration: duration})
}

func (b *Bridge) DrawBox(lane int, e ecs.EntityID, center, size vec.Vec3, c color.RGBA, duration float64) {
	b.Enqueue(lane, DrawBox{Header: bridge.Header{Entity: e}, Center: center, Size: size, Color: c, Duration: duration})
}

func (b *Bridge) DrawSphere(lane int, e ecs.EntityID, center vec.Vec3, radius float64, c color.RGBA, duration float64) {
	b.Enqueue(lane, DrawSphere{Header: bridge.Header{Entity: e}, Center: center, Radius: radius, Color: c, Duration: duration})
}

func (b *Bridge) ClearDraw(lane int, e ecs.EntityID) {
	b.Enqueue(lane, ClearDraw{Header: bridge.Header{Entity: e}})
}
