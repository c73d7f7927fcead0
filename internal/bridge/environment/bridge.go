package environment

import (
	"image/color"

	"github.com/creaturesim/server/internal/bridge"
	"github.com/creaturesim/server/internal/core/ecs"
	"github.com/creaturesim/server/internal/core/vec"
	"go.uber.org/zap"
)

// Bridge is the environment façade.
type Bridge struct {
	*bridge.Bridge[Command, Property, Result]
}

func NewBridge(lanes int, m *Manager, log *zap.Logger) *Bridge {
	return &Bridge{Bridge: bridge.New[Command, Property, Result]("environment", lanes, m, log)}
}

func hdr(e ecs.EntityID) bridge.Header { return bridge.Header{Entity: e} }

func (b *Bridge) SetTimeOfDay(lane int, e ecs.EntityID, hours float64) {
	b.Enqueue(lane, SetTimeOfDay{Header: hdr(e), Hours: hours})
}

// AddLight queues a light; its handle is readable via TryGetLightID next tick.
func (b *Bridge) AddLight(lane int, e ecs.EntityID, c color.RGBA, intensity float64, pos vec.Vec3, rng, duration float64) {
	b.Enqueue(lane, AddLight{Header: hdr(e), Color: c, Intensity: intensity, Position: pos, Range: rng, Duration: duration})
}

func (b *Bridge) SetLightColor(lane int, e ecs.EntityID, light bridge.Handle, c color.RGBA) {
	b.Enqueue(lane, SetLightColor{Header: hdr(e), Light: light, Color: c})
}

func (b *Bridge) SetLightIntensity(lane int, e ecs.EntityID, light bridge.Handle, intensity float64) {
	b.Enqueue(lane, SetLightIntensity{Header: hdr(e), Light: light, Intensity: intensity})
}

func (b *Bridge) SetLightPosition(lane int, e ecs.EntityID, light bridge.Handle, pos vec.Vec3) {
	b.Enqueue(lane, SetLightPosition{Header: hdr(e), Light: light, Position: pos})
}

func (b *Bridge) SetLightDuration(lane int, e ecs.EntityID, light bridge.Handle, duration float64) {
	b.Enqueue(lane, SetLightDuration{Header: hdr(e), Light: light, Duration: duration})
}

func (b *Bridge) SetLightRange(lane int, e ecs.EntityID, light bridge.Handle, rng float64) {
	b.Enqueue(lane, SetLightRange{Header: hdr(e), Light: light, Range: rng})
}

func (b *Bridge) RemoveLight(lane int, e ecs.EntityID, light bridge.Handle) {
	b.Enqueue(lane, RemoveLight{Header: hdr(e), Light: light})
}

// TryGetLightID returns the handle from e's AddLight in the previous tick.
func (b *Bridge) TryGetLightID(e ecs.EntityID) (bridge.Handle, bool) {
	r, ok := b.Result(e)
	return r.LightID, ok
}
