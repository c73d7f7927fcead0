package ui

import (
	"github.com/creaturesim/server/internal/bridge"
	"github.com/creaturesim/server/internal/core/ecs"
	"github.com/creaturesim/server/internal/core/vec"
	"go.uber.org/zap"
)

// Bridge is the UI façade.
type Bridge struct {
	*bridge.Bridge[Command, Property, Result]
}

func NewBridge(lanes int, m *Manager, log *zap.Logger) *Bridge {
	return &Bridge{Bridge: bridge.New[Command, Property, Result]("ui", lanes, m, log)}
}

func (b *Bridge) OpenScreen(lane int, e ecs.EntityID, screen string) {
	b.Enqueue(lane, OpenScreen{Header: bridge.Header{Entity: e}, Screen: screen})
}

func (b *Bridge) Back(lane int, e ecs.EntityID) {
	b.Enqueue(lane, Back{Header: bridge.Header{Entity: e}})
}

func (b *Bridge) AddText(lane int, e ecs.EntityID, value string, pos vec.Vec2, duration float64, layer int) {
	b.Enqueue(lane, AddText{Header: bridge.Header{Entity: e}, Value: value, Position: pos, Duration: duration, Layer: layer})
}

func (b *Bridge) SetTextValue(lane int, e ecs.EntityID, text bridge.Handle, value string) {
	b.Enqueue(lane, SetTextValue{Header: bridge.Header{Entity: e}, Text: text, Value: value})
}

func (b *Bridge) SetTextPosition(lane int, e ecs.EntityID, text bridge.Handle, pos vec.Vec2) {
	b.Enqueue(lane, SetTextPosition{Header: bridge.Header{Entity: e}, Text: text, Position: pos})
}

func (b *Bridge) SetTextDuration(lane int, e ecs.EntityID, text bridge.Handle, duration float64) {
	b.Enqueue(lane, SetTextDuration{Header: bridge.Header{Entity: e}, Text: text, Duration: duration})
}

func (b *Bridge) SetTextLayer(lane int, e ecs.EntityID, text bridge.Handle, layer int) {
	b.Enqueue(lane, SetTextLayer{Header: bridge.Header{Entity: e}, Text: text, Layer: layer})
}

func (b *Bridge) RemoveText(lane int, e ecs.EntityID, text bridge.Handle) {
	b.Enqueue(lane, RemoveText{Header: bridge.Header{Entity: e}, Text: text})
}

func (b *Bridge) TryGetTextID(e ecs.EntityID) (bridge.Handle, bool) {
	r, ok := b.Result(e)
	return r.TextID, ok
}
