package game

import (
	"github.com/creaturesim/server/internal/bridge"
	"github.com/creaturesim/server/internal/core/ecs"
	"go.uber.org/zap"
)

// Bridge is the game façade.
type Bridge struct {
	*bridge.Bridge[Command, Property, Result]
	manager *Manager
}

func NewBridge(lanes int, m *Manager, log *zap.Logger) *Bridge {
	return &Bridge{
		Bridge:  bridge.New[Command, Property, Result]("game", lanes, m, log),
		manager: m,
	}
}

func (b *Bridge) Manager() *Manager { return b.manager }

func (b *Bridge) SetGameState(lane int, e ecs.EntityID, s State) {
	b.Enqueue(lane, SetGameState{Header: bridge.Header{Entity: e}, State: s})
}

func (b *Bridge) SetTimeScale(lane int, e ecs.EntityID, scale float64) {
	b.Enqueue(lane, SetTimeScale{Header: bridge.Header{Entity: e}, Scale: scale})
}

func (b *Bridge) PlayEvent(lane int, e ecs.EntityID, event string) {
	b.Enqueue(lane, PlayEvent{Header: bridge.Header{Entity: e}, Event: event})
}

func (b *Bridge) IsEventPlaying(lane int, e ecs.EntityID, id EventID) {
	b.Enqueue(lane, IsEventPlaying{Header: bridge.Header{Entity: e}, Event: id})
}

func (b *Bridge) StopEvent(lane int, e ecs.EntityID, id EventID) {
	b.Enqueue(lane, StopEvent{Header: bridge.Header{Entity: e}, Event: id})
}

// TryGetEventID returns the id from e's PlayEvent in the previous tick.
func (b *Bridge) TryGetEventID(e ecs.EntityID) (EventID, bool) {
	r, ok := b.Result(e)
	if !ok || r.Method != MethodPlayEvent || r.EventID == 0 {
		return 0, false
	}
	return r.EventID, true
}

// TryGetIsEventPlaying returns the answer to e's IsEventPlaying query. A
// PlayEvent result in the same slot is not an answer.
func (b *Bridge) TryGetIsEventPlaying(e ecs.EntityID) (playing, ok bool) {
	r, ok := b.Result(e)
	if !ok || r.Method != MethodIsEventPlaying {
		return false, false
	}
	return r.IsPlaying, true
}
