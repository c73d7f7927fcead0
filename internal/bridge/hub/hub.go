// Package hub groups every subsystem bridge so systems and the sequencer can
// take one dependency instead of eight.
package hub

import (
	"github.com/creaturesim/server/internal/bridge"
	"github.com/creaturesim/server/internal/bridge/audio"
	"github.com/creaturesim/server/internal/bridge/camera"
	"github.com/creaturesim/server/internal/bridge/draw"
	"github.com/creaturesim/server/internal/bridge/environment"
	"github.com/creaturesim/server/internal/bridge/game"
	"github.com/creaturesim/server/internal/bridge/input"
	"github.com/creaturesim/server/internal/bridge/network"
	"github.com/creaturesim/server/internal/bridge/ui"
	"go.uber.org/zap"
)

// Options configures the services behind the bridges.
type Options struct {
	Lanes      int
	SampleRate int
	Screens    []string
	StartHours float64
	DrawLimit  int
}

// Hub owns one bridge per subsystem. Drain order is fixed so a journal
// replays in the same order it was recorded.
type Hub struct {
	Audio       *audio.Bridge
	Camera      *camera.Bridge
	Draw        *draw.Bridge
	Environment *environment.Bridge
	Game        *game.Bridge
	Input       *input.Bridge
	Network     *network.Bridge
	UI          *ui.Bridge
}

func New(opts Options, log *zap.Logger) *Hub {
	return &Hub{
		Audio:       audio.NewBridge(opts.Lanes, audio.NewManager(opts.SampleRate, log.Named("audio")), log),
		Camera:      camera.NewBridge(opts.Lanes, camera.NewManager(log.Named("camera")), log),
		Draw:        draw.NewBridge(opts.Lanes, draw.NewManager(opts.DrawLimit, log.Named("draw")), log),
		Environment: environment.NewBridge(opts.Lanes, environment.NewManager(opts.StartHours, log.Named("environment")), log),
		Game:        game.NewBridge(opts.Lanes, game.NewManager(log.Named("game")), log),
		Input:       input.NewBridge(opts.Lanes, input.NewManager(log.Named("input")), log),
		Network:     network.NewBridge(opts.Lanes, network.NewManager(log.Named("network")), log),
		UI:          ui.NewBridge(opts.Lanes, ui.NewManager(opts.Screens, log.Named("ui")), log),
	}
}

// All returns every bridge in drain order.
func (h *Hub) All() []bridge.Drainer {
	return []bridge.Drainer{
		h.Game,
		h.Audio,
		h.Camera,
		h.Environment,
		h.UI,
		h.Draw,
		h.Network,
		h.Input,
	}
}

// SetJournal installs j on every bridge.
func (h *Hub) SetJournal(j bridge.Journal) {
	h.Audio.SetJournal(j)
	h.Camera.SetJournal(j)
	h.Draw.SetJournal(j)
	h.Environment.SetJournal(j)
	h.Game.SetJournal(j)
	h.Input.SetJournal(j)
	h.Network.SetJournal(j)
	h.UI.SetJournal(j)
}

// SetGate installs the same readiness gate on every bridge.
func (h *Hub) SetGate(gate func() bool) {
	h.Audio.SetGate(gate)
	h.Camera.SetGate(gate)
	h.Draw.SetGate(gate)
	h.Environment.SetGate(gate)
	h.Game.SetGate(gate)
	h.Input.SetGate(gate)
	h.Network.SetGate(gate)
	h.UI.SetGate(gate)
}
