package sequencer

import (
	"math/rand"
	"sort"

	"github.com/creaturesim/server/internal/bridge/game"
	"github.com/creaturesim/server/internal/bridge/hub"
	"github.com/creaturesim/server/internal/core/ecs"
	"github.com/creaturesim/server/internal/scripting"
	"go.uber.org/zap"
)

// Behavior is what a node does while an instance sits on it. Start runs once
// when the instance arrives, Update every tick until it returns true, End
// once after that, and Next picks the output ports to continue through.
type Behavior interface {
	Start(ctx *Context)
	Update(ctx *Context) bool
	End(ctx *Context)
	Next(ctx *Context) []int
}

// Provider is implemented by nodes that expose a value on a data port.
type Provider interface {
	Output(port int) (uint64, bool)
}

// validator is implemented by behaviors that check their params after load.
type validator interface {
	validate() error
}

// Context is handed to a behavior for one call.
type Context struct {
	Event  game.EventID
	Key    string
	Source ecs.EntityID
	Node   *Node
	Graph  *Graph
	Now    float64 // scaled seconds since the sequencer started
	Tick   uint64

	seq *Sequencer
}

// Hub returns the bridges, or nil when the sequencer runs without them.
func (c *Context) Hub() *hub.Hub { return c.seq.deps.Hub }

func (c *Context) Scripts() *scripting.Engine { return c.seq.deps.Scripts }

func (c *Context) Commands() *ecs.CommandBuffer { return c.seq.deps.Commands }

func (c *Context) Rand() *rand.Rand { return c.seq.rng }

func (c *Context) Log() *zap.Logger { return c.seq.log }

// Input resolves the value arriving on one of the node's data input ports.
func (c *Context) Input(port int) (uint64, bool) {
	for _, l := range c.Node.Prevs {
		if l.InputPort != port || l.Type == PortDefault {
			continue
		}
		src := c.Graph.Node(l.Node)
		if src == nil {
			continue
		}
		if p, ok := src.Behavior.(Provider); ok {
			return p.Output(l.OutputPort)
		}
	}
	return 0, false
}

// base provides no-op lifecycle methods and a single output on port 0.
type base struct{}

func (base) Start(*Context)       {}
func (base) Update(*Context) bool { return true }
func (base) End(*Context)         {}
func (base) Next(*Context) []int  { return port0 }

var port0 = []int{0}

// Node kinds.
const (
	KindStart         = "start"
	KindDelay         = "delay"
	KindOnceThen      = "once_then"
	KindRepeat        = "repeat"
	KindRandomize     = "randomize"
	KindBranch        = "branch"
	KindScript        = "script"
	KindLog           = "log"
	KindSpawnObject   = "spawn_object"
	KindDestroyObject = "destroy_object"
	KindDialogue      = "dialogue"
	KindPlayAudio     = "play_audio"
	KindStopAudio     = "stop_audio"
	KindLight         = "light"
	KindCameraShake   = "camera_shake"
	KindCameraMove    = "camera_move"
	KindSetGameState  = "set_game_state"
	KindSetInput      = "set_input"
	KindPlayEvent     = "play_event"
)

var factories = map[string]func() Behavior{
	KindStart:         func() Behavior { return &Start{} },
	KindDelay:         func() Behavior { return &Delay{} },
	KindOnceThen:      func() Behavior { return &OnceThen{} },
	KindRepeat:        func() Behavior { return &Repeat{} },
	KindRandomize:     func() Behavior { return &Randomize{} },
	KindBranch:        func() Behavior { return &Branch{} },
	KindScript:        func() Behavior { return &Script{} },
	KindLog:           func() Behavior { return &Log{} },
	KindSpawnObject:   func() Behavior { return &SpawnObject{} },
	KindDestroyObject: func() Behavior { return &DestroyObject{} },
	KindDialogue:      func() Behavior { return &Dialogue{} },
	KindPlayAudio:     func() Behavior { return &PlayAudio{} },
	KindStopAudio:     func() Behavior { return &StopAudio{} },
	KindLight:         func() Behavior { return &Light{} },
	KindCameraShake:   func() Behavior { return &CameraShake{} },
	KindCameraMove:    func() Behavior { return &CameraMove{} },
	KindSetGameState:  func() Behavior { return &SetGameState{} },
	KindSetInput:      func() Behavior { return &SetInput{} },
	KindPlayEvent:     func() Behavior { return &PlayEvent{} },
}

// Kinds returns every registered node kind, sorted.
func Kinds() []string {
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NewBehavior returns a zero behavior for kind.
func NewBehavior(kind string) (Behavior, bool) {
	f, ok := factories[kind]
	if !ok {
		return nil, false
	}
	return f(), true
}
