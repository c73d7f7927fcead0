package game

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/creaturesim/server/internal/core/ecs"
	"go.uber.org/zap"
)

// MaxTimeScale bounds SetTimeScale.
const MaxTimeScale = 10.0

// State is the coarse game flow state.
type State uint8

const (
	StateBoot State = iota
	StateMenu
	StatePlaying
	StatePaused
	StateCutscene
	StateGameOver
)

var stateNames = [...]string{
	StateBoot:     "boot",
	StateMenu:     "menu",
	StatePlaying:  "playing",
	StatePaused:   "paused",
	StateCutscene: "cutscene",
	StateGameOver: "game_over",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", s)
}

// ParseState maps a state name to its State.
func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if strings.EqualFold(n, name) {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("unknown game state %q", name)
}

// EventID identifies one running event. Zero is never issued.
type EventID uint32

// EventPlayer runs event graphs. Implemented by the sequencer.
type EventPlayer interface {
	Play(event string, source ecs.EntityID) (EventID, bool)
	IsPlaying(id EventID) bool
	Stop(id EventID)
	Playing() int
}

// Result carries PlayEvent's id or IsEventPlaying's answer, whichever the
// entity issued last. Method tells which one it is.
type Result struct {
	Method    Method
	EventID   EventID
	IsPlaying bool
}

// Property is the per-tick game snapshot.
type Property struct {
	State     State   `json:"state"`
	TimeScale float64 `json:"time_scale"`
	Elapsed   float64 `json:"elapsed"` // scaled game seconds
	Events    int     `json:"events"`
}

// Manager owns flow state and scaled game time. It is ready once an event
// player is attached.
type Manager struct {
	state   State
	scale   float64
	elapsed float64
	player  EventPlayer
	log     *zap.Logger
}

func NewManager(log *zap.Logger) *Manager {
	return &Manager{scale: 1, log: log}
}

// Attach installs the event player.
func (m *Manager) Attach(p EventPlayer) { m.player = p }

func (m *Manager) Ready() bool { return m.player != nil }

func (m *Manager) Apply(cmd Command) (Result, bool) {
	switch c := cmd.(type) {
	case SetGameState:
		if c.State != m.state {
			m.log.Info("game state changed",
				zap.Stringer("from", m.state),
				zap.Stringer("to", c.State),
			)
		}
		m.state = c.State
	case SetTimeScale:
		m.scale = math.Min(MaxTimeScale, math.Max(0, c.Scale))
	case PlayEvent:
		id, ok := m.player.Play(c.Event, c.Source())
		if !ok {
			m.log.Warn("unknown event", zap.String("event", c.Event))
			return Result{}, false
		}
		return Result{Method: MethodPlayEvent, EventID: id}, true
	case IsEventPlaying:
		return Result{Method: MethodIsEventPlaying, EventID: c.Event, IsPlaying: m.player.IsPlaying(c.Event)}, true
	case StopEvent:
		m.player.Stop(c.Event)
	default:
		m.log.Warn("unhandled game command", zap.String("method", cmd.MethodName()))
	}
	return Result{}, false
}

func (m *Manager) Update(dt time.Duration) {
	if m.state == StatePaused {
		return
	}
	m.elapsed += dt.Seconds() * m.scale
}

func (m *Manager) Snapshot() Property {
	p := Property{State: m.state, TimeScale: m.scale, Elapsed: m.elapsed}
	if m.player != nil {
		p.Events = m.player.Playing()
	}
	return p
}
