package input

import (
	"sync"
	"time"

	"github.com/creaturesim/server/internal/core/vec"
	"go.uber.org/zap"
)

// Frame is one owner's sampled controls.
type Frame struct {
	Tick    uint32   `json:"tick"`
	Move    vec.Vec2 `json:"move"` // stick vector, components in [-1, 1]
	Jump    bool     `json:"jump"`
	Ability bool     `json:"ability"`
}

// Property is the per-tick input snapshot keyed by owner (session id).
type Property struct {
	Enabled bool             `json:"enabled"`
	Frames  map[uint64]Frame `json:"frames"`
}

// Frame returns owner's frame, or an idle frame.
func (p Property) Frame(owner uint64) Frame {
	return p.Frames[owner]
}

// Manager collects frames submitted by the network layer and publishes the
// newest frame per owner each drain.
type Manager struct {
	mu    sync.Mutex
	inbox map[uint64]Frame

	frames  map[uint64]Frame
	enabled bool
	stale   uint64
	log     *zap.Logger
}

func NewManager(log *zap.Logger) *Manager {
	return &Manager{
		inbox:   make(map[uint64]Frame),
		frames:  make(map[uint64]Frame),
		enabled: true,
		log:     log,
	}
}

// Submit records a frame for owner. Frames older than the newest one seen
// are dropped. Safe from any goroutine.
func (m *Manager) Submit(owner uint64, f Frame) {
	f.Move = clampStick(f.Move)
	m.mu.Lock()
	if cur, ok := m.inbox[owner]; ok && f.Tick < cur.Tick {
		m.stale++
		m.mu.Unlock()
		return
	}
	m.inbox[owner] = f
	m.mu.Unlock()
}

func (m *Manager) Ready() bool { return true }

func (m *Manager) Apply(cmd Command) (struct{}, bool) {
	switch c := cmd.(type) {
	case SetInputEnabled:
		m.enabled = c.Enabled
	case ResetInput:
		m.mu.Lock()
		if c.Owner == 0 {
			clear(m.inbox)
			clear(m.frames)
		} else {
			delete(m.inbox, c.Owner)
			delete(m.frames, c.Owner)
		}
		m.mu.Unlock()
	default:
		m.log.Warn("unhandled input command", zap.String("method", cmd.MethodName()))
	}
	return struct{}{}, false
}

func (m *Manager) Update(time.Duration) {
	m.mu.Lock()
	for owner, f := range m.inbox {
		if cur, ok := m.frames[owner]; ok && f.Tick < cur.Tick {
			m.stale++
			continue
		}
		m.frames[owner] = f
	}
	clear(m.inbox)
	m.mu.Unlock()
}

func (m *Manager) Snapshot() Property {
	p := Property{Enabled: m.enabled, Frames: make(map[uint64]Frame, len(m.frames))}
	if !m.enabled {
		return p
	}
	for owner, f := range m.frames {
		p.Frames[owner] = f
	}
	return p
}

// Stale returns how many out-of-order frames were dropped.
func (m *Manager) Stale() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stale
}

func clampStick(v vec.Vec2) vec.Vec2 {
	if l := v.Len(); l > 1 {
		return v.Scale(1 / l)
	}
	return v
}
