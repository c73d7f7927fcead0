package draw

import (
	"image/color"
	"math"
	"time"

	"github.com/creaturesim/server/internal/core/vec"
	"go.uber.org/zap"
)

// Shape names a primitive kind on the wire.
type Shape string

const (
	ShapeLine   Shape = "line"
	ShapeBox    Shape = "box"
	ShapeSphere Shape = "sphere"
)

// Primitive is one debug shape as seen by observers. Unused geometry fields
// are zero for a given shape.
type Primitive struct {
	Shape  Shape      `json:"shape"`
	From   vec.Vec3   `json:"from"`
	To     vec.Vec3   `json:"to"`
	Center vec.Vec3   `json:"center"`
	Size   vec.Vec3   `json:"size"`
	Radius float64    `json:"radius,omitempty"`
	Color  color.RGBA `json:"color"`
	Source uint64     `json:"source"`
}

type entry struct {
	Primitive
	remaining float64
	fresh     bool
}

// Property is the per-tick draw snapshot.
type Property struct {
	Count      int         `json:"count"`
	Primitives []Primitive `json:"primitives"`
}

// Manager keeps the debug primitive list. Primitives added this tick are
// always shown at least once before their lifetime counts down.
type Manager struct {
	entries []entry
	limit   int
	log     *zap.Logger
}

func NewManager(limit int, log *zap.Logger) *Manager {
	if limit <= 0 {
		limit = 4096
	}
	return &Manager{limit: limit, log: log}
}

func (m *Manager) Ready() bool { return true }

func (m *Manager) Apply(cmd Command) (struct{}, bool) {
	src := uint64(cmd.Source())
	switch c := cmd.(type) {
	case DrawLine:
		m.add(Primitive{Shape: ShapeLine, From: c.From, To: c.To, Color: c.Color, Source: src}, c.Duration)
	case DrawBox:
		m.add(Primitive{Shape: ShapeBox, Center: c.Center, Size: c.Size, Color: c.Color, Source: src}, c.Duration)
	case DrawSphere:
		m.add(Primitive{Shape: ShapeSphere, Center: c.Center, Radius: math.Max(0, c.Radius), Color: c.Color, Source: src}, c.Duration)
	case ClearDraw:
		m.entries = m.entries[:0]
	default:
		m.log.Warn("unhandled draw command", zap.String("method", cmd.MethodName()))
	}
	return struct{}{}, false
}

func (m *Manager) add(p Primitive, duration float64) {
	if len(m.entries) >= m.limit {
		m.log.Debug("draw primitive limit reached", zap.Int("limit", m.limit))
		return
	}
	m.entries = append(m.entries, entry{Primitive: p, remaining: math.Max(0, duration), fresh: true})
}

func (m *Manager) Update(dt time.Duration) {
	sec := dt.Seconds()
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.fresh {
			e.fresh = false
			kept = append(kept, e)
			continue
		}
		e.remaining -= sec
		if e.remaining > 0 {
			kept = append(kept, e)
		}
	}
	m.entries = kept
}

func (m *Manager) Snapshot() Property {
	p := Property{Count: len(m.entries), Primitives: make([]Primitive, len(m.entries))}
	for i := range m.entries {
		p.Primitives[i] = m.entries[i].Primitive
	}
	return p
}
