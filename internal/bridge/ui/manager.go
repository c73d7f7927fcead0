package ui

import (
	"math"
	"sort"
	"time"

	"github.com/creaturesim/server/internal/bridge"
	"github.com/creaturesim/server/internal/core/vec"
	"go.uber.org/zap"
)

// Text is a floating label as seen by observers.
type Text struct {
	ID        bridge.Handle `json:"id"`
	Value     string        `json:"value"`
	Position  vec.Vec2      `json:"position"`
	Layer     int           `json:"layer"`
	Remaining float64       `json:"remaining"`
}

// Result carries the handle produced by AddText.
type Result struct {
	TextID bridge.Handle
}

// Property is the per-tick UI snapshot. Texts are ordered by layer, then id.
type Property struct {
	Screen    string   `json:"screen"`
	Depth     int      `json:"depth"`
	Stack     []string `json:"stack"`
	TextCount int      `json:"text_count"`
	Texts     []Text   `json:"texts"`
}

// Manager owns the screen stack and text pool. It is ready once at least one
// screen is registered.
type Manager struct {
	screens map[string]struct{}
	stack   []string
	texts   *bridge.Pool[Text]
	log     *zap.Logger
}

func NewManager(screens []string, log *zap.Logger) *Manager {
	m := &Manager{
		screens: make(map[string]struct{}, len(screens)),
		texts:   bridge.NewPool[Text](32),
		log:     log,
	}
	for _, s := range screens {
		m.screens[s] = struct{}{}
	}
	return m
}

// Register adds a screen at runtime.
func (m *Manager) Register(screen string) { m.screens[screen] = struct{}{} }

func (m *Manager) Ready() bool { return len(m.screens) > 0 }

func (m *Manager) Apply(cmd Command) (Result, bool) {
	switch c := cmd.(type) {
	case OpenScreen:
		if _, ok := m.screens[c.Screen]; !ok {
			m.log.Warn("unknown screen", zap.String("screen", c.Screen))
			break
		}
		if n := len(m.stack); n > 0 && m.stack[n-1] == c.Screen {
			break
		}
		m.stack = append(m.stack, c.Screen)
	case Back:
		if n := len(m.stack); n > 0 {
			m.stack = m.stack[:n-1]
		}
	case AddText:
		h, t := m.texts.Acquire()
		*t = Text{
			ID:        h,
			Value:     c.Value,
			Position:  c.Position,
			Layer:     c.Layer,
			Remaining: math.Max(0, c.Duration),
		}
		return Result{TextID: h}, true
	case SetTextValue:
		if t, ok := m.texts.Get(c.Text); ok {
			t.Value = c.Value
		}
	case SetTextPosition:
		if t, ok := m.texts.Get(c.Text); ok {
			t.Position = c.Position
		}
	case SetTextDuration:
		if t, ok := m.texts.Get(c.Text); ok {
			t.Remaining = math.Max(0, c.Duration)
		}
	case SetTextLayer:
		if t, ok := m.texts.Get(c.Text); ok {
			t.Layer = c.Layer
		}
	case RemoveText:
		m.texts.Release(c.Text)
	default:
		m.log.Warn("unhandled ui command", zap.String("method", cmd.MethodName()))
	}
	return Result{}, false
}

func (m *Manager) Update(dt time.Duration) {
	sec := dt.Seconds()
	m.texts.Each(func(h bridge.Handle, t *Text) {
		if t.Remaining <= 0 {
			return
		}
		t.Remaining -= sec
		if t.Remaining <= 0 {
			m.texts.Release(h)
		}
	})
}

func (m *Manager) Snapshot() Property {
	p := Property{
		Depth:     len(m.stack),
		Stack:     append([]string(nil), m.stack...),
		TextCount: m.texts.Len(),
		Texts:     make([]Text, 0, m.texts.Len()),
	}
	if n := len(m.stack); n > 0 {
		p.Screen = m.stack[n-1]
	}
	m.texts.Each(func(_ bridge.Handle, t *Text) {
		p.Texts = append(p.Texts, *t)
	})
	sort.SliceStable(p.Texts, func(i, j int) bool {
		return p.Texts[i].Layer < p.Texts[j].Layer
	})
	return p
}
