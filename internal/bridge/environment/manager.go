package environment

import (
	"image/color"
	"math"
	"time"

	"github.com/creaturesim/server/internal/bridge"
	"github.com/creaturesim/server/internal/core/vec"
	"go.uber.org/zap"
)

// Light is one point light as seen by observers.
type Light struct {
	ID        bridge.Handle `json:"id"`
	Color     color.RGBA    `json:"color"`
	Intensity float64       `json:"intensity"`
	Position  vec.Vec3      `json:"position"`
	Range     float64       `json:"range"`
	Remaining float64       `json:"remaining"` // seconds; 0 = permanent
}

// Result carries the handle produced by AddLight.
type Result struct {
	LightID bridge.Handle
}

// Property is the per-tick environment snapshot.
type Property struct {
	TimeOfDay    float64 `json:"time_of_day"`
	SunIntensity float64 `json:"sun_intensity"`
	LightCount   int     `json:"light_count"`
	Lights       []Light `json:"lights"`
}

// Manager owns the day clock and the light pool.
type Manager struct {
	hours  float64
	lights *bridge.Pool[Light]
	log    *zap.Logger
}

func NewManager(startHours float64, log *zap.Logger) *Manager {
	return &Manager{
		hours:  wrapHours(startHours),
		lights: bridge.NewPool[Light](16),
		log:    log,
	}
}

func (m *Manager) Ready() bool { return true }

func (m *Manager) Apply(cmd Command) (Result, bool) {
	switch c := cmd.(type) {
	case SetTimeOfDay:
		m.hours = wrapHours(c.Hours)
	case AddLight:
		h, l := m.lights.Acquire()
		*l = Light{
			ID:        h,
			Color:     c.Color,
			Intensity: math.Max(0, c.Intensity),
			Position:  c.Position,
			Range:     math.Max(0, c.Range),
			Remaining: math.Max(0, c.Duration),
		}
		return Result{LightID: h}, true
	case SetLightColor:
		if l := m.light(c.Light, cmd); l != nil {
			l.Color = c.Color
		}
	case SetLightIntensity:
		if l := m.light(c.Light, cmd); l != nil {
			l.Intensity = math.Max(0, c.Intensity)
		}
	case SetLightPosition:
		if l := m.light(c.Light, cmd); l != nil {
			l.Position = c.Position
		}
	case SetLightDuration:
		if l := m.light(c.Light, cmd); l != nil {
			l.Remaining = math.Max(0, c.Duration)
		}
	case SetLightRange:
		if l := m.light(c.Light, cmd); l != nil {
			l.Range = math.Max(0, c.Range)
		}
	case RemoveLight:
		m.lights.Release(c.Light)
	default:
		m.log.Warn("unhandled environment command", zap.String("method", cmd.MethodName()))
	}
	return Result{}, false
}

func (m *Manager) light(h bridge.Handle, cmd Command) *Light {
	l, ok := m.lights.Get(h)
	if !ok {
		m.log.Debug("stale light handle",
			zap.String("method", cmd.MethodName()),
			zap.Stringer("light", h),
		)
		return nil
	}
	return l
}

func (m *Manager) Update(dt time.Duration) {
	sec := dt.Seconds()
	var expired []bridge.Handle
	m.lights.Each(func(h bridge.Handle, l *Light) {
		if l.Remaining <= 0 {
			return
		}
		l.Remaining -= sec
		if l.Remaining <= 0 {
			expired = append(expired, h)
		}
	})
	for _, h := range expired {
		m.lights.Release(h)
	}
}

func (m *Manager) Snapshot() Property {
	p := Property{
		TimeOfDay:    m.hours,
		SunIntensity: SunIntensity(m.hours),
		LightCount:   m.lights.Len(),
		Lights:       make([]Light, 0, m.lights.Len()),
	}
	m.lights.Each(func(_ bridge.Handle, l *Light) {
		p.Lights = append(p.Lights, *l)
	})
	return p
}

// SunIntensity is 0 from 18:00 to 06:00 and peaks at 1 at noon.
func SunIntensity(hours float64) float64 {
	return math.Max(0, math.Sin(math.Pi*(hours-6)/12))
}

func wrapHours(h float64) float64 {
	h = math.Mod(h, 24)
	if h < 0 {
		h += 24
	}
	return h
}
