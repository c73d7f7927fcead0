package camera

import (
	"math"
	"time"

	"github.com/creaturesim/server/internal/core/vec"
	"go.uber.org/zap"
)

const (
	shakeFrequency = 25.0 // Hz
	minFOV         = 10.0
	maxFOV         = 150.0
)

// Rig is the camera pose. Rotation holds Euler angles in degrees.
type Rig struct {
	Position    vec.Vec3
	Rotation    vec.Vec3
	FieldOfView float64
}

// Property is the per-tick camera snapshot.
type Property struct {
	Position    vec.Vec3 `json:"position"` // includes the shake offset
	Rotation    vec.Vec3 `json:"rotation"`
	FieldOfView float64  `json:"fov"`
	Shaking     bool     `json:"shaking"`
	ShakeOffset vec.Vec3 `json:"shake_offset"`
	Moving      bool     `json:"moving"`
}

type shake struct {
	active    bool
	strength  float64
	duration  float64
	elapsed   float64
	direction vec.Vec3
}

type glide struct {
	active         bool
	fromPos, toPos vec.Vec3
	fromRot, toRot vec.Vec3
	duration       float64
	elapsed        float64
}

// Manager owns the camera rig. It is ready once a rig is attached.
type Manager struct {
	attached bool
	rig      Rig
	shake    shake
	glide    glide
	offset   vec.Vec3
	log      *zap.Logger
}

func NewManager(log *zap.Logger) *Manager {
	return &Manager{log: log}
}

// Attach installs the initial rig pose and marks the camera ready.
func (m *Manager) Attach(r Rig) {
	if r.FieldOfView == 0 {
		r.FieldOfView = 60
	}
	m.rig = r
	m.attached = true
}

func (m *Manager) Ready() bool { return m.attached }

func (m *Manager) Apply(cmd Command) (struct{}, bool) {
	switch c := cmd.(type) {
	case ShakeCamera:
		dir := c.Direction.Normalize()
		if dir.IsZero() {
			dir = vec.V3(1, 1, 0).Normalize()
		}
		m.shake = shake{
			active:    c.Duration > 0 && c.Strength > 0,
			strength:  math.Max(0, c.Strength),
			duration:  math.Max(0, c.Duration),
			direction: dir,
		}
		if !m.shake.active {
			m.offset = vec.Vec3{}
		}
	case StopShaking:
		m.shake = shake{}
		m.offset = vec.Vec3{}
	case MoveCamera:
		if c.Duration <= 0 {
			m.glide = glide{}
			m.rig.Position = c.Position
			m.rig.Rotation = c.Rotation
			break
		}
		m.glide = glide{
			active:   true,
			fromPos:  m.rig.Position,
			toPos:    c.Position,
			fromRot:  m.rig.Rotation,
			toRot:    c.Rotation,
			duration: c.Duration,
		}
	case SetFieldOfView:
		m.rig.FieldOfView = math.Min(maxFOV, math.Max(minFOV, c.Degrees))
	default:
		m.log.Warn("unhandled camera command", zap.String("method", cmd.MethodName()))
	}
	return struct{}{}, false
}

func (m *Manager) Update(dt time.Duration) {
	sec := dt.Seconds()

	if m.glide.active {
		m.glide.elapsed += sec
		t := vec.Clamp01(m.glide.elapsed / m.glide.duration)
		m.rig.Position = m.glide.fromPos.Lerp(m.glide.toPos, t)
		m.rig.Rotation = m.glide.fromRot.Lerp(m.glide.toRot, t)
		if t >= 1 {
			m.glide = glide{}
		}
	}

	if m.shake.active {
		m.shake.elapsed += sec
		if m.shake.elapsed >= m.shake.duration {
			m.shake = shake{}
			m.offset = vec.Vec3{}
		} else {
			decay := 1 - m.shake.elapsed/m.shake.duration
			wave := math.Sin(2 * math.Pi * shakeFrequency * m.shake.elapsed)
			m.offset = m.shake.direction.Scale(m.shake.strength * decay * wave)
		}
	}
}

func (m *Manager) Snapshot() Property {
	return Property{
		Position:    m.rig.Position.Add(m.offset),
		Rotation:    m.rig.Rotation,
		FieldOfView: m.rig.FieldOfView,
		Shaking:     m.shake.active,
		ShakeOffset: m.offset,
		Moving:      m.glide.active,
	}
}
