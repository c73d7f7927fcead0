package creature

import (
	"github.com/creaturesim/server/internal/core/vec"
	"github.com/creaturesim/server/internal/data"
)

// Motion is the locomotion state of a creature.
type Motion uint8

const (
	MotionNone Motion = iota
	MotionIdle
	MotionMove
	MotionJump
)

func (m Motion) String() string {
	switch m {
	case MotionIdle:
		return "idle"
	case MotionMove:
		return "move"
	case MotionJump:
		return "jump"
	default:
		return "none"
	}
}

func (m Motion) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// CreatureCore is the per-creature motion state. Only the entity's own
// prediction job writes it, except KnockVector which physics consumes.
type CreatureCore struct {
	MotionX       Motion
	MotionXTick   uint32
	MotionXOffset vec.Vec2
	IsGrounded    bool
	KnockVector   vec.Vec3
}

// Transform is the world pose. Yaw is radians around +Y; 0 faces +Z.
type Transform struct {
	Position vec.Vec3
	Yaw      float64
}

type Velocity struct {
	Linear vec.Vec3
}

// PlayerInput holds one tick of an owner's controls. Jump and Ability are
// press edges: true only on the tick the button went down.
type PlayerInput struct {
	Owner   uint64
	Move    vec.Vec2
	Jump    bool
	Ability bool

	jumpHeld    bool
	abilityHeld bool
}

// Apply stores a sampled frame and derives the press edges.
func (p *PlayerInput) Apply(move vec.Vec2, jump, ability bool) {
	p.Move = move
	p.Jump = jump && !p.jumpHeld
	p.Ability = ability && !p.abilityHeld
	p.jumpHeld = jump
	p.abilityHeld = ability
}

// DummyInput is the AI-produced control for a dummy creature.
type DummyInput struct {
	Direction vec.Vec2
	Magnitude float64
	Jump      bool
}

// DummyBrain drives a DummyInput: turn at a constant rate, hop periodically.
type DummyBrain struct {
	TurnRate  float64
	Magnitude float64
	JumpEvery uint32
	ticks     uint32
}

// Ability names the prefab a player spawns on ability input.
type Ability struct {
	Prefab string
}

// Simulation marks the singleton entity whose existence opens the bridges.
type Simulation struct {
	StartTick uint64
}

// Lifetime destroys an entity after the given number of ticks.
type Lifetime struct {
	Ticks int
}

// Tag records which prefab built an entity.
type Tag struct {
	Prefab string
	Kind   data.PrefabKind
}

// DrawElement is one entry a renderer reads per presentation tick.
type DrawElement struct {
	Motion Motion   `json:"motion"`
	Offset vec.Vec2 `json:"offset"`
}

type SpriteDrawBuffer struct {
	Elements []DrawElement
}

type ShadowDrawBuffer struct {
	Elements []DrawElement
}
