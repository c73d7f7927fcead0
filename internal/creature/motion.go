package creature

import (
	"math"

	"github.com/creaturesim/server/internal/core/vec"
)

const (
	MoveSpeed      = 5.0 // units per second
	JumpKnock      = 2.4 // vertical impulse added once per jump
	JumpKnockTick  = 5
	JumpGroundTick = 10 // the tick counter holds here until grounded
	JumpMaxTick    = 15
	JumpArcHeight  = 0.5 // sprite lift at the top of the jump
)

// MotionInput is the controller output a motion step consumes.
type MotionInput struct {
	Move vec.Vec2 // horizontal direction scaled by intent, X → world X, Y → world Z
	Jump bool
}

// PlayerMotionInput uses the raw stick vector.
func PlayerMotionInput(in *PlayerInput) MotionInput {
	return MotionInput{Move: in.Move, Jump: in.Jump}
}

// DummyMotionInput uses the normalized direction scaled by magnitude.
func DummyMotionInput(in *DummyInput) MotionInput {
	return MotionInput{Move: in.Direction.Normalize().Scale(in.Magnitude), Jump: in.Jump}
}

// StepMotion advances one creature's motion state machine by one tick.
// Every transition resets MotionXTick. Within Idle and Move the jump check
// runs after the move check, so jumping wins a tie.
func StepMotion(c *CreatureCore, tr *Transform, v *Velocity, in MotionInput) {
	switch c.MotionX {
	case MotionNone:
		transition(c, MotionIdle)

	case MotionIdle:
		v.Linear.X, v.Linear.Z = 0, 0
		c.MotionXTick++
		if !in.Move.IsZero() {
			transition(c, MotionMove)
		}
		if in.Jump && c.IsGrounded {
			transition(c, MotionJump)
		}

	case MotionMove:
		if !in.Move.IsZero() {
			applyHorizontal(tr, v, in.Move)
		}
		c.MotionXTick++
		if in.Move.IsZero() {
			transition(c, MotionIdle)
		}
		if in.Jump && c.IsGrounded {
			transition(c, MotionJump)
		}

	case MotionJump:
		applyHorizontal(tr, v, in.Move)
		if c.MotionXTick == JumpKnockTick {
			c.KnockVector.Y += JumpKnock
		}
		if c.MotionXTick != JumpGroundTick || c.IsGrounded {
			c.MotionXTick++
		}
		if c.MotionXTick > JumpMaxTick {
			transition(c, MotionIdle)
		}
	}

	c.MotionXOffset = motionOffset(c)
}

func transition(c *CreatureCore, to Motion) {
	c.MotionX = to
	c.MotionXTick = 0
}

// applyHorizontal sets horizontal velocity from move and turns to face it.
// A zero move stops horizontal motion without turning.
func applyHorizontal(tr *Transform, v *Velocity, move vec.Vec2) {
	v.Linear.X = move.X * MoveSpeed
	v.Linear.Z = move.Y * MoveSpeed
	if !move.IsZero() {
		tr.Yaw = math.Atan2(move.X, move.Y)
	}
}

// motionOffset lifts the sprite along a half-sine while jumping.
func motionOffset(c *CreatureCore) vec.Vec2 {
	if c.MotionX != MotionJump {
		return vec.Vec2{}
	}
	t := math.Min(float64(c.MotionXTick), JumpMaxTick) / JumpMaxTick
	return vec.V2(0, JumpArcHeight*math.Sin(math.Pi*t))
}
