package creature

import (
	"time"

	"github.com/creaturesim/server/internal/core/vec"
)

// GroundHeight is the y of the flat ground plane.
const GroundHeight = 0.0

// StepPhysics consumes the knock vector into velocity, applies gravity and
// integrates position, clamping creatures to the ground plane.
func StepPhysics(c *CreatureCore, tr *Transform, v *Velocity, dt time.Duration, gravity float64) {
	sec := dt.Seconds()

	if !c.KnockVector.IsZero() {
		v.Linear = v.Linear.Add(c.KnockVector)
		c.KnockVector = vec.Vec3{}
	}
	if !c.IsGrounded || v.Linear.Y > 0 {
		v.Linear.Y -= gravity * sec
	}

	tr.Position = tr.Position.Add(v.Linear.Scale(sec))
	if tr.Position.Y <= GroundHeight && v.Linear.Y <= 0 {
		tr.Position.Y = GroundHeight
		v.Linear.Y = 0
		c.IsGrounded = true
	} else {
		c.IsGrounded = false
	}
}

// Integrate moves a non-creature body in a straight line.
func Integrate(tr *Transform, v *Velocity, dt time.Duration) {
	tr.Position = tr.Position.Add(v.Linear.Scale(dt.Seconds()))
}
