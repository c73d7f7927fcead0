package creature

import "github.com/creaturesim/server/internal/core/vec"

// Think advances the brain one tick and writes the resulting input.
func (b *DummyBrain) Think(in *DummyInput) {
	b.ticks++
	if in.Direction.IsZero() {
		in.Direction = vec.V2(0, 1)
	}
	if b.TurnRate != 0 {
		in.Direction = in.Direction.Rotate(b.TurnRate)
	}
	in.Magnitude = vec.Clamp01(b.Magnitude)
	in.Jump = b.JumpEvery > 0 && b.ticks%b.JumpEvery == 0
}
