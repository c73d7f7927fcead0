package system

import (
	"math"
	"time"

	"github.com/creaturesim/server/internal/bridge/audio"
	"github.com/creaturesim/server/internal/bridge/input"
	"github.com/creaturesim/server/internal/core/ecs"
	coresys "github.com/creaturesim/server/internal/core/system"
	"github.com/creaturesim/server/internal/core/vec"
	"github.com/creaturesim/server/internal/creature"
)

// PlayerInputSystem copies last drain's input snapshot into every player's
// PlayerInput. Phase 1 (PreUpdate).
type PlayerInputSystem struct {
	world *creature.World
	input *input.Bridge
}

func NewPlayerInputSystem(w *creature.World, in *input.Bridge) *PlayerInputSystem {
	return &PlayerInputSystem{world: w, input: in}
}

func (s *PlayerInputSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *PlayerInputSystem) Update(_ time.Duration) {
	snap := s.input.Snapshot()
	s.world.PlayerInputs.Each(func(_ ecs.EntityID, in *creature.PlayerInput) {
		f := snap.Frame(in.Owner)
		in.Apply(f.Move, f.Jump, f.Ability)
	})
}

// DummyBrainSystem lets every dummy think once per confirmed tick.
// Phase 1 (PreUpdate).
type DummyBrainSystem struct {
	world *creature.World
	sched *ecs.Scheduler
}

func NewDummyBrainSystem(w *creature.World, sched *ecs.Scheduler) *DummyBrainSystem {
	return &DummyBrainSystem{world: w, sched: sched}
}

func (s *DummyBrainSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *DummyBrainSystem) Update(_ time.Duration) {
	ecs.ParallelEach2(s.sched, s.world.Brains, s.world.DummyInputs,
		func(_ int, _ ecs.EntityID, b *creature.DummyBrain, in *creature.DummyInput) {
			b.Think(in)
		})
}

// HistorySystem captures the predicted state and the inputs of the tick
// about to be predicted. Registered last in PreUpdate so the inputs are
// final. Phase 1 (PreUpdate).
type HistorySystem struct {
	world   *creature.World
	clock   *coresys.Clock
	history *creature.History
}

func NewHistorySystem(w *creature.World, clock *coresys.Clock, h *creature.History) *HistorySystem {
	return &HistorySystem{world: w, clock: clock, history: h}
}

func (s *HistorySystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *HistorySystem) Update(_ time.Duration) {
	s.history.Push(s.world.Capture(s.clock.Tick()))
}

// MotionSystem steps the motion state machine of every creature in
// parallel. One-shot effects (ability spawns, jump sounds) only happen on
// the first full prediction tick. Phase 2 (Prediction).
type MotionSystem struct {
	world    *creature.World
	sched    *ecs.Scheduler
	clock    *coresys.Clock
	audio    *audio.Bridge
	jumpClip string
}

func NewMotionSystem(w *creature.World, sched *ecs.Scheduler, clock *coresys.Clock, a *audio.Bridge, jumpClip string) *MotionSystem {
	return &MotionSystem{world: w, sched: sched, clock: clock, audio: a, jumpClip: jumpClip}
}

func (s *MotionSystem) Phase() coresys.Phase { return coresys.PhasePrediction }

func (s *MotionSystem) Update(_ time.Duration) {
	w := s.world
	first := s.clock.FirstFullPredictionTick()
	ecs.ParallelEach3(s.sched, w.Cores, w.Transforms, w.Velocities,
		func(lane int, id ecs.EntityID, c *creature.CreatureCore, tr *creature.Transform, v *creature.Velocity) {
			var in creature.MotionInput
			var ability bool
			if p, ok := w.PlayerInputs.Get(id); ok {
				in = creature.PlayerMotionInput(p)
				ability = p.Ability
			} else if d, ok := w.DummyInputs.Get(id); ok {
				in = creature.DummyMotionInput(d)
			}

			before := c.MotionX
			creature.StepMotion(c, tr, v, in)
			if !first {
				return
			}
			if c.MotionX == creature.MotionJump && before != creature.MotionJump && s.audio != nil && s.jumpClip != "" {
				s.audio.PlayPointSoundFX(lane, id, s.jumpClip, tr.Position, 1, 1, 30)
			}
			if ability {
				if a, ok := w.Abilities.Get(id); ok {
					s.spawnAbility(lane, a.Prefab, *tr)
				}
			}
		})
}

// spawnAbility defers the ability prefab in front of the caster, turning
// its prefab velocity into the caster's facing.
func (s *MotionSystem) spawnAbility(lane int, prefab string, caster creature.Transform) {
	w := s.world
	w.Commands().Instantiate(lane, prefab, func(_ *ecs.World, id ecs.EntityID) {
		fwd := vec.V3(math.Sin(caster.Yaw), 0, math.Cos(caster.Yaw))
		if tr, ok := w.Transforms.Get(id); ok {
			tr.Position = caster.Position.Add(fwd.Scale(0.5)).Add(vec.V3(0, 0.5, 0))
			tr.Yaw = caster.Yaw
		}
		if v, ok := w.Velocities.Get(id); ok {
			v.Linear = faceYaw(v.Linear, caster.Yaw)
		}
	})
}

// faceYaw rotates a local velocity (+Z forward) into world space.
func faceYaw(local vec.Vec3, yaw float64) vec.Vec3 {
	sin, cos := math.Sin(yaw), math.Cos(yaw)
	return vec.V3(local.X*cos+local.Z*sin, local.Y, -local.X*sin+local.Z*cos)
}

// PhysicsSystem integrates creatures with gravity and ground contact, and
// moves everything else in a straight line. Phase 2 (Prediction).
type PhysicsSystem struct {
	world   *creature.World
	sched   *ecs.Scheduler
	gravity float64
}

func NewPhysicsSystem(w *creature.World, sched *ecs.Scheduler, gravity float64) *PhysicsSystem {
	return &PhysicsSystem{world: w, sched: sched, gravity: gravity}
}

func (s *PhysicsSystem) Phase() coresys.Phase { return coresys.PhasePrediction }

func (s *PhysicsSystem) Update(dt time.Duration) {
	w := s.world
	ecs.ParallelEach2(s.sched, w.Transforms, w.Velocities,
		func(_ int, id ecs.EntityID, tr *creature.Transform, v *creature.Velocity) {
			if c, ok := w.Cores.Get(id); ok {
				creature.StepPhysics(c, tr, v, dt, s.gravity)
				return
			}
			creature.Integrate(tr, v, dt)
		})
}

// LifetimeSystem counts down Lifetime components and destroys expired
// entities. Phase 1 (PreUpdate).
type LifetimeSystem struct {
	world *creature.World
}

func NewLifetimeSystem(w *creature.World) *LifetimeSystem {
	return &LifetimeSystem{world: w}
}

func (s *LifetimeSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *LifetimeSystem) Update(_ time.Duration) {
	cmds := s.world.Commands()
	s.world.Lifetimes.Each(func(id ecs.EntityID, l *creature.Lifetime) {
		l.Ticks--
		if l.Ticks == 0 {
			cmds.Destroy(0, id)
		}
	})
}
