package creature

import "github.com/creaturesim/server/internal/core/ecs"

// World is the ECS world with the creature component stores registered.
type World struct {
	*ecs.World

	Cores        *ecs.PtrComponentStore[CreatureCore]
	Transforms   *ecs.PtrComponentStore[Transform]
	Velocities   *ecs.PtrComponentStore[Velocity]
	PlayerInputs *ecs.PtrComponentStore[PlayerInput]
	DummyInputs  *ecs.PtrComponentStore[DummyInput]
	Brains       *ecs.PtrComponentStore[DummyBrain]
	Abilities    *ecs.PtrComponentStore[Ability]
	Lifetimes    *ecs.PtrComponentStore[Lifetime]
	Tags         *ecs.PtrComponentStore[Tag]
	Sprites      *ecs.PtrComponentStore[SpriteDrawBuffer]
	Shadows      *ecs.PtrComponentStore[ShadowDrawBuffer]
	Simulations  *ecs.PtrComponentStore[Simulation]
}

func NewWorld(lanes int) *World {
	w := ecs.NewWorld(lanes)
	return &World{
		World:        w,
		Cores:        ecs.NewStore[CreatureCore](w),
		Transforms:   ecs.NewStore[Transform](w),
		Velocities:   ecs.NewStore[Velocity](w),
		PlayerInputs: ecs.NewStore[PlayerInput](w),
		DummyInputs:  ecs.NewStore[DummyInput](w),
		Brains:       ecs.NewStore[DummyBrain](w),
		Abilities:    ecs.NewStore[Ability](w),
		Lifetimes:    ecs.NewStore[Lifetime](w),
		Tags:         ecs.NewStore[Tag](w),
		Sprites:      ecs.NewStore[SpriteDrawBuffer](w),
		Shadows:      ecs.NewStore[ShadowDrawBuffer](w),
		Simulations:  ecs.NewStore[Simulation](w),
	}
}

// PlayerByOwner returns the player entity controlled by owner.
func (w *World) PlayerByOwner(owner uint64) (ecs.EntityID, bool) {
	var found ecs.EntityID
	w.PlayerInputs.Each(func(id ecs.EntityID, in *PlayerInput) {
		if in.Owner == owner && (found == 0 || id < found) {
			found = id
		}
	})
	return found, found != 0
}

// Started reports whether the simulation singleton exists.
func (w *World) Started() bool { return w.Simulations.Len() > 0 }
