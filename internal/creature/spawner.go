package creature

import (
	"fmt"

	"github.com/creaturesim/server/internal/core/ecs"
	"github.com/creaturesim/server/internal/core/vec"
	"github.com/creaturesim/server/internal/data"
)

// Spawner builds entities from the prefab table. It implements ecs.Spawner
// and is only called during command buffer playback.
type Spawner struct {
	world   *World
	prefabs *data.PrefabTable
}

func NewSpawner(w *World, prefabs *data.PrefabTable) *Spawner {
	return &Spawner{world: w, prefabs: prefabs}
}

func (s *Spawner) Spawn(_ *ecs.World, name string) (ecs.EntityID, error) {
	p := s.prefabs.Get(name)
	if p == nil {
		return 0, fmt.Errorf("unknown prefab %q", name)
	}
	w := s.world
	id := w.CreateEntity()

	w.Tags.Set(id, &Tag{Prefab: p.Name, Kind: p.Kind})
	w.Transforms.Set(id, &Transform{Position: vec.V3(p.Position[0], p.Position[1], p.Position[2])})
	w.Velocities.Set(id, &Velocity{Linear: vec.V3(p.Speed[0], p.Speed[1], p.Speed[2])})
	w.Sprites.Set(id, &SpriteDrawBuffer{Elements: make([]DrawElement, 1)})

	switch p.Kind {
	case data.PrefabPlayer, data.PrefabDummy:
		w.Cores.Set(id, &CreatureCore{IsGrounded: p.Position[1] <= GroundHeight})
		w.Shadows.Set(id, &ShadowDrawBuffer{Elements: make([]DrawElement, 1)})
		if p.Kind == data.PrefabPlayer {
			w.PlayerInputs.Set(id, &PlayerInput{})
			if p.Ability != "" {
				w.Abilities.Set(id, &Ability{Prefab: p.Ability})
			}
		} else {
			w.DummyInputs.Set(id, &DummyInput{})
			w.Brains.Set(id, &DummyBrain{
				TurnRate:  p.Dummy.TurnRate,
				Magnitude: p.Dummy.Magnitude,
				JumpEvery: uint32(max(0, p.Dummy.JumpEvery)),
			})
		}
	case data.PrefabObject:
		if p.Lifetime > 0 {
			w.Lifetimes.Set(id, &Lifetime{Ticks: p.Lifetime})
		}
	}
	return id, nil
}
