package ecs

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestEntityPoolReusesIndexWithNewGeneration(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	if a.IsZero() {
		t.Fatalf("first entity must not be the zero id")
	}
	p.Destroy(a)
	if p.Alive(a) {
		t.Fatalf("destroyed entity still alive")
	}
	b := p.Create()
	if b.Index() != a.Index() {
		t.Fatalf("expected index reuse, got %d want %d", b.Index(), a.Index())
	}
	if b.Generation() == a.Generation() {
		t.Fatalf("generation not bumped on reuse")
	}
	p.Destroy(a) // stale, must be ignored
	if !p.Alive(b) {
		t.Fatalf("stale destroy killed the new entity")
	}
	if p.Count() != 1 {
		t.Fatalf("count = %d, want 1", p.Count())
	}
}

func TestParallelEachVisitsEveryEntityOnce(t *testing.T) {
	w := NewWorld(4)
	counts := NewStore[int](w)
	for i := 0; i < 1000; i++ {
		id := w.CreateEntity()
		v := 0
		counts.Set(id, &v)
	}

	sched := NewScheduler(4)
	var visited atomic.Int64
	var badLane atomic.Bool
	ParallelEach(sched, counts, func(lane int, _ EntityID, v *int) {
		if lane < 0 || lane >= sched.Workers() {
			badLane.Store(true)
		}
		*v++
		visited.Add(1)
	})

	if visited.Load() != 1000 {
		t.Fatalf("visited %d entities, want 1000", visited.Load())
	}
	if badLane.Load() {
		t.Fatalf("job received a lane outside the worker range")
	}
	counts.Each(func(id EntityID, v *int) {
		if *v != 1 {
			t.Fatalf("entity %d visited %d times", id, *v)
		}
	})
}

func TestParallelEach2OnlyMatchesBothStores(t *testing.T) {
	w := NewWorld(2)
	a := NewStore[int](w)
	b := NewStore[string](w)
	both := w.CreateEntity()
	onlyA := w.CreateEntity()
	one, two := 1, 2
	s := "x"
	a.Set(both, &one)
	a.Set(onlyA, &two)
	b.Set(both, &s)

	var seen []EntityID
	ParallelEach2(NewScheduler(1), a, b, func(_ int, id EntityID, _ *int, _ *string) {
		seen = append(seen, id)
	})
	if len(seen) != 1 || seen[0] != both {
		t.Fatalf("seen = %v, want [%d]", seen, both)
	}
}

type stubSpawner struct {
	store *PtrComponentStore[string]
	fail  bool
}

func (s *stubSpawner) Spawn(w *World, prefab string) (EntityID, error) {
	if s.fail {
		return 0, errors.New("no such prefab")
	}
	id := w.CreateEntity()
	p := prefab
	s.store.Set(id, &p)
	return id, nil
}

func TestCommandBufferPlaybackAppliesInstantiateAndDestroy(t *testing.T) {
	w := NewWorld(2)
	names := NewStore[string](w)
	w.Commands().SetSpawner(&stubSpawner{store: names}, nil)

	victim := w.CreateEntity()
	v := "victim"
	names.Set(victim, &v)

	var spawned EntityID
	w.Commands().Instantiate(1, "fireball", func(_ *World, id EntityID) { spawned = id })
	w.Commands().Destroy(7, victim) // lane out of range -> overflow lane

	if got := w.Commands().Len(); got != 2 {
		t.Fatalf("queued = %d, want 2", got)
	}
	if n := w.Commands().Playback(w); n != 2 {
		t.Fatalf("played back %d commands, want 2", n)
	}
	w.FlushDestroyQueue()

	if spawned.IsZero() {
		t.Fatalf("instantiate callback not invoked")
	}
	if name, ok := names.Get(spawned); !ok || *name != "fireball" {
		t.Fatalf("spawned entity has no prefab component")
	}
	if w.Alive(victim) || names.Has(victim) {
		t.Fatalf("victim not destroyed")
	}
	if w.Commands().Len() != 0 {
		t.Fatalf("buffer not emptied by playback")
	}
}

func TestCommandBufferReportsSpawnErrors(t *testing.T) {
	w := NewWorld(1)
	var failed string
	w.Commands().SetSpawner(&stubSpawner{fail: true}, func(prefab string, _ error) { failed = prefab })
	w.Commands().Instantiate(0, "missing", nil)
	w.Commands().Playback(w)
	if failed != "missing" {
		t.Fatalf("error callback got %q", failed)
	}
}

func TestRegistryStripsDestroyedEntity(t *testing.T) {
	w := NewWorld(1)
	names := NewStore[string](w)
	hp := NewStore[int](w)
	if w.Registry().Len() != 2 {
		t.Fatalf("registered stores = %d, want 2", w.Registry().Len())
	}

	id := w.CreateEntity()
	name, health := "bot", 10
	names.Set(id, &name)
	hp.Set(id, &health)
	if n := w.Registry().Components(id); n != 2 {
		t.Fatalf("components = %d, want 2", n)
	}

	if n := w.Registry().RemoveAll(id); n != 2 {
		t.Fatalf("RemoveAll stripped %d stores, want 2", n)
	}
	if names.Has(id) || hp.Has(id) || w.Registry().Components(id) != 0 {
		t.Fatal("entity data left behind")
	}
}
