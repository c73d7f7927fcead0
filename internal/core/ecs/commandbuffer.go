package ecs

import "sync"

// Spawner builds an entity from a named prefab. Implemented by the game layer,
// which knows the component stores.
type Spawner interface {
	Spawn(w *World, prefab string) (EntityID, error)
}

// CommandBuffer records structural changes from parallel jobs and applies
// them serially during Cleanup. Each lane belongs to one worker; lanes beyond
// the configured count fall back to a mutex-guarded overflow lane.
type CommandBuffer struct {
	lanes    [][]func(*World)
	mu       sync.Mutex
	overflow []func(*World)
	spawner  Spawner
	onError  func(prefab string, err error)
}

func NewCommandBuffer(lanes int) *CommandBuffer {
	if lanes < 1 {
		lanes = 1
	}
	return &CommandBuffer{lanes: make([][]func(*World), lanes)}
}

// SetSpawner installs the prefab spawner used by Instantiate. errFn is called
// (serially) when a prefab cannot be built; it may be nil.
func (b *CommandBuffer) SetSpawner(s Spawner, errFn func(prefab string, err error)) {
	b.spawner = s
	b.onError = errFn
}

// Defer queues fn to run against the world at playback.
func (b *CommandBuffer) Defer(lane int, fn func(*World)) {
	if lane >= 0 && lane < len(b.lanes) {
		b.lanes[lane] = append(b.lanes[lane], fn)
		return
	}
	b.mu.Lock()
	b.overflow = append(b.overflow, fn)
	b.mu.Unlock()
}

// Instantiate queues a prefab spawn. then, if non-nil, receives the new
// entity at playback so the caller can set further components.
func (b *CommandBuffer) Instantiate(lane int, prefab string, then func(w *World, id EntityID)) {
	b.Defer(lane, func(w *World) {
		if b.spawner == nil {
			return
		}
		id, err := b.spawner.Spawn(w, prefab)
		if err != nil {
			if b.onError != nil {
				b.onError(prefab, err)
			}
			return
		}
		if then != nil {
			then(w, id)
		}
	})
}

// Destroy queues an entity for destruction at playback.
func (b *CommandBuffer) Destroy(lane int, id EntityID) {
	b.Defer(lane, func(w *World) { w.MarkForDestruction(id) })
}

// Len returns the number of queued commands.
func (b *CommandBuffer) Len() int {
	n := 0
	for _, l := range b.lanes {
		n += len(l)
	}
	b.mu.Lock()
	n += len(b.overflow)
	b.mu.Unlock()
	return n
}

// Playback applies every queued command in lane order, then the overflow
// lane, and empties the buffer. Loop goroutine only.
func (b *CommandBuffer) Playback(w *World) int {
	n := 0
	for i, l := range b.lanes {
		for _, fn := range l {
			fn(w)
			n++
		}
		b.lanes[i] = l[:0]
	}
	b.mu.Lock()
	overflow := b.overflow
	b.overflow = nil
	b.mu.Unlock()
	for _, fn := range overflow {
		fn(w)
		n++
	}
	return n
}
