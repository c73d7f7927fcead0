package ecs

// World is the top-level ECS container. It owns the entity pool, the component
// registry, a deferred command buffer and a deferred destruction queue, both
// flushed by CleanupSystem each tick.
type World struct {
	pool         *EntityPool
	registry     *Registry
	commands     *CommandBuffer
	destroyQueue []EntityID
}

func NewWorld(lanes int) *World {
	w := &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 64),
	}
	w.commands = NewCommandBuffer(lanes)
	return w
}

func (w *World) Pool() *EntityPool        { return w.pool }
func (w *World) Registry() *Registry      { return w.registry }
func (w *World) Commands() *CommandBuffer { return w.commands }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// MarkForDestruction queues an entity for end-of-tick cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// FlushDestroyQueue destroys all queued entities and clears their components.
// Called by CleanupSystem at the end of each tick.
func (w *World) FlushDestroyQueue() {
	for _, id := range w.destroyQueue {
		if !w.pool.Alive(id) {
			continue
		}
		w.registry.RemoveAll(id)
		w.pool.Destroy(id)
	}
	w.destroyQueue = w.destroyQueue[:0]
}

// NewStore creates a component store and registers it for bulk removal.
func NewStore[T any](w *World) *PtrComponentStore[T] {
	s := NewPtrComponentStore[T]()
	w.registry.Register(s)
	return s
}
