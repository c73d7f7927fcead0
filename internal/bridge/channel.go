package bridge

import "sync"

// Channel is a many-producer, single-consumer command queue. Producers write
// to their own lane, so Enqueue never contends with other workers. Lanes
// outside the configured range share a mutex-guarded overflow lane.
//
// Order is FIFO within a lane only.
type Channel[C any] struct {
	lanes    []lane[C]
	mu       sync.Mutex
	overflow []C
	drained  []C
}

type lane[C any] struct {
	items []C
	_     [40]byte // keep neighbouring lanes off the same cache line
}

func NewChannel[C any](lanes int) *Channel[C] {
	if lanes < 1 {
		lanes = 1
	}
	return &Channel[C]{lanes: make([]lane[C], lanes)}
}

// Lanes returns the number of contention-free lanes.
func (c *Channel[C]) Lanes() int { return len(c.lanes) }

// Enqueue appends cmd to the given lane. A lane must be used by at most one
// goroutine at a time; the scheduler's lane index guarantees that.
func (c *Channel[C]) Enqueue(laneIdx int, cmd C) {
	if laneIdx >= 0 && laneIdx < len(c.lanes) {
		l := &c.lanes[laneIdx]
		l.items = append(l.items, cmd)
		return
	}
	c.mu.Lock()
	c.overflow = append(c.overflow, cmd)
	c.mu.Unlock()
}

// DrainAll returns every command enqueued since the previous drain, lane by
// lane, and leaves the channel empty. The returned slice is reused by the next
// DrainAll. Single consumer only, after producers have joined.
func (c *Channel[C]) DrainAll() []C {
	out := c.drained[:0]
	for i := range c.lanes {
		l := &c.lanes[i]
		out = append(out, l.items...)
		clear(l.items)
		l.items = l.items[:0]
	}
	c.mu.Lock()
	out = append(out, c.overflow...)
	c.overflow = c.overflow[:0]
	c.mu.Unlock()
	c.drained = out
	return out
}

// Len returns the number of pending commands. Not meaningful while producers run.
func (c *Channel[C]) Len() int {
	n := 0
	for i := range c.lanes {
		n += len(c.lanes[i].items)
	}
	c.mu.Lock()
	n += len(c.overflow)
	c.mu.Unlock()
	return n
}
