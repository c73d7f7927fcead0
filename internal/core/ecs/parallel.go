package ecs

import (
	"golang.org/x/sync/errgroup"
)

// Scheduler runs per-entity jobs in fork-join fashion. Each chunk of entities
// is handed to one goroutine together with a lane index in [0, Workers()).
// Lanes let jobs write to per-worker buffers (bridge channels, command buffer)
// without contention. Run returns only after every chunk has finished, which is
// the join barrier later phases rely on.
type Scheduler struct {
	workers  int
	minChunk int
}

// NewScheduler creates a scheduler with the given worker count. Fewer than one
// worker is treated as one (serial execution on lane 0).
func NewScheduler(workers int) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	return &Scheduler{workers: workers, minChunk: 16}
}

func (s *Scheduler) Workers() int { return s.workers }

// run splits ids into at most Workers() contiguous chunks and calls fn for each
// id on its chunk's lane. Small batches run serially on lane 0.
func (s *Scheduler) run(ids []EntityID, fn func(lane int, id EntityID)) {
	n := len(ids)
	if n == 0 {
		return
	}
	chunks := s.workers
	if max := (n + s.minChunk - 1) / s.minChunk; chunks > max {
		chunks = max
	}
	if chunks <= 1 {
		for _, id := range ids {
			fn(0, id)
		}
		return
	}

	size := (n + chunks - 1) / chunks
	var g errgroup.Group
	for lane := 0; lane < chunks; lane++ {
		lo := lane * size
		if lo >= n {
			break
		}
		hi := lo + size
		if hi > n {
			hi = n
		}
		lane, part := lane, ids[lo:hi]
		g.Go(func() error {
			for _, id := range part {
				fn(lane, id)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// ParallelEach runs fn for every entity in sa.
func ParallelEach[A any](s *Scheduler, sa *PtrComponentStore[A], fn func(lane int, id EntityID, a *A)) {
	s.run(sa.IDs(), func(lane int, id EntityID) {
		fn(lane, id, sa.data[id])
	})
}

// ParallelEach2 runs fn for every entity that has both A and B.
func ParallelEach2[A, B any](s *Scheduler, sa *PtrComponentStore[A], sb *PtrComponentStore[B], fn func(lane int, id EntityID, a *A, b *B)) {
	ids := matching2(sa, sb)
	s.run(ids, func(lane int, id EntityID) {
		fn(lane, id, sa.data[id], sb.data[id])
	})
}

// ParallelEach3 runs fn for every entity that has A, B and C.
func ParallelEach3[A, B, C any](s *Scheduler, sa *PtrComponentStore[A], sb *PtrComponentStore[B], sc *PtrComponentStore[C], fn func(lane int, id EntityID, a *A, b *B, c *C)) {
	ids := matching2(sa, sb)
	kept := ids[:0]
	for _, id := range ids {
		if sc.Has(id) {
			kept = append(kept, id)
		}
	}
	s.run(kept, func(lane int, id EntityID) {
		fn(lane, id, sa.data[id], sb.data[id], sc.data[id])
	})
}

func matching2[A, B any](sa *PtrComponentStore[A], sb *PtrComponentStore[B]) []EntityID {
	if sa.Len() <= sb.Len() {
		ids := sa.IDs()
		kept := ids[:0]
		for _, id := range ids {
			if sb.Has(id) {
				kept = append(kept, id)
			}
		}
		return kept
	}
	ids := sb.IDs()
	kept := ids[:0]
	for _, id := range ids {
		if sa.Has(id) {
			kept = append(kept, id)
		}
	}
	return kept
}
