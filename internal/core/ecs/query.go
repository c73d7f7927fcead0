package ecs

// Each2 iterates, in ascending entity order, over entities that have both
// component A and B. Serial counterpart of ParallelEach2 for loop-goroutine
// systems that need a stable order.
func Each2[A, B any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], fn func(EntityID, *A, *B)) {
	for _, id := range matching2(sa, sb) {
		fn(id, sa.data[id], sb.data[id])
	}
}

// Each3 iterates, in ascending entity order, over entities that have A, B and C.
func Each3[A, B, C any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], sc *PtrComponentStore[C], fn func(EntityID, *A, *B, *C)) {
	for _, id := range matching2(sa, sb) {
		c, ok := sc.data[id]
		if !ok {
			continue
		}
		fn(id, sa.data[id], sb.data[id], c)
	}
}
