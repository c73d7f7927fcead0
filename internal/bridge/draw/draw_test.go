package draw

import (
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/creaturesim/server/internal/core/vec"
	"go.uber.org/zap"
)

const tick = 50 * time.Millisecond

var green = color.RGBA{G: 255, A: 255}

func TestSingleTickPrimitive(t *testing.T) {
	b := NewBridge(1, NewManager(0, zap.NewNop()), zap.NewNop())
	b.DrawLine(0, 1, vec.Vec3{}, vec.V3(1, 1, 1), green, 0)
	b.Drain(tick)
	if n := b.Snapshot().Count; n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
	b.Drain(tick)
	if n := b.Snapshot().Count; n != 0 {
		t.Fatalf("zero-duration line survived a second tick")
	}
}

func TestTimedPrimitivesAndClear(t *testing.T) {
	b := NewBridge(1, NewManager(0, zap.NewNop()), zap.NewNop())
	b.DrawBox(0, 1, vec.Vec3{}, vec.V3(1, 2, 1), green, 0.12)
	b.DrawSphere(0, 2, vec.V3(0, 1, 0), -1, green, 10)
	b.Drain(tick)

	p := b.Snapshot()
	if p.Count != 2 || p.Primitives[1].Radius != 0 || p.Primitives[1].Source != 2 {
		t.Fatalf("snapshot = %+v", p)
	}
	b.Drain(tick)
	b.Drain(tick)
	if n := b.Snapshot().Count; n != 2 {
		t.Fatalf("count after 0.1s = %d, want 2", n)
	}
	b.Drain(tick)
	if n := b.Snapshot().Count; n != 1 {
		t.Fatalf("count after box expiry = %d, want 1", n)
	}

	b.ClearDraw(0, 1)
	b.Drain(tick)
	if n := b.Snapshot().Count; n != 0 {
		t.Fatalf("count after clear = %d", n)
	}
}

func TestLimitAndParallelProducers(t *testing.T) {
	const lanes = 4
	b := NewBridge(lanes, NewManager(100, zap.NewNop()), zap.NewNop())

	var wg sync.WaitGroup
	for lane := 0; lane < lanes; lane++ {
		wg.Add(1)
		go func(lane int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				b.DrawSphere(lane, 1, vec.Vec3{}, 1, green, 0)
			}
		}(lane)
	}
	wg.Wait()

	if n := b.Drain(tick); n != 200 {
		t.Fatalf("drained %d commands, want 200", n)
	}
	if n := b.Snapshot().Count; n != 100 {
		t.Fatalf("count = %d, want limit 100", n)
	}
}
