package ui

import (
	"testing"
	"time"

	"github.com/creaturesim/server/internal/core/vec"
	"go.uber.org/zap"
)

const tick = 50 * time.Millisecond

func TestScreenStack(t *testing.T) {
	b := NewBridge(1, NewManager([]string{"hud", "pause"}, zap.NewNop()), zap.NewNop())

	b.OpenScreen(0, 1, "hud")
	b.OpenScreen(0, 1, "pause")
	b.OpenScreen(0, 1, "pause")
	b.OpenScreen(0, 1, "inventory")
	b.Drain(tick)
	p := b.Snapshot()
	if p.Screen != "pause" || p.Depth != 2 {
		t.Fatalf("after opens: screen=%q depth=%d", p.Screen, p.Depth)
	}

	b.Back(0, 1)
	b.Back(0, 1)
	b.Back(0, 1)
	b.Drain(tick)
	if p := b.Snapshot(); p.Screen != "" || p.Depth != 0 {
		t.Fatalf("after backs: screen=%q depth=%d", p.Screen, p.Depth)
	}
	if len(p.Stack) != 2 {
		t.Fatalf("earlier snapshot stack changed: %v", p.Stack)
	}
}

func TestNotReadyWithoutScreens(t *testing.T) {
	m := NewManager(nil, zap.NewNop())
	b := NewBridge(1, m, zap.NewNop())
	b.OpenScreen(0, 1, "hud")
	b.Drain(tick)
	if b.Skipped() != 1 || b.Pending() != 1 {
		t.Fatalf("skipped=%d pending=%d", b.Skipped(), b.Pending())
	}
	m.Register("hud")
	b.Drain(tick)
	if b.Snapshot().Screen != "hud" {
		t.Fatalf("queued OpenScreen lost across the skipped tick")
	}
}

func TestTextLifecycle(t *testing.T) {
	b := NewBridge(1, NewManager([]string{"hud"}, zap.NewNop()), zap.NewNop())
	b.AddText(0, 3, "hello", vec.V2(0.5, 0.5), 0, 2)
	b.AddText(0, 4, "under", vec.V2(0.1, 0.1), 0, 1)
	b.Drain(tick)
	b.BeginTick()

	id, ok := b.TryGetTextID(3)
	if !ok {
		t.Fatalf("text id missing")
	}
	p := b.Snapshot()
	if p.TextCount != 2 || p.Texts[0].Value != "under" {
		t.Fatalf("texts not layer ordered: %+v", p.Texts)
	}

	b.SetTextValue(0, 3, id, "bye")
	b.SetTextLayer(0, 3, id, 0)
	b.Drain(tick)
	if p := b.Snapshot(); p.Texts[0].Value != "bye" {
		t.Fatalf("edits not applied: %+v", p.Texts)
	}

	b.SetTextDuration(0, 3, id, 0.05)
	b.Drain(tick)
	if n := b.Snapshot().TextCount; n != 1 {
		t.Fatalf("timed text not expired, count = %d", n)
	}

	b.RemoveText(0, 3, id)
	b.SetTextPosition(0, 3, id, vec.V2(1, 1))
	b.Drain(tick)
	if n := b.Snapshot().TextCount; n != 1 {
		t.Fatalf("stale handle touched another text, count = %d", n)
	}
}
