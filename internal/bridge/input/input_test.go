package input

import (
	"testing"
	"time"

	"github.com/creaturesim/server/internal/core/vec"
	"go.uber.org/zap"
)

const tick = 50 * time.Millisecond

func TestSubmittedFramesPublishOnDrain(t *testing.T) {
	b := NewBridge(1, NewManager(zap.NewNop()), zap.NewNop())
	m := b.Manager()

	m.Submit(7, Frame{Tick: 3, Move: vec.V2(3, 4), Jump: true})
	if _, ok := b.Snapshot().Frames[7]; ok {
		t.Fatalf("frame visible before drain")
	}
	b.Drain(tick)

	f := b.Snapshot().Frame(7)
	if !f.Jump || f.Tick != 3 {
		t.Fatalf("frame = %+v", f)
	}
	if l := f.Move.Len(); l < 0.999 || l > 1.001 {
		t.Fatalf("stick not clamped to unit length: %v", l)
	}
}

func TestOlderFramesAreDropped(t *testing.T) {
	b := NewBridge(1, NewManager(zap.NewNop()), zap.NewNop())
	m := b.Manager()

	m.Submit(1, Frame{Tick: 10, Jump: true})
	m.Submit(1, Frame{Tick: 9})
	b.Drain(tick)
	m.Submit(1, Frame{Tick: 8})
	b.Drain(tick)

	if f := b.Snapshot().Frame(1); f.Tick != 10 || !f.Jump {
		t.Fatalf("frame = %+v, want tick 10", f)
	}
	if m.Stale() != 2 {
		t.Fatalf("stale = %d, want 2", m.Stale())
	}
}

func TestDisableAndReset(t *testing.T) {
	b := NewBridge(1, NewManager(zap.NewNop()), zap.NewNop())
	m := b.Manager()
	m.Submit(1, Frame{Tick: 1, Ability: true})
	m.Submit(2, Frame{Tick: 1, Ability: true})
	b.Drain(tick)

	b.SetInputEnabled(0, 0, false)
	b.Drain(tick)
	if p := b.Snapshot(); p.Enabled || len(p.Frames) != 0 {
		t.Fatalf("disabled snapshot = %+v", p)
	}

	b.SetInputEnabled(0, 0, true)
	b.ResetInput(0, 0, 1)
	b.Drain(tick)
	p := b.Snapshot()
	if _, ok := p.Frames[1]; ok {
		t.Fatalf("owner 1 survived ResetInput")
	}
	if !p.Frame(2).Ability {
		t.Fatalf("owner 2 lost its frame")
	}

	b.ResetInput(0, 0, 0)
	b.Drain(tick)
	if n := len(b.Snapshot().Frames); n != 0 {
		t.Fatalf("frames after reset-all = %d", n)
	}
}
