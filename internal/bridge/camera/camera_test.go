package camera

import (
	"testing"
	"time"

	"github.com/creaturesim/server/internal/core/vec"
	"go.uber.org/zap"
)

const tick = 50 * time.Millisecond

func newAttached() *Bridge {
	m := NewManager(zap.NewNop())
	m.Attach(Rig{Position: vec.V3(0, 5, -10)})
	return NewBridge(2, m, zap.NewNop())
}

func TestCameraBridgeWaitsForRig(t *testing.T) {
	b := NewBridge(1, NewManager(zap.NewNop()), zap.NewNop())
	b.ShakeCamera(0, 1, 1, 1, vec.Vec3{})
	b.Drain(tick)
	if b.Pending() != 1 {
		t.Fatalf("command applied before a rig was attached")
	}
	b.Manager().Attach(Rig{})
	b.Drain(tick)
	if !b.Snapshot().Shaking {
		t.Fatalf("shake not applied after attach")
	}
}

func TestShakeDecaysAndEnds(t *testing.T) {
	b := newAttached()
	b.ShakeCamera(0, 1, 0.5, 0.2, vec.V3(1, 0, 0))
	b.Drain(tick)

	p := b.Snapshot()
	if !p.Shaking {
		t.Fatalf("not shaking after ShakeCamera")
	}
	if p.ShakeOffset.Y != 0 || p.ShakeOffset.Z != 0 {
		t.Fatalf("offset left the shake axis: %+v", p.ShakeOffset)
	}
	if p.ShakeOffset.Len() > 0.5 {
		t.Fatalf("offset %v exceeds strength", p.ShakeOffset)
	}

	for i := 0; i < 4; i++ {
		b.Drain(tick)
	}
	p = b.Snapshot()
	if p.Shaking || !p.ShakeOffset.IsZero() {
		t.Fatalf("shake still running after its duration: %+v", p)
	}
	if p.Position != vec.V3(0, 5, -10) {
		t.Fatalf("rig position drifted: %+v", p.Position)
	}
}

func TestStopShakingClearsOffset(t *testing.T) {
	b := newAttached()
	b.ShakeCamera(0, 1, 1, 10, vec.Vec3{})
	b.Drain(tick)
	b.StopShaking(0, 1)
	b.Drain(tick)
	if p := b.Snapshot(); p.Shaking || !p.ShakeOffset.IsZero() {
		t.Fatalf("shake survived StopShaking: %+v", p)
	}
}

func TestMoveCameraGlidesThenCuts(t *testing.T) {
	b := newAttached()
	b.MoveCamera(0, 1, vec.V3(10, 5, -10), vec.V3(0, 90, 0), 0.1)
	b.Drain(tick)
	mid := b.Snapshot()
	if !mid.Moving || mid.Position.X <= 0 || mid.Position.X >= 10 {
		t.Fatalf("glide midpoint = %+v", mid)
	}
	b.Drain(tick)
	end := b.Snapshot()
	if end.Moving || end.Position != vec.V3(10, 5, -10) || end.Rotation.Y != 90 {
		t.Fatalf("glide end = %+v", end)
	}

	b.MoveCamera(0, 1, vec.V3(0, 0, 0), vec.Vec3{}, 0)
	b.Drain(tick)
	if p := b.Snapshot(); !p.Position.IsZero() {
		t.Fatalf("cut did not move the rig: %+v", p.Position)
	}
}

func TestFieldOfViewIsClamped(t *testing.T) {
	b := newAttached()
	b.SetFieldOfView(0, 1, 500)
	b.Drain(tick)
	if fov := b.Snapshot().FieldOfView; fov != maxFOV {
		t.Fatalf("fov = %v, want %v", fov, maxFOV)
	}
}
