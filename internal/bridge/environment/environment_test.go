package environment

import (
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/creaturesim/server/internal/core/vec"
	"go.uber.org/zap"
)

const tick = 100 * time.Millisecond

func TestTimeOfDayWrapsAndDrivesSun(t *testing.T) {
	b := NewBridge(1, NewManager(12, zap.NewNop()), zap.NewNop())
	if p := b.Snapshot(); p.SunIntensity != 1 {
		t.Fatalf("noon sun = %v, want 1", p.SunIntensity)
	}

	tests := []struct {
		hours    float64
		wantTime float64
		wantSun  float64
	}{
		{hours: 0, wantTime: 0, wantSun: 0},
		{hours: 30, wantTime: 6, wantSun: 0},
		{hours: -6, wantTime: 18, wantSun: 0},
		{hours: 9, wantTime: 9, wantSun: math.Sin(math.Pi / 4)},
	}
	for _, tt := range tests {
		b.SetTimeOfDay(0, 1, tt.hours)
		b.Drain(tick)
		p := b.Snapshot()
		if p.TimeOfDay != tt.wantTime {
			t.Fatalf("SetTimeOfDay(%v) time = %v, want %v", tt.hours, p.TimeOfDay, tt.wantTime)
		}
		if math.Abs(p.SunIntensity-tt.wantSun) > 1e-9 {
			t.Fatalf("SetTimeOfDay(%v) sun = %v, want %v", tt.hours, p.SunIntensity, tt.wantSun)
		}
	}
}

func TestAddLightPublishesHandleNextTick(t *testing.T) {
	b := NewBridge(1, NewManager(12, zap.NewNop()), zap.NewNop())
	red := color.RGBA{R: 255, A: 255}

	b.AddLight(0, 7, red, 2, vec.V3(1, 2, 3), 5, 0)
	b.Drain(tick)
	if _, ok := b.TryGetLightID(7); ok {
		t.Fatalf("light id visible in the drain tick")
	}

	b.BeginTick()
	id, ok := b.TryGetLightID(7)
	if !ok || id.IsZero() {
		t.Fatalf("light id not published: %v %v", id, ok)
	}
	if p := b.Snapshot(); p.LightCount != 1 || p.Lights[0].Color != red {
		t.Fatalf("snapshot = %+v", p)
	}

	b.SetLightIntensity(0, 7, id, -4)
	b.SetLightRange(0, 7, id, 9)
	b.Drain(tick)
	l := b.Snapshot().Lights[0]
	if l.Intensity != 0 || l.Range != 9 {
		t.Fatalf("light after edits = %+v", l)
	}

	b.RemoveLight(0, 7, id)
	b.SetLightColor(0, 7, id, red)
	b.Drain(tick)
	if n := b.Snapshot().LightCount; n != 0 {
		t.Fatalf("light count after remove = %d", n)
	}
}

func TestTimedLightExpires(t *testing.T) {
	b := NewBridge(1, NewManager(12, zap.NewNop()), zap.NewNop())
	b.AddLight(0, 1, color.RGBA{A: 255}, 1, vec.Vec3{}, 1, 0.25)
	b.Drain(tick)
	b.Drain(tick)
	if n := b.Snapshot().LightCount; n != 1 {
		t.Fatalf("light expired early, count = %d", n)
	}
	b.Drain(tick)
	if n := b.Snapshot().LightCount; n != 0 {
		t.Fatalf("light still alive after its duration, count = %d", n)
	}
}

func TestSnapshotDoesNotAliasPool(t *testing.T) {
	b := NewBridge(1, NewManager(12, zap.NewNop()), zap.NewNop())
	b.AddLight(0, 1, color.RGBA{A: 255}, 1, vec.Vec3{}, 1, 0)
	b.Drain(tick)
	before := b.Snapshot()
	b.BeginTick()
	id, _ := b.TryGetLightID(1)
	b.SetLightPosition(0, 1, id, vec.V3(5, 5, 5))
	b.Drain(tick)
	if !before.Lights[0].Position.IsZero() {
		t.Fatalf("old snapshot mutated by a later drain")
	}
}
