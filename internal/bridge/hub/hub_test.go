package hub

import (
	"sync"
	"testing"
	"time"

	"github.com/creaturesim/server/internal/bridge"
	"go.uber.org/zap"
)

type recorder struct {
	mu      sync.Mutex
	bridges map[string]int
}

func (r *recorder) Record(name string, _ bridge.Command) {
	r.mu.Lock()
	r.bridges[name]++
	r.mu.Unlock()
}

func TestHubDrainOrderAndJournal(t *testing.T) {
	h := New(Options{Lanes: 2, SampleRate: 8000, Screens: []string{"hud"}, StartHours: 8}, zap.NewNop())
	rec := &recorder{bridges: make(map[string]int)}
	h.SetJournal(rec)

	all := h.All()
	if len(all) != 8 {
		t.Fatalf("All() = %d bridges, want 8", len(all))
	}
	if all[0].Name() != "game" || all[len(all)-1].Name() != "input" {
		t.Fatalf("drain order = %s .. %s", all[0].Name(), all[len(all)-1].Name())
	}
	seen := make(map[string]bool)
	for _, d := range all {
		if seen[d.Name()] {
			t.Fatalf("bridge %s listed twice", d.Name())
		}
		seen[d.Name()] = true
	}

	h.UI.OpenScreen(1, 1, "hud")
	h.Draw.ClearDraw(0, 1)
	for _, d := range all {
		d.BeginTick()
		d.Drain(50 * time.Millisecond)
	}
	if rec.bridges["ui"] != 1 || rec.bridges["draw"] != 1 {
		t.Fatalf("journal saw %v", rec.bridges)
	}
}

func TestHubGate(t *testing.T) {
	h := New(Options{Lanes: 1, SampleRate: 8000, Screens: []string{"hud"}}, zap.NewNop())
	open := false
	h.SetGate(func() bool { return open })

	h.UI.OpenScreen(0, 1, "hud")
	h.UI.Drain(time.Millisecond)
	if h.UI.Snapshot().Screen != "" {
		t.Fatalf("gate ignored")
	}
	open = true
	h.UI.Drain(time.Millisecond)
	if h.UI.Snapshot().Screen != "hud" {
		t.Fatalf("command lost while gated")
	}
}
