package game

import (
	"testing"
	"time"

	"github.com/creaturesim/server/internal/core/ecs"
	"go.uber.org/zap"
)

const tick = 100 * time.Millisecond

type fakePlayer struct {
	next    EventID
	running map[EventID]string
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{running: make(map[EventID]string)}
}

func (p *fakePlayer) Play(event string, _ ecs.EntityID) (EventID, bool) {
	if event != "intro" {
		return 0, false
	}
	p.next++
	p.running[p.next] = event
	return p.next, true
}

func (p *fakePlayer) IsPlaying(id EventID) bool {
	_, ok := p.running[id]
	return ok
}

func (p *fakePlayer) Stop(id EventID) { delete(p.running, id) }
func (p *fakePlayer) Playing() int    { return len(p.running) }

func TestGameWaitsForEventPlayer(t *testing.T) {
	b := NewBridge(1, NewManager(zap.NewNop()), zap.NewNop())
	b.SetGameState(0, 1, StatePlaying)
	b.Drain(tick)
	if b.Snapshot().State != StateBoot || b.Pending() != 1 {
		t.Fatalf("command applied without an event player")
	}
	b.Manager().Attach(newFakePlayer())
	b.Drain(tick)
	if b.Snapshot().State != StatePlaying {
		t.Fatalf("state = %v", b.Snapshot().State)
	}
}

func TestEventLifecycleThroughResults(t *testing.T) {
	m := NewManager(zap.NewNop())
	m.Attach(newFakePlayer())
	b := NewBridge(1, m, zap.NewNop())

	b.PlayEvent(0, 4, "intro")
	b.PlayEvent(0, 5, "missing")
	b.Drain(tick)
	b.BeginTick()

	id, ok := b.TryGetEventID(4)
	if !ok {
		t.Fatalf("no event id for entity 4")
	}
	if _, ok := b.TryGetEventID(5); ok {
		t.Fatalf("unknown event produced an id")
	}
	if b.Snapshot().Events != 1 {
		t.Fatalf("events = %d", b.Snapshot().Events)
	}

	b.IsEventPlaying(0, 4, id)
	b.Drain(tick)
	b.BeginTick()
	if playing, ok := b.TryGetIsEventPlaying(4); !ok || !playing {
		t.Fatalf("IsEventPlaying = %v %v", playing, ok)
	}

	b.StopEvent(0, 4, id)
	b.IsEventPlaying(0, 4, id)
	b.Drain(tick)
	b.BeginTick()
	if playing, ok := b.TryGetIsEventPlaying(4); !ok || playing {
		t.Fatalf("event still playing after StopEvent")
	}
}

func TestResultsAnswerOnlyTheirOwnQuery(t *testing.T) {
	m := NewManager(zap.NewNop())
	m.Attach(newFakePlayer())
	b := NewBridge(1, m, zap.NewNop())

	b.PlayEvent(0, 4, "intro")
	b.Drain(tick)
	b.BeginTick()
	id, ok := b.TryGetEventID(4)
	if !ok {
		t.Fatalf("no event id for entity 4")
	}
	if playing, ok := b.TryGetIsEventPlaying(4); ok {
		t.Fatalf("PlayEvent result read as IsEventPlaying answer %v", playing)
	}

	b.IsEventPlaying(0, 4, id)
	b.Drain(tick)
	b.BeginTick()
	if _, ok := b.TryGetEventID(4); ok {
		t.Fatalf("IsEventPlaying echo read as a fresh event id")
	}
	if playing, ok := b.TryGetIsEventPlaying(4); !ok || !playing {
		t.Fatalf("IsEventPlaying = %v %v", playing, ok)
	}
}

func TestTimeScaleAndPause(t *testing.T) {
	m := NewManager(zap.NewNop())
	m.Attach(newFakePlayer())
	b := NewBridge(1, m, zap.NewNop())

	b.SetTimeScale(0, 1, 2)
	b.Drain(tick)
	if e := b.Snapshot().Elapsed; e != 0.2 {
		t.Fatalf("elapsed = %v, want 0.2", e)
	}

	b.SetGameState(0, 1, StatePaused)
	b.Drain(tick)
	if e := b.Snapshot().Elapsed; e != 0.2 {
		t.Fatalf("elapsed advanced while paused: %v", e)
	}

	b.SetTimeScale(0, 1, 50)
	b.Drain(tick)
	if s := b.Snapshot().TimeScale; s != MaxTimeScale {
		t.Fatalf("scale = %v", s)
	}
}

func TestParseState(t *testing.T) {
	for _, s := range []State{StateBoot, StateMenu, StatePlaying, StatePaused, StateCutscene, StateGameOver} {
		got, err := ParseState(s.String())
		if err != nil || got != s {
			t.Fatalf("ParseState(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseState("lobby"); err == nil {
		t.Fatalf("ParseState accepted an unknown name")
	}
}
