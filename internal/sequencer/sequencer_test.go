package sequencer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/creaturesim/server/internal/bridge/hub"
	"github.com/creaturesim/server/internal/core/ecs"
	"github.com/creaturesim/server/internal/scripting"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const tick = 250 * time.Millisecond

func newTestSequencer(t *testing.T, deps Deps, graphs ...*Graph) *Sequencer {
	t.Helper()
	lib, err := NewLibrary(graphs...)
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	if deps.Seed == 0 {
		deps.Seed = 1
	}
	return New(lib, deps, zap.NewNop())
}

func runTick(h *hub.Hub, s *Sequencer) {
	for _, b := range h.All() {
		b.BeginTick()
	}
	s.Tick(tick)
	for _, b := range h.All() {
		b.Drain(tick)
	}
}

func TestDelayWaitsScaledTime(t *testing.T) {
	g := NewGraph("wait")
	start := g.Add(KindStart, "start", &Start{})
	delay := g.Add(KindDelay, "delay", &Delay{Seconds: 1})
	g.Connect(start, 0, delay, 0, PortDefault)

	s := newTestSequencer(t, Deps{}, g)
	id, ok := s.Play("wait", 0)
	if !ok || id == 0 {
		t.Fatalf("Play = %d, %v", id, ok)
	}

	// Tick 1 leaves start; the delay starts on tick 2 and needs four more.
	for i := 1; i <= 5; i++ {
		s.Tick(tick)
		if !s.IsPlaying(id) {
			t.Fatalf("event finished early on tick %d", i)
		}
	}
	if delay.Active() != 1 {
		t.Fatalf("delay active = %d, want 1", delay.Active())
	}
	s.Tick(tick)
	if s.IsPlaying(id) {
		t.Fatal("event still playing after delay elapsed")
	}
	if delay.Active() != 0 || s.Playing() != 0 {
		t.Fatalf("active = %d playing = %d, want 0 0", delay.Active(), s.Playing())
	}
}

func TestFanOutFollowsSelectedPort(t *testing.T) {
	g := NewGraph("fan")
	start := g.Add(KindStart, "start", &Start{})
	fan := g.Add(KindLog, "fan", &Log{Message: "fan"})
	g.Connect(start, 0, fan, 0, PortDefault)
	for i := 0; i < 3; i++ {
		leaf := g.Add(KindLog, "leaf", &Log{Message: "leaf"})
		g.Connect(fan, 0, leaf, 0, PortDefault)
	}
	skipped := g.Add(KindLog, "skipped", &Log{Message: "never"})
	g.Connect(fan, 1, skipped, 0, PortDefault)

	s := newTestSequencer(t, Deps{}, g)
	id, _ := s.Play("fan", 0)

	s.Tick(tick)
	if n := s.Instances(id); n != 1 {
		t.Fatalf("after start: %d instances, want 1", n)
	}
	s.Tick(tick)
	if n := s.Instances(id); n != 3 {
		t.Fatalf("after fan-out: %d instances, want 1-1+3", n)
	}
	if skipped.Active() != 0 {
		t.Fatal("instance routed through unselected port")
	}
	s.Tick(tick)
	if s.IsPlaying(id) {
		t.Fatal("leaves should end the event")
	}
}

func TestRandomizeRoutesExactlyOnePort(t *testing.T) {
	g := NewGraph("dice")
	start := g.Add(KindStart, "start", &Start{})
	r := &Randomize{Weights: []float64{0, 0, 0}}
	if err := r.validate(); err != nil {
		t.Fatal(err)
	}
	dice := g.Add(KindRandomize, "dice", r)
	g.Connect(start, 0, dice, 0, PortDefault)
	var leaves []*Node
	for i := 0; i < 3; i++ {
		leaf := g.Add(KindDelay, "leaf", &Delay{Seconds: 100})
		g.Connect(dice, i, leaf, 0, PortDefault)
		leaves = append(leaves, leaf)
	}

	s := newTestSequencer(t, Deps{}, g)
	for i := 0; i < 30; i++ {
		s.Play("dice", 0)
	}
	s.Tick(tick)
	s.Tick(tick)

	total := 0
	for _, l := range leaves {
		total += l.Active()
	}
	if total != 30 {
		t.Fatalf("leaf instances = %d, want one per event (30)", total)
	}
	for _, id := range s.order {
		if n := s.Instances(id); n != 1 {
			t.Fatalf("event %d has %d instances, want 1", id, n)
		}
	}
}

func TestRandomizePick(t *testing.T) {
	tests := []struct {
		weights []float64
		u       float64
		want    int
	}{
		{weights: []float64{0, 0, 0}, u: 0, want: 0},
		{weights: []float64{0, 0, 0}, u: 0.5, want: 1},
		{weights: []float64{0, 0, 0}, u: 0.99, want: 2},
		{weights: []float64{1, 3}, u: 0.2, want: 0},
		{weights: []float64{1, 3}, u: 0.3, want: 1},
		{weights: []float64{0, 5}, u: 0, want: 1},
		{weights: []float64{-2, 1}, u: 0, want: 1},
	}
	for _, tt := range tests {
		r := &Randomize{Weights: append([]float64(nil), tt.weights...)}
		_ = r.validate()
		if got := r.pick(tt.u); got != tt.want {
			t.Fatalf("pick(%v, %v) = %d, want %d", tt.weights, tt.u, got, tt.want)
		}
	}

	r := &Randomize{}
	_ = r.validate()
	if !reflect.DeepEqual(r.Weights, []float64{1, 1}) {
		t.Fatalf("default weights = %v", r.Weights)
	}
}

func TestRepeatAndOnceThenPorts(t *testing.T) {
	r := &Repeat{Count: 2}
	var got []int
	for i := 0; i < 4; i++ {
		got = append(got, r.Next(nil)[0])
	}
	if !reflect.DeepEqual(got, []int{0, 0, 1, 0}) {
		t.Fatalf("repeat ports = %v, want [0 0 1 0]", got)
	}

	o := &OnceThen{}
	got = got[:0]
	for i := 0; i < 3; i++ {
		got = append(got, o.Next(nil)[0])
	}
	if !reflect.DeepEqual(got, []int{0, 1, 1}) {
		t.Fatalf("once_then ports = %v, want [0 1 1]", got)
	}
}

func TestNullSuccessorIsSkipped(t *testing.T) {
	g := NewGraph("dangling")
	start := g.Add(KindStart, "start", &Start{})
	start.Nexts = append(start.Nexts, Link{Node: uuid.New()}, Link{Node: uuid.Nil})

	s := newTestSequencer(t, Deps{}, g)
	id, _ := s.Play("dangling", 0)
	s.Tick(tick)
	if s.IsPlaying(id) {
		t.Fatal("event with only dangling successors should finish")
	}
}

func TestStopDropsInstances(t *testing.T) {
	g := NewGraph("long")
	start := g.Add(KindStart, "start", &Start{})
	delay := g.Add(KindDelay, "delay", &Delay{Seconds: 60})
	g.Connect(start, 0, delay, 0, PortDefault)

	s := newTestSequencer(t, Deps{}, g)
	id, _ := s.Play("long", 0)
	s.Tick(tick)
	s.Tick(tick)
	s.Stop(id)
	if s.IsPlaying(id) || delay.Active() != 0 {
		t.Fatalf("after Stop: playing=%v active=%d", s.IsPlaying(id), delay.Active())
	}
	if _, ok := s.Play("missing", 0); ok {
		t.Fatal("Play of unknown graph succeeded")
	}
}

func TestBranchEvaluatesLua(t *testing.T) {
	eng, err := scripting.NewEngine(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close()
	if err := eng.LoadString("test", `function is_hero(ctx) return ctx.source == 7 end`); err != nil {
		t.Fatal(err)
	}

	g := NewGraph("gate")
	start := g.Add(KindStart, "start", &Start{})
	branch := g.Add(KindBranch, "branch", &Branch{Condition: "is_hero"})
	yes := g.Add(KindDelay, "yes", &Delay{Seconds: 100})
	no := g.Add(KindDelay, "no", &Delay{Seconds: 100})
	g.Connect(start, 0, branch, 0, PortDefault)
	g.Connect(branch, 0, yes, 0, PortDefault)
	g.Connect(branch, 1, no, 0, PortDefault)

	s := newTestSequencer(t, Deps{Scripts: eng}, g)
	s.Play("gate", 7)
	s.Play("gate", 8)
	s.Tick(tick)
	s.Tick(tick)
	if yes.Active() != 1 || no.Active() != 1 {
		t.Fatalf("yes=%d no=%d, want 1 1", yes.Active(), no.Active())
	}
}

func TestDialogueDrivesUIBridge(t *testing.T) {
	h := hub.New(hub.Options{Lanes: 1, SampleRate: 8000, Screens: []string{"dialogue"}}, zap.NewNop())
	g := NewGraph("talk")
	start := g.Add(KindStart, "start", &Start{})
	d := &Dialogue{Speaker: "Guide", Text: "Hello", Duration: 0.5}
	_ = d.validate()
	talk := g.Add(KindDialogue, "talk", d)
	g.Connect(start, 0, talk, 0, PortDefault)

	s := newTestSequencer(t, Deps{Hub: h}, g)
	id, _ := s.Play("talk", 0)

	runTick(h, s) // start
	runTick(h, s) // dialogue starts, commands drained
	runTick(h, s) // text id visible
	ui := h.UI.Snapshot()
	if ui.Screen != "dialogue" || ui.TextCount != 1 || ui.Texts[0].Value != "Guide: Hello" {
		t.Fatalf("ui = %+v", ui)
	}
	if d.text == 0 {
		t.Fatal("dialogue did not pick up its text handle")
	}

	runTick(h, s) // duration elapsed, text removed
	ui = h.UI.Snapshot()
	if ui.Depth != 0 || ui.TextCount != 0 {
		t.Fatalf("ui after dialogue = %+v", ui)
	}
	if s.IsPlaying(id) {
		t.Fatal("event still playing")
	}
}

func TestDialogueTextExpiresWhenHandleIsMissed(t *testing.T) {
	h := hub.New(hub.Options{Lanes: 1, SampleRate: 8000, Screens: []string{"dialogue"}}, zap.NewNop())
	g := NewGraph("talk")
	start := g.Add(KindStart, "start", &Start{})
	d := &Dialogue{Text: "Hello", Duration: 0.5}
	_ = d.validate()
	talk := g.Add(KindDialogue, "talk", d)
	g.Connect(start, 0, talk, 0, PortDefault)

	s := newTestSequencer(t, Deps{Hub: h}, g)
	s.Play("talk", 0)

	runTick(h, s) // start
	runTick(h, s) // dialogue starts, AddText drained
	// An extra window consumes the AddText result before the node reads it.
	h.UI.BeginTick()
	h.UI.Drain(0)

	for i := 0; i < 4; i++ {
		runTick(h, s)
	}
	if d.text != 0 {
		t.Fatalf("dialogue read a handle that was already cleared")
	}
	if ui := h.UI.Snapshot(); ui.TextCount != 0 || ui.Depth != 0 {
		t.Fatalf("ui after dialogue = %+v", ui)
	}
}

func TestPlayEventThroughGameBridge(t *testing.T) {
	h := hub.New(hub.Options{Lanes: 1, SampleRate: 8000, Screens: []string{"hud"}}, zap.NewNop())
	g := NewGraph("intro")
	start := g.Add(KindStart, "start", &Start{})
	wait := g.Add(KindDelay, "wait", &Delay{Seconds: 10})
	g.Connect(start, 0, wait, 0, PortDefault)

	s := newTestSequencer(t, Deps{Hub: h}, g)
	h.Game.Manager().Attach(s)

	source := ecs.EntityID(5)
	h.Game.PlayEvent(0, source, "intro")
	runTick(h, s)
	if _, ok := h.Game.TryGetEventID(source); ok {
		t.Fatal("result visible in the tick it was produced")
	}
	for _, b := range h.All() {
		b.BeginTick()
	}
	id, ok := h.Game.TryGetEventID(source)
	if !ok || !s.IsPlaying(id) {
		t.Fatalf("TryGetEventID = %d, %v", id, ok)
	}
	if got := h.Game.Snapshot().Events; got != 1 {
		t.Fatalf("game snapshot events = %d, want 1", got)
	}
}

func TestPausedGameFreezesTime(t *testing.T) {
	h := hub.New(hub.Options{Lanes: 1, SampleRate: 8000, Screens: []string{"hud"}}, zap.NewNop())
	g := NewGraph("pause")
	start := g.Add(KindStart, "start", &Start{})
	delay := g.Add(KindDelay, "delay", &Delay{Seconds: 0.25})
	g.Connect(start, 0, delay, 0, PortDefault)

	s := newTestSequencer(t, Deps{Hub: h}, g)
	h.Game.Manager().Attach(s)
	h.Game.SetTimeScale(0, 0, 0)
	id, _ := s.Play("pause", 0)
	for i := 0; i < 5; i++ {
		runTick(h, s)
	}
	if !s.IsPlaying(id) {
		t.Fatal("delay elapsed with time scale 0")
	}
}

func linkCounts(links []Link) map[Link]int {
	m := make(map[Link]int, len(links))
	for _, l := range links {
		m[l]++
	}
	return m
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	g := NewGraph("round_trip")
	start := g.Add(KindStart, "start", &Start{})
	spawn := g.Add(KindSpawnObject, "spawn", &SpawnObject{Prefab: "crate"})
	play := g.Add(KindPlayAudio, "play", &PlayAudio{Clip: "chime", Volume: 0.5})
	stop := g.Add(KindStopAudio, "stop", &StopAudio{})
	destroy := g.Add(KindDestroyObject, "destroy", &DestroyObject{})
	wait := g.Add(KindDelay, "wait", &Delay{Seconds: 1.5})
	g.Connect(start, 0, spawn, 0, PortDefault)
	g.Connect(start, 0, play, 0, PortDefault)
	g.Connect(spawn, 0, wait, 0, PortDefault)
	g.Connect(spawn, 0, wait, 0, PortDefault) // parallel duplicate link
	g.Connect(wait, 0, destroy, 0, PortDefault)
	g.Connect(spawn, 1, destroy, 1, PortObject)
	g.Connect(play, 0, stop, 0, PortDefault)
	g.Connect(play, 1, stop, 1, PortDataID)

	raw, err := Encode(g)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v\n%s", err, raw)
	}
	if back.ID != g.ID || len(back.Nodes) != len(g.Nodes) {
		t.Fatalf("decoded %s with %d nodes", back.ID, len(back.Nodes))
	}
	for _, n := range g.Nodes {
		m := back.Node(n.GUID)
		if m == nil {
			t.Fatalf("node %s lost", n.GUID)
		}
		if m.Kind != n.Kind || m.Name != n.Name {
			t.Fatalf("node %s: kind/name %s/%s, want %s/%s", n.GUID, m.Kind, m.Name, n.Kind, n.Name)
		}
		if !reflect.DeepEqual(linkCounts(m.Prevs), linkCounts(n.Prevs)) {
			t.Fatalf("node %s prevs = %v, want %v", n.Name, m.Prevs, n.Prevs)
		}
		if !reflect.DeepEqual(linkCounts(m.Nexts), linkCounts(n.Nexts)) {
			t.Fatalf("node %s nexts = %v, want %v", n.Name, m.Nexts, n.Nexts)
		}
	}
	if d := back.Node(wait.GUID).Behavior.(*Delay); d.Seconds != 1.5 {
		t.Fatalf("delay seconds = %v", d.Seconds)
	}
	if p := back.Node(play.GUID).Behavior.(*PlayAudio); p.Clip != "chime" || p.Volume != 0.5 {
		t.Fatalf("play_audio params = %+v", p)
	}
	if err := back.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestDecodeDropsNullLinks(t *testing.T) {
	src := `
id: nulls
nodes:
  - guid: 6f1c1e4e-0d0a-4a57-9a8e-6f0f6f1a0001
    kind: start
    nexts:
      - {node: null, input: 0, output: 0}
      - {node: "", input: 0, output: 0}
      - {node: 6f1c1e4e-0d0a-4a57-9a8e-6f0f6f1a0999, input: 0, output: 0}
      - {node: 6f1c1e4e-0d0a-4a57-9a8e-6f0f6f1a0002, input: 0, output: 0}
  - guid: 6f1c1e4e-0d0a-4a57-9a8e-6f0f6f1a0002
    kind: log
    params: {message: hi}
    prevs:
      - {node: 6f1c1e4e-0d0a-4a57-9a8e-6f0f6f1a0001, input: 0, output: 0}
`
	g, err := Decode([]byte(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n := len(g.Nodes[0].Nexts); n != 1 {
		t.Fatalf("start has %d nexts, want 1", n)
	}
	if msg := g.Nodes[1].Behavior.(*Log).Message; msg != "hi" {
		t.Fatalf("log message = %q", msg)
	}
}

func TestDecodeKeepsNodeParams(t *testing.T) {
	src := `
id: params
nodes:
  - guid: 6f1c1e4e-0d0a-4a57-9a8e-6f0f6f1a0001
    kind: delay
    params: {seconds: 1.5}
  - guid: 6f1c1e4e-0d0a-4a57-9a8e-6f0f6f1a0002
    kind: repeat
    params: {count: 3}
  - guid: 6f1c1e4e-0d0a-4a57-9a8e-6f0f6f1a0003
    kind: randomize
    params: {weights: [1, 4]}
  - guid: 6f1c1e4e-0d0a-4a57-9a8e-6f0f6f1a0004
    kind: play_audio
    params: {clip: chime, volume: 0.25}
`
	g, err := Decode([]byte(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d := g.Nodes[0].Behavior.(*Delay); d.Seconds != 1.5 {
		t.Fatalf("delay seconds = %v, want 1.5", d.Seconds)
	}
	if r := g.Nodes[1].Behavior.(*Repeat); r.Count != 3 {
		t.Fatalf("repeat count = %d, want 3", r.Count)
	}
	if r := g.Nodes[2].Behavior.(*Randomize); !reflect.DeepEqual(r.Weights, []float64{1, 4}) {
		t.Fatalf("randomize weights = %v", r.Weights)
	}
	if p := g.Nodes[3].Behavior.(*PlayAudio); p.Clip != "chime" || p.Volume != 0.25 {
		t.Fatalf("play_audio params = %+v", p)
	}

	raw, err := Encode(g)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(raw), "seconds: 1.5") {
		t.Fatalf("encoded graph lost params:\n%s", raw)
	}
}

func TestDecodeRejectsInvalidGraphs(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "unknown kind",
			src:  "id: bad\nnodes:\n  - {guid: 6f1c1e4e-0d0a-4a57-9a8e-6f0f6f1a0001, kind: teleport}\n",
			want: "schema",
		},
		{
			name: "missing id",
			src:  "nodes: []\n",
			want: "schema",
		},
		{
			name: "unknown field",
			src:  "id: bad\nnodes:\n  - {guid: 6f1c1e4e-0d0a-4a57-9a8e-6f0f6f1a0001, kind: start, color: red}\n",
			want: "schema",
		},
		{
			name: "bad params",
			src:  "id: bad\nnodes:\n  - {guid: 6f1c1e4e-0d0a-4a57-9a8e-6f0f6f1a0001, kind: set_game_state, params: {state: flying}}\n",
			want: "unknown game state",
		},
		{
			name: "one-sided link",
			src: "id: bad\nnodes:\n" +
				"  - {guid: 6f1c1e4e-0d0a-4a57-9a8e-6f0f6f1a0001, kind: start, nexts: [{node: 6f1c1e4e-0d0a-4a57-9a8e-6f0f6f1a0002, input: 0, output: 0}]}\n" +
				"  - {guid: 6f1c1e4e-0d0a-4a57-9a8e-6f0f6f1a0002, kind: log}\n",
			want: "reciprocal",
		},
	}
	for _, tt := range tests {
		_, err := Decode([]byte(tt.src))
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Fatalf("%s: err = %v, want containing %q", tt.name, err, tt.want)
		}
	}
}

func TestSchemaKindsMatchBehaviors(t *testing.T) {
	var doc struct {
		Defs struct {
			Node struct {
				Properties struct {
					Kind struct {
						Enum []string `json:"enum"`
					} `json:"kind"`
				} `json:"properties"`
			} `json:"node"`
		} `json:"$defs"`
	}
	if err := json.Unmarshal([]byte(schemaJSON), &doc); err != nil {
		t.Fatal(err)
	}
	enum := append([]string(nil), doc.Defs.Node.Properties.Kind.Enum...)
	kinds := Kinds()
	if len(enum) != len(kinds) {
		t.Fatalf("schema kinds %v, behaviors %v", enum, kinds)
	}
	want := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	for _, k := range enum {
		if !want[k] {
			t.Fatalf("schema kind %q has no behavior", k)
		}
	}
}

func TestLoadLibrary(t *testing.T) {
	dir := t.TempDir()
	g := NewGraph("intro")
	g.Add(KindStart, "start", &Start{})
	raw, err := Encode(g)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "intro.yaml"), raw, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0o644); err != nil {
		t.Fatal(err)
	}

	lib, err := LoadLibrary(dir)
	if err != nil {
		t.Fatalf("LoadLibrary: %v", err)
	}
	if lib.Count() != 1 || lib.Get("intro") == nil {
		t.Fatalf("library ids = %v", lib.IDs())
	}

	if err := os.WriteFile(filepath.Join(dir, "intro_copy.yml"), raw, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLibrary(dir); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("duplicate ids: err = %v", err)
	}

	empty, err := LoadLibrary(filepath.Join(dir, "missing"))
	if err != nil || empty.Count() != 0 {
		t.Fatalf("missing dir: %v, %d graphs", err, empty.Count())
	}
}
