package sequencer

import (
	"math/rand"
	"time"

	"github.com/creaturesim/server/internal/bridge/game"
	"github.com/creaturesim/server/internal/bridge/hub"
	"github.com/creaturesim/server/internal/core/ecs"
	"github.com/creaturesim/server/internal/core/system"
	"github.com/creaturesim/server/internal/core/vec"
	"github.com/creaturesim/server/internal/scripting"
	"go.uber.org/zap"
)

// Deps are the collaborators nodes reach through their Context. Any of them
// may be nil; nodes that need a missing one do nothing.
type Deps struct {
	Hub      *hub.Hub
	Scripts  *scripting.Engine
	Commands *ecs.CommandBuffer
	Place    func(id ecs.EntityID, pos vec.Vec3) // positions a freshly spawned object
	Clock    *system.Clock
	Seed     int64 // 0 seeds from the wall clock
}

// instance is one traversal position inside a running event.
type instance struct {
	node    *Node
	started bool
}

type event struct {
	id        game.EventID
	graph     *Graph
	source    ecs.EntityID
	instances []*instance
}

// Status describes one running event.
type Status struct {
	ID        game.EventID `json:"id"`
	Graph     string       `json:"graph"`
	Source    ecs.EntityID `json:"source"`
	Instances int          `json:"instances"`
}

// Sequencer runs event graphs. It is driven serially once per tick and is
// the game bridge's EventPlayer.
type Sequencer struct {
	lib    *Library
	deps   Deps
	events map[game.EventID]*event
	order  []game.EventID
	nextID game.EventID
	now    float64
	ticks  uint64
	rng    *rand.Rand
	log    *zap.Logger
}

func New(lib *Library, deps Deps, log *zap.Logger) *Sequencer {
	seed := deps.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Sequencer{
		lib:    lib,
		deps:   deps,
		events: make(map[game.EventID]*event),
		rng:    rand.New(rand.NewSource(seed)),
		log:    log,
	}
}

// Play starts the graph with the given ID, one instance per start node. The
// instances first run on the next Tick.
func (s *Sequencer) Play(graph string, source ecs.EntityID) (game.EventID, bool) {
	g := s.lib.Get(graph)
	if g == nil {
		return 0, false
	}
	starts := g.Starts()
	if len(starts) == 0 {
		s.log.Warn("event graph has no start node", zap.String("event", graph))
		return 0, false
	}
	s.nextID++
	if s.nextID == 0 {
		s.nextID = 1
	}
	ev := &event{id: s.nextID, graph: g, source: source}
	for _, n := range starts {
		n.active++
		ev.instances = append(ev.instances, &instance{node: n})
	}
	s.events[ev.id] = ev
	s.order = append(s.order, ev.id)
	s.log.Debug("event started",
		zap.String("event", graph),
		zap.Uint32("event_id", uint32(ev.id)),
		zap.Uint64("source", uint64(source)),
	)
	return ev.id, true
}

func (s *Sequencer) IsPlaying(id game.EventID) bool {
	_, ok := s.events[id]
	return ok
}

// Stop drops every instance of the event. End is not called on the nodes
// they sat on.
func (s *Sequencer) Stop(id game.EventID) {
	ev, ok := s.events[id]
	if !ok {
		return
	}
	for _, in := range ev.instances {
		in.node.active--
	}
	ev.instances = nil
	s.finish(id)
}

// Playing returns the number of running events.
func (s *Sequencer) Playing() int { return len(s.events) }

// Running lists the running events in start order.
func (s *Sequencer) Running() []Status {
	out := make([]Status, 0, len(s.order))
	for _, id := range s.order {
		ev := s.events[id]
		out = append(out, Status{ID: id, Graph: ev.graph.ID, Source: ev.source, Instances: len(ev.instances)})
	}
	return out
}

// Instances returns how many instances the event is running.
func (s *Sequencer) Instances(id game.EventID) int {
	if ev, ok := s.events[id]; ok {
		return len(ev.instances)
	}
	return 0
}

// Tick advances scaled time by dt and steps every running event once.
// Successors created during a step wait for the next Tick.
func (s *Sequencer) Tick(dt time.Duration) {
	s.ticks++
	s.now += dt.Seconds() * s.timeScale()

	ids := append([]game.EventID(nil), s.order...)
	for _, id := range ids {
		ev, ok := s.events[id]
		if !ok {
			continue
		}
		s.step(ev)
		if len(ev.instances) == 0 {
			s.finish(id)
		}
	}
}

func (s *Sequencer) timeScale() float64 {
	if s.deps.Hub == nil {
		return 1
	}
	p := s.deps.Hub.Game.Snapshot()
	if p.State == game.StatePaused {
		return 0
	}
	return p.TimeScale
}

func (s *Sequencer) step(ev *event) {
	current := ev.instances
	ev.instances = make([]*instance, 0, len(current))
	for _, in := range current {
		n := in.node
		ctx := s.context(ev, n)
		if !in.started {
			in.started = true
			n.Behavior.Start(ctx)
		}
		if !n.Behavior.Update(ctx) {
			ev.instances = append(ev.instances, in)
			continue
		}
		n.Behavior.End(ctx)
		n.active--
		for _, l := range n.NextsFor(n.Behavior.Next(ctx)) {
			target := ev.graph.Node(l.Node)
			if target == nil {
				continue
			}
			target.active++
			ev.instances = append(ev.instances, &instance{node: target})
		}
	}
}

func (s *Sequencer) context(ev *event, n *Node) *Context {
	tick := s.ticks
	if s.deps.Clock != nil {
		tick = s.deps.Clock.Tick()
	}
	return &Context{
		Event:  ev.id,
		Key:    ev.graph.ID,
		Source: ev.source,
		Node:   n,
		Graph:  ev.graph,
		Now:    s.now,
		Tick:   tick,
		seq:    s,
	}
}

func (s *Sequencer) finish(id game.EventID) {
	ev := s.events[id]
	delete(s.events, id)
	for i, x := range s.order {
		if x == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if ev != nil {
		s.log.Debug("event finished", zap.String("event", ev.graph.ID), zap.Uint32("event_id", uint32(id)))
	}
}
