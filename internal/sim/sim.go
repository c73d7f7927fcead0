// Package sim assembles the world, the bridges, the sequencer and the tick
// systems into one runnable simulation. Network and storage collaborators
// are built by the caller and passed in.
package sim

import (
	"errors"
	"fmt"

	"github.com/creaturesim/server/internal/bridge/hub"
	"github.com/creaturesim/server/internal/bridge/network"
	"github.com/creaturesim/server/internal/config"
	"github.com/creaturesim/server/internal/core/ecs"
	"github.com/creaturesim/server/internal/core/event"
	coresys "github.com/creaturesim/server/internal/core/system"
	"github.com/creaturesim/server/internal/core/vec"
	"github.com/creaturesim/server/internal/creature"
	"github.com/creaturesim/server/internal/data"
	"github.com/creaturesim/server/internal/persist"
	"github.com/creaturesim/server/internal/scripting"
	"github.com/creaturesim/server/internal/sequencer"
	"github.com/creaturesim/server/internal/system"
	"go.uber.org/zap"
)

// JumpClip is the audio clip played when a creature starts a jump.
const JumpClip = "jump"

// ErrNoFrame is returned by Rollback when the rollback point has left the
// prediction history.
var ErrNoFrame = errors.New("sim: tick not in prediction history")

// Options carries the loaded data and the optional collaborators.
type Options struct {
	Config  *config.Config
	Prefabs *data.PrefabTable
	Clips   *data.AudioClipTable
	Graphs  *sequencer.Library
	Scripts *scripting.Engine

	// Transport backs the network bridge; nil leaves it not ready.
	Transport network.Transport
	// Names resolves an owner to a display name for chat.
	Names func(owner uint64) string

	Feed    system.Broadcaster      // observer feed, optional
	Journal *persist.CommandJournal // optional
	ChatLog persist.ChatLog         // optional

	Log *zap.Logger
}

// Sim is one simulation instance. Everything in it belongs to the loop
// goroutine that calls Tick.
type Sim struct {
	World     *creature.World
	Hub       *hub.Hub
	Bus       *event.Bus
	Clock     *coresys.Clock
	Runner    *coresys.Runner
	Scheduler *ecs.Scheduler
	Sequencer *sequencer.Sequencer
	Drain     *system.BridgeDrainSystem
	History   *creature.History // nil when rollback is disabled

	chatLog *system.ChatLogSystem
	cfg     *config.Config
	log     *zap.Logger
}

func New(opts Options) *Sim {
	cfg := opts.Config
	log := opts.Log
	workers := max(1, cfg.Simulation.Workers)

	w := creature.NewWorld(workers)
	w.Commands().SetSpawner(creature.NewSpawner(w, opts.Prefabs), func(prefab string, err error) {
		log.Warn("spawn failed", zap.String("prefab", prefab), zap.Error(err))
	})

	clock := coresys.NewClock()
	s := &Sim{
		World:     w,
		Bus:       event.NewBus(),
		Clock:     clock,
		Runner:    coresys.NewRunner(clock),
		Scheduler: ecs.NewScheduler(workers),
		cfg:       cfg,
		log:       log,
	}

	s.Hub = hub.New(hub.Options{
		Lanes:      workers,
		SampleRate: cfg.Audio.SampleRate,
		Screens:    cfg.Data.Screens,
		StartHours: 12,
	}, log)
	if opts.Clips != nil {
		s.Hub.Audio.Manager().Load(opts.Clips)
	}
	s.Hub.SetGate(w.Started)
	if opts.Journal != nil {
		s.Hub.SetJournal(opts.Journal)
	}

	graphs := opts.Graphs
	if graphs == nil {
		graphs, _ = sequencer.NewLibrary()
	}
	s.Sequencer = sequencer.New(graphs, sequencer.Deps{
		Hub:      s.Hub,
		Scripts:  opts.Scripts,
		Commands: w.Commands(),
		Place:    s.place,
		Clock:    clock,
		Seed:     cfg.Simulation.Seed,
	}, log.Named("sequencer"))
	s.Hub.Game.Manager().Attach(s.Sequencer)

	if opts.Transport != nil {
		s.Hub.Network.Manager().Attach(opts.Transport, s.identity(opts.Names))
	}

	system.NewPlayerLifecycle(w, s.Hub, s.Bus, cfg.Simulation.PlayerPrefab, log)
	s.registerSystems(opts)
	s.boot()
	return s
}

func (s *Sim) registerSystems(opts Options) {
	w, r, log := s.World, s.Runner, s.log
	bridges := s.Hub.All()

	r.Register(system.NewEventDispatchSystem(s.Bus))
	r.Register(system.NewBridgeBeginSystem(bridges))
	r.Register(system.NewPlayerInputSystem(w, s.Hub.Input))
	r.Register(system.NewDummyBrainSystem(w, s.Scheduler))
	r.Register(system.NewLifetimeSystem(w))
	if n := s.cfg.Simulation.History; n > 0 {
		s.History = creature.NewHistory(n)
		r.Register(system.NewHistorySystem(w, s.Clock, s.History))
	}
	r.Register(system.NewMotionSystem(w, s.Scheduler, s.Clock, s.Hub.Audio, JumpClip))
	r.Register(system.NewPhysicsSystem(w, s.Scheduler, s.cfg.Simulation.Gravity))
	r.Register(system.NewSequencerSystem(s.Sequencer))
	s.Drain = system.NewBridgeDrainSystem(bridges, log)
	r.Register(s.Drain)
	r.Register(system.NewPresentationSystem(w, s.Scheduler))
	if opts.Feed != nil {
		r.Register(system.NewObserverSystem(w, s.Hub, opts.Feed, s.Clock, s.cfg.Observer.Every, log))
	}
	if opts.Journal != nil {
		r.Register(system.NewJournalSystem(opts.Journal, s.Clock, log))
	}
	if opts.ChatLog != nil {
		s.chatLog = system.NewChatLogSystem(opts.ChatLog, s.Bus, s.Clock, s.cfg.Database.FlushInterval, log)
		r.Register(s.chatLog)
	}
	r.Register(system.NewCleanupSystem(w.World))
}

// boot queues the simulation singleton, the configured spawns and the intro
// event. All of it lands during the first tick's cleanup, so the bridges
// open on the second tick.
func (s *Sim) boot() {
	w := s.World
	w.Commands().Defer(0, func(*ecs.World) {
		id := w.CreateEntity()
		w.Simulations.Set(id, &creature.Simulation{StartTick: s.Clock.Tick()})
	})
	for _, prefab := range s.cfg.Simulation.Spawns {
		w.Commands().Instantiate(0, prefab, nil)
	}
	if ev := s.cfg.Simulation.IntroEvent; ev != "" {
		s.Hub.Game.PlayEvent(0, 0, ev)
	}
}

// Register adds caller-owned systems such as network input and output.
func (s *Sim) Register(systems ...coresys.System) {
	for _, sys := range systems {
		s.Runner.Register(sys)
	}
}

// Tick advances the simulation by one fixed step.
func (s *Sim) Tick() {
	s.Runner.Tick(s.cfg.Simulation.TickRate)
}

// Rollback rewinds the predicted state to the start of the last n confirmed
// ticks and replays them with the inputs recorded for each. Entities that
// appeared inside the window keep their current state.
func (s *Sim) Rollback(n int) error {
	if n <= 0 {
		return nil
	}
	if s.History == nil {
		return fmt.Errorf("%w: history disabled", ErrNoFrame)
	}
	confirmed := s.Clock.Confirmed()
	if uint64(n) > confirmed {
		n = int(confirmed)
	}
	from := confirmed - uint64(n) + 1
	base, ok := s.History.Frame(from)
	if !ok {
		return fmt.Errorf("%w: tick %d", ErrNoFrame, from)
	}
	for tick := from + 1; tick <= confirmed; tick++ {
		if _, ok := s.History.Frame(tick); !ok {
			return fmt.Errorf("%w: tick %d", ErrNoFrame, tick)
		}
	}

	w := s.World
	live := w.Capture(confirmed)
	w.RestoreState(base)
	s.Runner.Resimulate(n, s.cfg.Simulation.TickRate, func(tick uint64) {
		f, _ := s.History.Frame(tick)
		w.RestoreInputs(f)
	})
	w.RestoreNewer(&live, base)
	w.RestoreInputs(&live)
	return nil
}

// PlayerByOwner resolves a session's player entity.
func (s *Sim) PlayerByOwner(owner uint64) (ecs.EntityID, bool) {
	return s.World.PlayerByOwner(owner)
}

// Close saves pending chat log rows.
func (s *Sim) Close() {
	if s.chatLog != nil {
		s.chatLog.Flush()
	}
}

func (s *Sim) place(id ecs.EntityID, pos vec.Vec3) {
	if tr, ok := s.World.Transforms.Get(id); ok {
		tr.Position = pos
	}
}

func (s *Sim) identity(names func(uint64) string) network.Identity {
	return func(e ecs.EntityID) (uint64, string, bool) {
		in, ok := s.World.PlayerInputs.Get(e)
		if !ok {
			return 0, "", false
		}
		name := ""
		if names != nil {
			name = names(in.Owner)
		}
		return in.Owner, name, true
	}
}
