package bridge

import (
	"time"

	"github.com/creaturesim/server/internal/core/ecs"
	"go.uber.org/zap"
)

// Command is implemented by every bridge command variant.
type Command interface {
	Source() ecs.EntityID
	MethodName() string
}

// Header carries the originating entity. Embedded in every command variant.
type Header struct {
	Entity ecs.EntityID `json:"entity"`
}

func (h Header) Source() ecs.EntityID { return h.Entity }

// Service is the non-thread-safe subsystem behind a bridge. All methods are
// called from the loop goroutine during Drain.
type Service[C Command, P any, R any] interface {
	// Ready reports whether the service can accept commands this tick.
	Ready() bool
	// Apply executes one command. ok reports whether r should be published
	// for the command's source entity.
	Apply(cmd C) (r R, ok bool)
	// Update advances time-based state (fades, expiries, shakes).
	Update(dt time.Duration)
	// Snapshot captures the state exposed to jobs. It must not share mutable
	// memory with the service.
	Snapshot() P
}

// Journal receives every command a bridge applies.
type Journal interface {
	Record(bridge string, cmd Command)
}

// Drainer is the type-erased view the tick systems use to drive all bridges.
type Drainer interface {
	Name() string
	BeginTick()
	Drain(dt time.Duration) int
}

// Bridge binds a command channel, a result table and a property snapshot to
// one service.
type Bridge[C Command, P any, R any] struct {
	name     string
	svc      Service[C, P, R]
	channel  *Channel[C]
	results  *ResultTable[R]
	property *Property[P]
	gate     func() bool
	journal  Journal
	skipped  uint64
	log      *zap.Logger
}

// New creates a bridge with one channel lane per worker. The initial snapshot
// is taken from the service immediately.
func New[C Command, P any, R any](name string, lanes int, svc Service[C, P, R], log *zap.Logger) *Bridge[C, P, R] {
	return &Bridge[C, P, R]{
		name:     name,
		svc:      svc,
		channel:  NewChannel[C](lanes),
		results:  NewResultTable[R](),
		property: NewProperty(svc.Snapshot()),
		log:      log.With(zap.String("bridge", name)),
	}
}

func (b *Bridge[C, P, R]) Name() string { return b.name }

// Service returns the wrapped service for wiring on the loop goroutine.
func (b *Bridge[C, P, R]) Service() Service[C, P, R] { return b.svc }

// SetGate installs an extra readiness condition, typically "the simulation
// singleton entity exists". Both the gate and Service.Ready must hold.
func (b *Bridge[C, P, R]) SetGate(gate func() bool) { b.gate = gate }

// SetJournal installs a journal that sees every applied command.
func (b *Bridge[C, P, R]) SetJournal(j Journal) { b.journal = j }

// Enqueue queues cmd on the given lane. Safe from parallel jobs.
func (b *Bridge[C, P, R]) Enqueue(lane int, cmd C) {
	b.channel.Enqueue(lane, cmd)
}

// Snapshot returns last drain's property snapshot.
func (b *Bridge[C, P, R]) Snapshot() P {
	return b.property.Load()
}

// Result returns the result published for id by the previous tick's drain.
func (b *Bridge[C, P, R]) Result(id ecs.EntityID) (R, bool) {
	return b.results.TryGet(id)
}

// Pending returns the number of queued commands.
func (b *Bridge[C, P, R]) Pending() int { return b.channel.Len() }

// Skipped returns how many drains were skipped because the service was not ready.
func (b *Bridge[C, P, R]) Skipped() uint64 { return b.skipped }

// BeginTick promotes the previous drain's results. Called at tick start.
func (b *Bridge[C, P, R]) BeginTick() {
	b.results.Promote()
}

// Drain applies every queued command, advances the service and publishes a
// fresh snapshot. Readable results are cleared either way. When the service
// is not ready the drain is skipped and the commands stay queued for the next
// tick. Returns the number applied.
func (b *Bridge[C, P, R]) Drain(dt time.Duration) int {
	b.results.Clear()
	if (b.gate != nil && !b.gate()) || !b.svc.Ready() {
		b.skipped++
		if b.skipped == 1 || b.skipped%100 == 0 {
			b.log.Debug("bridge not ready, drain skipped",
				zap.Uint64("skipped", b.skipped),
				zap.Int("pending", b.channel.Len()),
			)
		}
		return 0
	}

	cmds := b.channel.DrainAll()
	for _, cmd := range cmds {
		if b.journal != nil {
			b.journal.Record(b.name, cmd)
		}
		if r, ok := b.svc.Apply(cmd); ok {
			b.results.Publish(cmd.Source(), r)
		}
	}
	b.svc.Update(dt)
	b.property.Store(b.svc.Snapshot())
	return len(cmds)
}
