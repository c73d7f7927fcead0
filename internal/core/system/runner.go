package system

import (
	"sort"
	"time"
)

// Runner executes systems in phase order each tick.
type Runner struct {
	systems []System
	sorted  bool
	clock   *Clock
}

func NewRunner(clock *Clock) *Runner {
	if clock == nil {
		clock = NewClock()
	}
	return &Runner{
		systems: make([]System, 0, 16),
		clock:   clock,
	}
}

func (r *Runner) Clock() *Clock { return r.clock }

// Register adds a system. Systems sharing a phase run in registration order.
func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Tick advances the clock and runs every phase once.
func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	r.clock.advance()
	for _, s := range r.systems {
		s.Update(dt)
	}
}

// TickPhase runs only the systems of one phase without advancing the clock.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

// Resimulate replays PhasePrediction for the last n confirmed ticks, oldest
// first, with FirstFullPredictionTick reporting false. Callers restore the
// predicted component state to the rollback point before calling; prepare,
// when set, runs before each replayed tick to put back that tick's inputs.
func (r *Runner) Resimulate(n int, dt time.Duration, prepare func(tick uint64)) {
	if n <= 0 {
		return
	}
	r.ensureSorted()
	confirmed := r.clock.confirmed
	if uint64(n) > confirmed {
		n = int(confirmed)
	}
	for i := n - 1; i >= 0; i-- {
		tick := confirmed - uint64(i)
		r.clock.replay(tick)
		if prepare != nil {
			prepare(tick)
		}
		for _, s := range r.systems {
			if s.Phase() == PhasePrediction {
				s.Update(dt)
			}
		}
	}
	r.clock.restore()
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
