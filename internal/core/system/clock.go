package system

// Clock is the simulation's notion of time, shared by all systems.
// Written by the Runner only; read by systems during their Update.
type Clock struct {
	tick      uint64
	confirmed uint64
	firstFull bool
}

func NewClock() *Clock { return &Clock{} }

// Tick returns the number of the tick being simulated.
func (c *Clock) Tick() uint64 { return c.tick }

// FirstFullPredictionTick reports whether the current tick is simulated for
// the first time. It is false while the Runner replays ticks for a rollback,
// so one-shot side effects (spawns, sounds) must be gated on it.
func (c *Clock) FirstFullPredictionTick() bool { return c.firstFull }

// Confirmed returns the latest tick simulated for the first time.
func (c *Clock) Confirmed() uint64 { return c.confirmed }

func (c *Clock) advance() {
	c.tick = c.confirmed + 1
	c.confirmed = c.tick
	c.firstFull = true
}

func (c *Clock) replay(tick uint64) {
	c.tick = tick
	c.firstFull = false
}

func (c *Clock) restore() {
	c.tick = c.confirmed
	c.firstFull = true
}
