package sequencer

import (
	"fmt"

	"go.uber.org/zap"
)

// Start is an entry point. Play creates one instance per Start node.
type Start struct {
	base `yaml:"-"`
}

// Delay completes once Seconds of scaled time have passed since the last
// instance arrived.
type Delay struct {
	base    `yaml:"-"`
	Seconds float64 `yaml:"seconds"`

	started float64
}

func (d *Delay) validate() error {
	if d.Seconds < 0 {
		d.Seconds = 0
	}
	return nil
}

func (d *Delay) Start(ctx *Context) { d.started = ctx.Now }

func (d *Delay) Update(ctx *Context) bool { return ctx.Now-d.started >= d.Seconds }

// OnceThen leaves through port 0 the first time and port 1 ever after.
type OnceThen struct {
	base `yaml:"-"`

	passed bool
}

func (o *OnceThen) Next(*Context) []int {
	if o.passed {
		return []int{1}
	}
	o.passed = true
	return port0
}

// Repeat leaves through port 0 ("while") Count times, then once through
// port 1 ("break") and starts counting again.
type Repeat struct {
	base  `yaml:"-"`
	Count int `yaml:"count"`

	value int
}

func (r *Repeat) validate() error {
	if r.Count < 0 {
		r.Count = 0
	}
	return nil
}

func (r *Repeat) Next(*Context) []int {
	r.value++
	if r.value <= r.Count {
		return port0
	}
	r.value = 0
	return []int{1}
}

// Randomize leaves through exactly one port, picked with probability
// proportional to its weight. All-zero weights pick uniformly.
type Randomize struct {
	base    `yaml:"-"`
	Weights []float64 `yaml:"weights"`
}

func (r *Randomize) validate() error {
	if len(r.Weights) == 0 {
		r.Weights = []float64{1, 1}
	}
	for i, w := range r.Weights {
		if w < 0 {
			r.Weights[i] = 0
		}
	}
	return nil
}

func (r *Randomize) Next(ctx *Context) []int {
	return []int{r.pick(ctx.Rand().Float64())}
}

// pick maps u in [0, 1) onto a port index.
func (r *Randomize) pick(u float64) int {
	var total float64
	for _, w := range r.Weights {
		total += w
	}
	if total == 0 {
		return min(int(u*float64(len(r.Weights))), len(r.Weights)-1)
	}
	acc := 0.0
	target := u * total
	for i, w := range r.Weights {
		acc += w
		if target < acc {
			return i
		}
	}
	return len(r.Weights) - 1
}

// Branch leaves through port 0 when the Lua condition holds, else port 1.
type Branch struct {
	base      `yaml:"-"`
	Condition string `yaml:"condition"`

	result bool
}

func (b *Branch) validate() error {
	if b.Condition == "" {
		return fmt.Errorf("branch: missing condition")
	}
	return nil
}

func (b *Branch) Update(ctx *Context) bool {
	b.result = false
	eng := ctx.Scripts()
	if eng == nil {
		ctx.Log().Warn("branch without script engine", zap.String("event", ctx.Key))
		return true
	}
	ok, err := eng.EvalCondition(b.Condition, scriptVars(ctx))
	if err != nil {
		ctx.Log().Warn("branch condition failed", zap.String("event", ctx.Key), zap.Error(err))
		return true
	}
	b.result = ok
	return true
}

func (b *Branch) Next(*Context) []int {
	if b.result {
		return port0
	}
	return []int{1}
}

// Script calls a Lua function; a numeric return picks the output port.
type Script struct {
	base     `yaml:"-"`
	Function string `yaml:"function"`

	port int
}

func (s *Script) validate() error {
	if s.Function == "" {
		return fmt.Errorf("script: missing function")
	}
	return nil
}

func (s *Script) Update(ctx *Context) bool {
	s.port = 0
	eng := ctx.Scripts()
	if eng == nil {
		return true
	}
	port, err := eng.Run(s.Function, scriptVars(ctx))
	if err != nil {
		ctx.Log().Warn("script node failed", zap.String("event", ctx.Key), zap.Error(err))
		return true
	}
	s.port = port
	return true
}

func (s *Script) Next(*Context) []int { return []int{s.port} }

// Log writes a message to the server log.
type Log struct {
	base    `yaml:"-"`
	Message string `yaml:"message"`
	Level   string `yaml:"level,omitempty"`
}

func (l *Log) Start(ctx *Context) {
	fields := []zap.Field{zap.String("event", ctx.Key), zap.Uint32("event_id", uint32(ctx.Event))}
	switch l.Level {
	case "debug":
		ctx.Log().Debug(l.Message, fields...)
	case "warn":
		ctx.Log().Warn(l.Message, fields...)
	default:
		ctx.Log().Info(l.Message, fields...)
	}
}

func scriptVars(ctx *Context) map[string]any {
	return map[string]any{
		"event":    ctx.Key,
		"event_id": uint32(ctx.Event),
		"source":   uint64(ctx.Source),
		"node":     ctx.Node.Name,
		"now":      ctx.Now,
		"tick":     ctx.Tick,
	}
}
