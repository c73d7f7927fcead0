package sequencer

import (
	"fmt"
	"image/color"

	"github.com/creaturesim/server/internal/bridge"
	"github.com/creaturesim/server/internal/bridge/game"
	"github.com/creaturesim/server/internal/core/ecs"
	"github.com/creaturesim/server/internal/core/vec"
	"go.uber.org/zap"
)

// resultWaitTicks bounds how long a node polls a bridge result.
const resultWaitTicks = 3

func v3(a [3]float64) vec.Vec3 { return vec.V3(a[0], a[1], a[2]) }

func rgba(c [4]uint8) color.RGBA {
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
}

// SpawnObject instantiates a prefab when the instance leaves the node and
// exposes the most recent spawn on output port 1.
type SpawnObject struct {
	base     `yaml:"-"`
	Prefab   string      `yaml:"prefab"`
	Position *[3]float64 `yaml:"position,omitempty"`

	spawned ecs.EntityID
}

func (s *SpawnObject) validate() error {
	if s.Prefab == "" {
		return fmt.Errorf("spawn_object: missing prefab")
	}
	return nil
}

func (s *SpawnObject) End(ctx *Context) {
	cmds := ctx.Commands()
	if cmds == nil {
		return
	}
	place := ctx.seq.deps.Place
	pos := s.Position
	cmds.Instantiate(0, s.Prefab, func(_ *ecs.World, id ecs.EntityID) {
		s.spawned = id
		if pos != nil && place != nil {
			place(id, v3(*pos))
		}
	})
}

func (s *SpawnObject) Output(port int) (uint64, bool) {
	if port != 1 || s.spawned == 0 {
		return 0, false
	}
	return uint64(s.spawned), true
}

// DestroyObject destroys the entity linked into input port 1 when the
// instance leaves the node.
type DestroyObject struct {
	base `yaml:"-"`
}

func (d *DestroyObject) End(ctx *Context) {
	id, ok := ctx.Input(1)
	if !ok || ctx.Commands() == nil {
		return
	}
	ctx.Commands().Destroy(0, ecs.EntityID(id))
}

// Dialogue shows a line of text on the dialogue screen for Duration
// seconds. The text is added with Duration as its own lifetime so it expires
// even when the node never learns its handle.
type Dialogue struct {
	base     `yaml:"-"`
	Speaker  string     `yaml:"speaker,omitempty"`
	Text     string     `yaml:"text"`
	Duration float64    `yaml:"duration"`
	Screen   string     `yaml:"screen,omitempty"`
	Position [2]float64 `yaml:"position"`
	Layer    int        `yaml:"layer"`

	started float64
	text    bridge.Handle
	waited  int
}

func (d *Dialogue) validate() error {
	if d.Duration <= 0 {
		d.Duration = 2
	}
	if d.Screen == "" {
		d.Screen = "dialogue"
	}
	return nil
}

func (d *Dialogue) line() string {
	if d.Speaker == "" {
		return d.Text
	}
	return d.Speaker + ": " + d.Text
}

func (d *Dialogue) Start(ctx *Context) {
	d.started = ctx.Now
	d.text = 0
	d.waited = 0
	if h := ctx.Hub(); h != nil {
		h.UI.OpenScreen(0, ctx.Source, d.Screen)
		h.UI.AddText(0, ctx.Source, d.line(), vec.V2(d.Position[0], d.Position[1]), d.Duration, d.Layer)
	}
}

func (d *Dialogue) Update(ctx *Context) bool {
	if h := ctx.Hub(); h != nil && d.text == 0 && d.waited < resultWaitTicks {
		d.waited++
		if id, ok := h.UI.TryGetTextID(ctx.Source); ok {
			// Claimed texts live until End removes them.
			d.text = id
			h.UI.SetTextDuration(0, ctx.Source, id, 0)
		}
	}
	return ctx.Now-d.started >= d.Duration
}

func (d *Dialogue) End(ctx *Context) {
	h := ctx.Hub()
	if h == nil {
		return
	}
	if d.text != 0 {
		h.UI.RemoveText(0, ctx.Source, d.text)
	}
	h.UI.Back(0, ctx.Source)
}

// PlayAudio starts a clip. Music replaces the current track; a Position
// makes the clip positional. The audio handle is exposed on port 1.
type PlayAudio struct {
	base         `yaml:"-"`
	Clip         string      `yaml:"clip"`
	Volume       float64     `yaml:"volume"`
	Music        bool        `yaml:"music,omitempty"`
	Position     *[3]float64 `yaml:"position,omitempty"`
	SpatialBlend float64     `yaml:"spatial_blend,omitempty"`

	handle bridge.Handle
	waited int
}

func (p *PlayAudio) validate() error {
	if p.Clip == "" {
		return fmt.Errorf("play_audio: missing clip")
	}
	if p.Volume == 0 {
		p.Volume = 1
	}
	return nil
}

func (p *PlayAudio) Start(ctx *Context) {
	p.handle = 0
	p.waited = 0
	h := ctx.Hub()
	if h == nil {
		return
	}
	switch {
	case p.Music:
		h.Audio.PlayMusic(0, ctx.Source, p.Clip, p.Volume)
	case p.Position != nil && p.SpatialBlend > 0 && p.SpatialBlend < 1:
		h.Audio.PlayBlendSoundFX(0, ctx.Source, p.Clip, v3(*p.Position), p.Volume, p.SpatialBlend, 0, 0)
	case p.Position != nil:
		h.Audio.PlayPointSoundFX(0, ctx.Source, p.Clip, v3(*p.Position), p.Volume, 0, 0)
	default:
		h.Audio.PlaySoundFX(0, ctx.Source, p.Clip, p.Volume)
	}
}

// Update waits for the handle so linked StopAudio nodes can use it.
func (p *PlayAudio) Update(ctx *Context) bool {
	h := ctx.Hub()
	if h == nil {
		return true
	}
	if id, ok := h.Audio.TryGetAudioID(ctx.Source); ok {
		p.handle = id
		return true
	}
	p.waited++
	return p.waited >= resultWaitTicks
}

func (p *PlayAudio) Output(port int) (uint64, bool) {
	if port != 1 || p.handle == 0 {
		return 0, false
	}
	return uint64(p.handle), true
}

// StopAudio stops the music, or the voice linked into input port 1.
type StopAudio struct {
	base  `yaml:"-"`
	Music bool `yaml:"music,omitempty"`
}

func (s *StopAudio) Start(ctx *Context) {
	h := ctx.Hub()
	if h == nil {
		return
	}
	if s.Music {
		h.Audio.StopMusic(0, ctx.Source)
		return
	}
	if id, ok := ctx.Input(1); ok {
		h.Audio.StopAudio(0, ctx.Source, bridge.Handle(id))
	}
}

// Light adds a point light. Duration 0 leaves it on.
type Light struct {
	base      `yaml:"-"`
	Color     [4]uint8   `yaml:"color"`
	Intensity float64    `yaml:"intensity"`
	Position  [3]float64 `yaml:"position"`
	Range     float64    `yaml:"range"`
	Duration  float64    `yaml:"duration"`
}

func (l *Light) Start(ctx *Context) {
	if h := ctx.Hub(); h != nil {
		h.Environment.AddLight(0, ctx.Source, rgba(l.Color), l.Intensity, v3(l.Position), l.Range, l.Duration)
	}
}

// CameraShake shakes the camera; with Wait set the node holds until the
// shake is over.
type CameraShake struct {
	base      `yaml:"-"`
	Strength  float64    `yaml:"strength"`
	Duration  float64    `yaml:"duration"`
	Direction [3]float64 `yaml:"direction"`
	Wait      bool       `yaml:"wait,omitempty"`

	started float64
}

func (c *CameraShake) Start(ctx *Context) {
	c.started = ctx.Now
	if h := ctx.Hub(); h != nil {
		h.Camera.ShakeCamera(0, ctx.Source, c.Strength, c.Duration, v3(c.Direction))
	}
}

func (c *CameraShake) Update(ctx *Context) bool {
	return !c.Wait || ctx.Now-c.started >= c.Duration
}

// CameraMove glides the camera and holds until the glide is over.
type CameraMove struct {
	base     `yaml:"-"`
	Position [3]float64 `yaml:"position"`
	Rotation [3]float64 `yaml:"rotation"`
	Duration float64    `yaml:"duration"`

	started float64
}

func (c *CameraMove) Start(ctx *Context) {
	c.started = ctx.Now
	if h := ctx.Hub(); h != nil {
		h.Camera.MoveCamera(0, ctx.Source, v3(c.Position), v3(c.Rotation), c.Duration)
	}
}

func (c *CameraMove) Update(ctx *Context) bool { return ctx.Now-c.started >= c.Duration }

// SetGameState switches the flow state and optionally the time scale.
type SetGameState struct {
	base      `yaml:"-"`
	State     string   `yaml:"state"`
	TimeScale *float64 `yaml:"time_scale,omitempty"`

	state game.State
}

func (s *SetGameState) validate() error {
	st, err := game.ParseState(s.State)
	if err != nil {
		return fmt.Errorf("set_game_state: %w", err)
	}
	s.state = st
	return nil
}

func (s *SetGameState) Start(ctx *Context) {
	h := ctx.Hub()
	if h == nil {
		return
	}
	h.Game.SetGameState(0, ctx.Source, s.state)
	if s.TimeScale != nil {
		h.Game.SetTimeScale(0, ctx.Source, *s.TimeScale)
	}
}

// SetInput enables or disables player input, e.g. around a cutscene.
type SetInput struct {
	base    `yaml:"-"`
	Enabled bool `yaml:"enabled"`
}

func (s *SetInput) Start(ctx *Context) {
	if h := ctx.Hub(); h != nil {
		h.Input.SetInputEnabled(0, ctx.Source, s.Enabled)
	}
}

// PlayEvent starts another event graph through the game bridge.
type PlayEvent struct {
	base  `yaml:"-"`
	Event string `yaml:"event"`
}

func (p *PlayEvent) validate() error {
	if p.Event == "" {
		return fmt.Errorf("play_event: missing event")
	}
	return nil
}

func (p *PlayEvent) Start(ctx *Context) {
	if h := ctx.Hub(); h != nil {
		h.Game.PlayEvent(0, ctx.Source, p.Event)
		return
	}
	ctx.Log().Debug("play_event without bridges", zap.String("event", p.Event))
}
