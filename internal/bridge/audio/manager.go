package audio

import (
	"math"
	"time"

	"github.com/creaturesim/server/internal/bridge"
	"github.com/creaturesim/server/internal/core/vec"
	"github.com/creaturesim/server/internal/data"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"go.uber.org/zap"
)

const (
	defaultMinDistance = 1.0
	defaultMaxDistance = 30.0
	mixChunk           = 512
)

// Kind classifies a playing voice.
type Kind uint8

const (
	KindMusic Kind = iota + 1
	KindFlat
	KindPoint
	KindBlend
)

func (k Kind) String() string {
	switch k {
	case KindMusic:
		return "music"
	case KindFlat:
		return "flat"
	case KindPoint:
		return "point"
	case KindBlend:
		return "blend"
	default:
		return "unknown"
	}
}

// Result carries the handle produced by the Play* methods.
type Result struct {
	AudioID bridge.Handle
}

// Listener is the ear's pose.
type Listener struct {
	Position vec.Vec3 `json:"position"`
	Yaw      float64  `json:"yaw"`
}

// Source is one playing voice as seen by observers.
type Source struct {
	ID       bridge.Handle `json:"id"`
	Clip     string        `json:"clip"`
	Kind     string        `json:"kind"`
	Position vec.Vec3      `json:"position"`
	Gain     float64       `json:"gain"` // effective, after attenuation
	Pan      float64       `json:"pan"`
}

// Property is the per-tick audio snapshot.
type Property struct {
	Listener Listener      `json:"listener"`
	MusicID  bridge.Handle `json:"music_id"`
	Music    string        `json:"music"`
	Active   int           `json:"active"`
	Sources  []Source      `json:"sources"`
	Peak     float64       `json:"peak"` // loudest sample mixed last tick
	Mixed    int64         `json:"mixed"`
}

type voice struct {
	kind     Kind
	clip     string
	volume   float64
	position vec.Vec3
	blend    float64
	minDist  float64
	maxDist  float64

	ctrl *beep.Ctrl
	gain *effects.Volume
	pan  *effects.Pan
	done bool

	effGain float64
	effPan  float64
}

// Manager is a headless mixer. Update pulls exactly dt worth of samples
// through the mixer, so voices progress in simulation time rather than on a
// sound card clock.
type Manager struct {
	rate     beep.SampleRate
	table    *data.AudioClipTable
	clips    map[string]*clip
	mixer    *beep.Mixer
	voices   *bridge.Pool[*voice]
	music    bridge.Handle
	listener Listener
	scratch  [][2]float64
	peak     float64
	mixed    int64
	log      *zap.Logger
}

func NewManager(sampleRate int, log *zap.Logger) *Manager {
	return &Manager{
		rate:    beep.SampleRate(sampleRate),
		clips:   make(map[string]*clip),
		mixer:   &beep.Mixer{},
		voices:  bridge.NewPool[*voice](32),
		scratch: make([][2]float64, mixChunk),
		log:     log,
	}
}

// Load installs the clip table. The manager is not ready until it has one.
func (m *Manager) Load(table *data.AudioClipTable) {
	m.table = table
	clear(m.clips)
}

func (m *Manager) Ready() bool { return m.table != nil }

func (m *Manager) clip(name string) *clip {
	if c, ok := m.clips[name]; ok {
		return c
	}
	def := m.table.Get(name)
	if def == nil {
		m.log.Warn("unknown audio clip", zap.String("clip", name))
		return nil
	}
	c, err := loadClip(def, m.rate)
	if err != nil {
		m.log.Warn("audio clip load failed", zap.String("clip", name), zap.Error(err))
		return nil
	}
	m.clips[name] = c
	return c
}

func (m *Manager) Apply(cmd Command) (Result, bool) {
	switch c := cmd.(type) {
	case PlayMusic:
		m.stop(m.music)
		m.music = 0
		h, ok := m.play(&voice{kind: KindMusic, clip: c.Clip, volume: c.Volume}, true)
		if !ok {
			return Result{}, false
		}
		m.music = h
		return Result{AudioID: h}, true
	case StopMusic:
		m.stop(m.music)
		m.music = 0
	case PlaySoundFX:
		h, ok := m.play(&voice{kind: KindFlat, clip: c.Clip, volume: c.Volume}, false)
		return Result{AudioID: h}, ok
	case PlayPointSoundFX:
		h, ok := m.play(&voice{
			kind:     KindPoint,
			clip:     c.Clip,
			volume:   c.Volume,
			position: c.Position,
			blend:    1,
			minDist:  c.MinDistance,
			maxDist:  c.MaxDistance,
		}, false)
		return Result{AudioID: h}, ok
	case PlayBlendSoundFX:
		h, ok := m.play(&voice{
			kind:     KindBlend,
			clip:     c.Clip,
			volume:   c.Volume,
			position: c.Position,
			blend:    vec.Clamp01(c.SpatialBlend),
			minDist:  c.MinDistance,
			maxDist:  c.MaxDistance,
		}, false)
		return Result{AudioID: h}, ok
	case SetAudioPosition:
		if v, ok := m.voices.Get(c.Audio); ok {
			(*v).position = c.Position
		}
	case SetAudioVolume:
		if v, ok := m.voices.Get(c.Audio); ok {
			(*v).volume = math.Max(0, c.Volume)
		}
	case StopAudio:
		if c.Audio == m.music {
			m.music = 0
		}
		m.stop(c.Audio)
	case SetListener:
		m.listener = Listener{Position: c.Position, Yaw: c.Yaw}
	default:
		m.log.Warn("unhandled audio command", zap.String("method", cmd.MethodName()))
	}
	return Result{}, false
}

func (m *Manager) play(v *voice, loop bool) (bridge.Handle, bool) {
	c := m.clip(v.clip)
	if c == nil {
		return 0, false
	}
	v.volume = math.Max(0, v.volume) * c.def.Gain
	if v.minDist <= 0 {
		v.minDist = defaultMinDistance
	}
	if v.maxDist <= v.minDist {
		v.maxDist = math.Max(defaultMaxDistance, v.minDist+1)
	}

	v.ctrl = &beep.Ctrl{Streamer: c.streamer(loop)}
	v.gain = &effects.Volume{Streamer: v.ctrl, Base: 2}
	v.pan = &effects.Pan{Streamer: v.gain}
	m.spatialize(v)

	m.mixer.Add(beep.Seq(v.pan, beep.Callback(func() { v.done = true })))

	h, slot := m.voices.Acquire()
	*slot = v
	return h, true
}

// stop silences h. The mixer drops the voice on its next pull.
func (m *Manager) stop(h bridge.Handle) {
	v, ok := m.voices.Get(h)
	if !ok {
		return
	}
	(*v).ctrl.Streamer = nil
	(*v).done = true
	m.voices.Release(h)
}

// spatialize recomputes gain and pan from the listener pose.
func (m *Manager) spatialize(v *voice) {
	att, pan := 1.0, 0.0
	if v.blend > 0 {
		rel := v.position.Sub(m.listener.Position)
		d := rel.Len()
		var spatial float64
		switch {
		case d <= v.minDist:
			spatial = 1
		case d >= v.maxDist:
			spatial = 0
		default:
			spatial = 1 - (d-v.minDist)/(v.maxDist-v.minDist)
		}
		att = (1-v.blend)*1 + v.blend*spatial

		if h := rel.Horizontal(); !h.IsZero() {
			right := vec.V2(math.Cos(m.listener.Yaw), -math.Sin(m.listener.Yaw))
			pan = math.Max(-1, math.Min(1, h.Normalize().Dot(right)*v.blend))
		}
	}

	v.effGain = v.volume * att
	v.effPan = pan
	if v.effGain <= 0 {
		v.gain.Silent = true
		v.gain.Volume = 0
	} else {
		v.gain.Silent = false
		v.gain.Volume = math.Log2(v.effGain)
	}
	v.pan.Pan = pan
}

func (m *Manager) Update(dt time.Duration) {
	m.voices.Each(func(_ bridge.Handle, v **voice) {
		m.spatialize(*v)
	})

	m.peak = 0
	for n := m.rate.N(dt); n > 0; {
		chunk := m.scratch
		if n < len(chunk) {
			chunk = chunk[:n]
		}
		m.mixer.Stream(chunk)
		for _, s := range chunk {
			m.peak = math.Max(m.peak, math.Max(math.Abs(s[0]), math.Abs(s[1])))
		}
		n -= len(chunk)
		m.mixed += int64(len(chunk))
	}

	m.voices.Each(func(h bridge.Handle, v **voice) {
		if (*v).done {
			if h == m.music {
				m.music = 0
			}
			m.voices.Release(h)
		}
	})
}

func (m *Manager) Snapshot() Property {
	p := Property{
		Listener: m.listener,
		MusicID:  m.music,
		Active:   m.voices.Len(),
		Sources:  make([]Source, 0, m.voices.Len()),
		Peak:     m.peak,
		Mixed:    m.mixed,
	}
	m.voices.Each(func(h bridge.Handle, vp **voice) {
		v := *vp
		if h == m.music {
			p.Music = v.clip
		}
		p.Sources = append(p.Sources, Source{
			ID:       h,
			Clip:     v.clip,
			Kind:     v.kind.String(),
			Position: v.position,
			Gain:     v.effGain,
			Pan:      v.effPan,
		})
	})
	return p
}
