package audio

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/creaturesim/server/internal/data"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// endlessToneLength is how much of a zero-duration tone is rendered; the
// voice loops it.
const endlessToneLength = time.Second

// tone generates a raw waveform for a fixed number of samples.
type tone struct {
	freq     float64
	phase    float64
	position int
	samples  int
	wave     string
	rate     beep.SampleRate
	rng      *rand.Rand
}

func (o *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.samples {
			return i, i > 0
		}
		var val float64
		switch o.wave {
		case "square":
			if o.phase < 0.5 {
				val = 1
			} else {
				val = -1
			}
		case "saw":
			val = 2 * (o.phase - 0.5)
		case "noise":
			val = o.rng.Float64()*2 - 1
		default:
			val = math.Sin(2 * math.Pi * o.phase)
		}
		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *tone) Err() error { return nil }

// clip is a decoded clip held in memory at the mixer's sample rate.
type clip struct {
	def    *data.AudioClip
	buffer *beep.Buffer
	loop   bool
}

// streamer returns a fresh playback stream over the clip.
func (c *clip) streamer(forceLoop bool) beep.Streamer {
	s := c.buffer.Streamer(0, c.buffer.Len())
	if c.loop || forceLoop {
		return beep.Loop(-1, s)
	}
	return s
}

func loadClip(def *data.AudioClip, rate beep.SampleRate) (*clip, error) {
	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	c := &clip{def: def, buffer: beep.NewBuffer(format), loop: def.Loop}

	if def.Tone != nil {
		length := time.Duration(def.Tone.Duration * float64(time.Second))
		if length <= 0 {
			length = endlessToneLength
			c.loop = true
		}
		c.buffer.Append(&tone{
			freq:    def.Tone.Frequency,
			samples: rate.N(length),
			wave:    def.Tone.Wave,
			rate:    rate,
			rng:     rand.New(rand.NewSource(int64(len(def.Name)))),
		})
		return c, nil
	}

	f, err := os.Open(def.File)
	if err != nil {
		return nil, fmt.Errorf("open clip %s: %w", def.Name, err)
	}
	defer f.Close()

	s, fileFormat, err := wav.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode clip %s: %w", def.Name, err)
	}
	defer s.Close()

	var src beep.Streamer = s
	if fileFormat.SampleRate != rate {
		src = beep.Resample(4, fileFormat.SampleRate, rate, s)
	}
	c.buffer.Append(src)
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("stream clip %s: %w", def.Name, err)
	}
	return c, nil
}
