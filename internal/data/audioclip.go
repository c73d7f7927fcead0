package data

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Tone describes a synthesized clip.
type Tone struct {
	Frequency float64 `yaml:"frequency"` // Hz
	Duration  float64 `yaml:"duration"`  // seconds, 0 = endless
	Wave      string  `yaml:"wave"`      // sine, square, saw, noise
}

// AudioClip is one playable clip: either a WAV file or a synthesized tone.
type AudioClip struct {
	Name string  `yaml:"name"`
	File string  `yaml:"file"` // relative to the table's directory
	Tone *Tone   `yaml:"tone"`
	Loop bool    `yaml:"loop"`
	Gain float64 `yaml:"gain"` // linear multiplier, 0 means 1
}

type audioClipFile struct {
	Clips []AudioClip `yaml:"clips"`
}

// AudioClipTable holds clip definitions indexed by name.
type AudioClipTable struct {
	clips map[string]*AudioClip
}

// Get returns the clip with the given name, or nil.
func (t *AudioClipTable) Get(name string) *AudioClip {
	return t.clips[name]
}

// Count returns the number of clips.
func (t *AudioClipTable) Count() int {
	return len(t.clips)
}

// NewAudioClipTable builds a table from in-memory clips.
func NewAudioClipTable(clips ...AudioClip) (*AudioClipTable, error) {
	t := &AudioClipTable{clips: make(map[string]*AudioClip, len(clips))}
	for i := range clips {
		c := clips[i]
		if c.Name == "" {
			return nil, fmt.Errorf("clip %d: missing name", i)
		}
		if c.File == "" && c.Tone == nil {
			return nil, fmt.Errorf("clip %s: needs file or tone", c.Name)
		}
		if c.Gain == 0 {
			c.Gain = 1
		}
		t.clips[c.Name] = &c
	}
	return t, nil
}

// LoadAudioClipTable loads clip definitions from a YAML file. Clip file paths
// are resolved against the YAML file's directory.
func LoadAudioClipTable(path string) (*AudioClipTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read audio_clips: %w", err)
	}
	var f audioClipFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse audio_clips: %w", err)
	}
	dir := filepath.Dir(path)
	for i := range f.Clips {
		if f.Clips[i].File != "" && !filepath.IsAbs(f.Clips[i].File) {
			f.Clips[i].File = filepath.Join(dir, f.Clips[i].File)
		}
	}
	t, err := NewAudioClipTable(f.Clips...)
	if err != nil {
		return nil, fmt.Errorf("audio_clips: %w", err)
	}
	return t, nil
}
