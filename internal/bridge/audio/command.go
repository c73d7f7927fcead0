package audio

import (
	"github.com/creaturesim/server/internal/bridge"
	"github.com/creaturesim/server/internal/core/vec"
)

type Method uint8

const (
	MethodPlayMusic Method = iota + 1
	MethodStopMusic
	MethodPlaySoundFX
	MethodPlayPointSoundFX
	MethodPlayBlendSoundFX
	MethodSetAudioPosition
	MethodSetAudioVolume
	MethodStopAudio
	MethodSetListener
)

var methodNames = [...]string{
	MethodPlayMusic:        "PlayMusic",
	MethodStopMusic:        "StopMusic",
	MethodPlaySoundFX:      "PlaySoundFX",
	MethodPlayPointSoundFX: "PlayPointSoundFX",
	MethodPlayBlendSoundFX: "PlayBlendSoundFX",
	MethodSetAudioPosition: "SetAudioPosition",
	MethodSetAudioVolume:   "SetAudioVolume",
	MethodStopAudio:        "StopAudio",
	MethodSetListener:      "SetListener",
}

func (m Method) String() string {
	if int(m) < len(methodNames) && methodNames[m] != "" {
		return methodNames[m]
	}
	return "Unknown"
}

// Command is the sum of all audio command variants.
type Command interface {
	bridge.Command
	Method() Method
}

// PlayMusic replaces the current music track. Music always loops.
type PlayMusic struct {
	bridge.Header
	Clip   string  `json:"clip"`
	Volume float64 `json:"volume"`
}

type StopMusic struct {
	bridge.Header
}

// PlaySoundFX plays a non-positional clip.
type PlaySoundFX struct {
	bridge.Header
	Clip   string  `json:"clip"`
	Volume float64 `json:"volume"`
}

// PlayPointSoundFX plays a fully positional clip attenuated linearly between
// MinDistance and MaxDistance from the listener.
type PlayPointSoundFX struct {
	bridge.Header
	Clip        string   `json:"clip"`
	Position    vec.Vec3 `json:"position"`
	Volume      float64  `json:"volume"`
	MinDistance float64  `json:"min_distance"`
	MaxDistance float64  `json:"max_distance"`
}

// PlayBlendSoundFX blends between flat (0) and fully positional (1) playback.
type PlayBlendSoundFX struct {
	bridge.Header
	Clip         string   `json:"clip"`
	Position     vec.Vec3 `json:"position"`
	Volume       float64  `json:"volume"`
	SpatialBlend float64  `json:"spatial_blend"`
	MinDistance  float64  `json:"min_distance"`
	MaxDistance  float64  `json:"max_distance"`
}

type SetAudioPosition struct {
	bridge.Header
	Audio    bridge.Handle `json:"audio"`
	Position vec.Vec3      `json:"position"`
}

type SetAudioVolume struct {
	bridge.Header
	Audio  bridge.Handle `json:"audio"`
	Volume float64       `json:"volume"`
}

type StopAudio struct {
	bridge.Header
	Audio bridge.Handle `json:"audio"`
}

// SetListener moves the ear. Yaw is in radians around +Y; yaw 0 faces +Z.
type SetListener struct {
	bridge.Header
	Position vec.Vec3 `json:"position"`
	Yaw      float64  `json:"yaw"`
}

func (PlayMusic) Method() Method        { return MethodPlayMusic }
func (StopMusic) Method() Method        { return MethodStopMusic }
func (PlaySoundFX) Method() Method      { return MethodPlaySoundFX }
func (PlayPointSoundFX) Method() Method { return MethodPlayPointSoundFX }
func (PlayBlendSoundFX) Method() Method { return MethodPlayBlendSoundFX }
func (SetAudioPosition) Method() Method { return MethodSetAudioPosition }
func (SetAudioVolume) Method() Method   { return MethodSetAudioVolume }
func (StopAudio) Method() Method        { return MethodStopAudio }
func (SetListener) Method() Method      { return MethodSetListener }

func (c PlayMusic) MethodName() string        { return c.Method().String() }
func (c StopMusic) MethodName() string        { return c.Method().String() }
func (c PlaySoundFX) MethodName() string      { return c.Method().String() }
func (c PlayPointSoundFX) MethodName() string { return c.Method().String() }
func (c PlayBlendSoundFX) MethodName() string { return c.Method().String() }
func (c SetAudioPosition) MethodName() string { return c.Method().String() }
func (c SetAudioVolume) MethodName() string   { return c.Method().String() }
func (c StopAudio) MethodName() string        { return c.Method().String() }
func (c SetListener) MethodName() string      { return c.Method().String() }
