package game

import "github.com/creaturesim/server/internal/bridge"

type Method uint8

const (
	MethodSetGameState Method = iota + 1
	MethodSetTimeScale
	MethodPlayEvent
	MethodIsEventPlaying
	MethodStopEvent
)

func (m Method) String() string {
	switch m {
	case MethodSetGameState:
		return "SetGameState"
	case MethodSetTimeScale:
		return "SetTimeScale"
	case MethodPlayEvent:
		return "PlayEvent"
	case MethodIsEventPlaying:
		return "IsEventPlaying"
	case MethodStopEvent:
		return "StopEvent"
	default:
		return "Unknown"
	}
}

type Command interface {
	bridge.Command
	Method() Method
}

type SetGameState struct {
	bridge.Header
	State State `json:"state"`
}

// SetTimeScale scales game time. Values are clamped to [0, MaxTimeScale].
type SetTimeScale struct {
	bridge.Header
	Scale float64 `json:"scale"`
}

// PlayEvent starts the event graph registered under Event.
type PlayEvent struct {
	bridge.Header
	Event string `json:"event"`
}

type IsEventPlaying struct {
	bridge.Header
	Event EventID `json:"event"`
}

type StopEvent struct {
	bridge.Header
	Event EventID `json:"event"`
}

func (SetGameState) Method() Method   { return MethodSetGameState }
func (SetTimeScale) Method() Method   { return MethodSetTimeScale }
func (PlayEvent) Method() Method      { return MethodPlayEvent }
func (IsEventPlaying) Method() Method { return MethodIsEventPlaying }
func (StopEvent) Method() Method      { return MethodStopEvent }

func (c SetGameState) MethodName() string   { return c.Method().String() }
func (c SetTimeScale) MethodName() string   { return c.Method().String() }
func (c PlayEvent) MethodName() string      { return c.Method().String() }
func (c IsEventPlaying) MethodName() string { return c.Method().String() }
func (c StopEvent) MethodName() string      { return c.Method().String() }
