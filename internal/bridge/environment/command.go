package environment

import (
	"image/color"

	"github.com/creaturesim/server/internal/bridge"
	"github.com/creaturesim/server/internal/core/vec"
)

type Method uint8

const (
	MethodSetTimeOfDay Method = iota + 1
	MethodAddLight
	MethodSetLightColor
	MethodSetLightIntensity
	MethodSetLightPosition
	MethodSetLightDuration
	MethodSetLightRange
	MethodRemoveLight
)

var methodNames = [...]string{
	MethodSetTimeOfDay:      "SetTimeOfDay",
	MethodAddLight:          "AddLight",
	MethodSetLightColor:     "SetLightColor",
	MethodSetLightIntensity: "SetLightIntensity",
	MethodSetLightPosition:  "SetLightPosition",
	MethodSetLightDuration:  "SetLightDuration",
	MethodSetLightRange:     "SetLightRange",
	MethodRemoveLight:       "RemoveLight",
}

func (m Method) String() string {
	if int(m) < len(methodNames) && methodNames[m] != "" {
		return methodNames[m]
	}
	return "Unknown"
}

// Command is the sum of all environment command variants.
type Command interface {
	bridge.Command
	Method() Method
}

// SetTimeOfDay sets the clock in hours; values wrap into [0, 24).
type SetTimeOfDay struct {
	bridge.Header
	Hours float64 `json:"hours"`
}

// AddLight spawns a point light. Duration 0 keeps it until RemoveLight.
type AddLight struct {
	bridge.Header
	Color     color.RGBA `json:"color"`
	Intensity float64    `json:"intensity"`
	Position  vec.Vec3   `json:"position"`
	Range     float64    `json:"range"`
	Duration  float64    `json:"duration"`
}

type SetLightColor struct {
	bridge.Header
	Light bridge.Handle `json:"light"`
	Color color.RGBA    `json:"color"`
}

type SetLightIntensity struct {
	bridge.Header
	Light     bridge.Handle `json:"light"`
	Intensity float64       `json:"intensity"`
}

type SetLightPosition struct {
	bridge.Header
	Light    bridge.Handle `json:"light"`
	Position vec.Vec3      `json:"position"`
}

// SetLightDuration restarts the light's lifetime. 0 makes it permanent.
type SetLightDuration struct {
	bridge.Header
	Light    bridge.Handle `json:"light"`
	Duration float64       `json:"duration"`
}

type SetLightRange struct {
	bridge.Header
	Light bridge.Handle `json:"light"`
	Range float64       `json:"range"`
}

type RemoveLight struct {
	bridge.Header
	Light bridge.Handle `json:"light"`
}

func (SetTimeOfDay) Method() Method      { return MethodSetTimeOfDay }
func (AddLight) Method() Method          { return MethodAddLight }
func (SetLightColor) Method() Method     { return MethodSetLightColor }
func (SetLightIntensity) Method() Method { return MethodSetLightIntensity }
func (SetLightPosition) Method() Method  { return MethodSetLightPosition }
func (SetLightDuration) Method() Method  { return MethodSetLightDuration }
func (SetLightRange) Method() Method     { return MethodSetLightRange }
func (RemoveLight) Method() Method       { return MethodRemoveLight }

func (c SetTimeOfDay) MethodName() string      { return c.Method().String() }
func (c AddLight) MethodName() string          { return c.Method().String() }
func (c SetLightColor) MethodName() string     { return c.Method().String() }
func (c SetLightIntensity) MethodName() string { return c.Method().String() }
func (c SetLightPosition) MethodName() string  { return c.Method().String() }
func (c SetLightDuration) MethodName() string  { return c.Method().String() }
func (c SetLightRange) MethodName() string     { return c.Method().String() }
func (c RemoveLight) MethodName() string       { return c.Method().String() }
