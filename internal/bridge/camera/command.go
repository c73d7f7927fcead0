package camera

import (
	"github.com/creaturesim/server/internal/bridge"
	"github.com/creaturesim/server/internal/core/vec"
)

// Method tags a camera command variant.
type Method uint8

const (
	MethodShakeCamera Method = iota + 1
	MethodStopShaking
	MethodMoveCamera
	MethodSetFieldOfView
)

func (m Method) String() string {
	switch m {
	case MethodShakeCamera:
		return "ShakeCamera"
	case MethodStopShaking:
		return "StopShaking"
	case MethodMoveCamera:
		return "MoveCamera"
	case MethodSetFieldOfView:
		return "SetFieldOfView"
	default:
		return "Unknown"
	}
}

// Command is the sum of all camera command variants.
type Command interface {
	bridge.Command
	Method() Method
}

// ShakeCamera starts a decaying shake. A zero direction shakes diagonally.
type ShakeCamera struct {
	bridge.Header
	Strength  float64  `json:"strength"`
	Duration  float64  `json:"duration"` // seconds
	Direction vec.Vec3 `json:"direction"`
}

// StopShaking ends any running shake immediately.
type StopShaking struct {
	bridge.Header
}

// MoveCamera glides the rig to a pose over Duration seconds (0 = cut).
type MoveCamera struct {
	bridge.Header
	Position vec.Vec3 `json:"position"`
	Rotation vec.Vec3 `json:"rotation"`
	Duration float64  `json:"duration"`
}

// SetFieldOfView sets the vertical field of view in degrees.
type SetFieldOfView struct {
	bridge.Header
	Degrees float64 `json:"degrees"`
}

func (ShakeCamera) Method() Method    { return MethodShakeCamera }
func (StopShaking) Method() Method    { return MethodStopShaking }
func (MoveCamera) Method() Method     { return MethodMoveCamera }
func (SetFieldOfView) Method() Method { return MethodSetFieldOfView }

func (c ShakeCamera) MethodName() string    { return c.Method().String() }
func (c StopShaking) MethodName() string    { return c.Method().String() }
func (c MoveCamera) MethodName() string     { return c.Method().String() }
func (c SetFieldOfView) MethodName() string { return c.Method().String() }
