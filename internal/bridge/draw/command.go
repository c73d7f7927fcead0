package draw

import (
	"image/color"

	"github.com/creaturesim/server/internal/bridge"
	"github.com/creaturesim/server/internal/core/vec"
)

type Method uint8

const (
	MethodDrawLine Method = iota + 1
	MethodDrawBox
	MethodDrawSphere
	MethodClearDraw
)

func (m Method) String() string {
	switch m {
	case MethodDrawLine:
		return "DrawLine"
	case MethodDrawBox:
		return "DrawBox"
	case MethodDrawSphere:
		return "DrawSphere"
	case MethodClearDraw:
		return "ClearDraw"
	default:
		return "Unknown"
	}
}

type Command interface {
	bridge.Command
	Method() Method
}

// DrawLine draws a debug segment. Duration 0 shows it for a single tick.
type DrawLine struct {
	bridge.Header
	From     vec.Vec3   `json:"from"`
	To       vec.Vec3   `json:"to"`
	Color    color.RGBA `json:"color"`
	Duration float64    `json:"duration"`
}

type DrawBox struct {
	bridge.Header
	Center   vec.Vec3   `json:"center"`
	Size     vec.Vec3   `json:"size"`
	Color    color.RGBA `json:"color"`
	Duration float64    `json:"duration"`
}

type DrawSphere struct {
	bridge.Header
	Center   vec.Vec3   `json:"center"`
	Radius   float64    `json:"radius"`
	Color    color.RGBA `json:"color"`
	Duration float64    `json:"duration"`
}

// ClearDraw removes every primitive, including timed ones.
type ClearDraw struct {
	bridge.Header
}

func (DrawLine) Method() Method   { return MethodDrawLine }
func (DrawBox) Method() Method    { return MethodDrawBox }
func (DrawSphere) Method() Method { return MethodDrawSphere }
func (ClearDraw) Method() Method  { return MethodClearDraw }

func (c DrawLine) MethodName() string   { return c.Method().String() }
func (c DrawBox) MethodName() string    { return c.Method().String() }
func (c DrawSphere) MethodName() string { return c.Method().String() }
func (c ClearDraw) MethodName() string  { return c.Method().String() }
