package ui

import (
	"github.com/creaturesim/server/internal/bridge"
	"github.com/creaturesim/server/internal/core/vec"
)

type Method uint8

const (
	MethodOpenScreen Method = iota + 1
	MethodBack
	MethodAddText
	MethodSetTextValue
	MethodSetTextPosition
	MethodSetTextDuration
	MethodSetTextLayer
	MethodRemoveText
)

var methodNames = [...]string{
	MethodOpenScreen:      "OpenScreen",
	MethodBack:            "Back",
	MethodAddText:         "AddText",
	MethodSetTextValue:    "SetTextValue",
	MethodSetTextPosition: "SetTextPosition",
	MethodSetTextDuration: "SetTextDuration",
	MethodSetTextLayer:    "SetTextLayer",
	MethodRemoveText:      "RemoveText",
}

func (m Method) String() string {
	if int(m) < len(methodNames) && methodNames[m] != "" {
		return methodNames[m]
	}
	return "Unknown"
}

type Command interface {
	bridge.Command
	Method() Method
}

// OpenScreen pushes a registered screen onto the navigation stack.
type OpenScreen struct {
	bridge.Header
	Screen string `json:"screen"`
}

// Back pops the top screen.
type Back struct {
	bridge.Header
}

// AddText places a floating text label. Position is in normalized screen
// coordinates. Duration 0 keeps it until RemoveText.
type AddText struct {
	bridge.Header
	Value    string   `json:"value"`
	Position vec.Vec2 `json:"position"`
	Duration float64  `json:"duration"`
	Layer    int      `json:"layer"`
}

type SetTextValue struct {
	bridge.Header
	Text  bridge.Handle `json:"text"`
	Value string        `json:"value"`
}

type SetTextPosition struct {
	bridge.Header
	Text     bridge.Handle `json:"text"`
	Position vec.Vec2      `json:"position"`
}

type SetTextDuration struct {
	bridge.Header
	Text     bridge.Handle `json:"text"`
	Duration float64       `json:"duration"`
}

type SetTextLayer struct {
	bridge.Header
	Text  bridge.Handle `json:"text"`
	Layer int           `json:"layer"`
}

type RemoveText struct {
	bridge.Header
	Text bridge.Handle `json:"text"`
}

func (OpenScreen) Method() Method      { return MethodOpenScreen }
func (Back) Method() Method            { return MethodBack }
func (AddText) Method() Method         { return MethodAddText }
func (SetTextValue) Method() Method    { return MethodSetTextValue }
func (SetTextPosition) Method() Method { return MethodSetTextPosition }
func (SetTextDuration) Method() Method { return MethodSetTextDuration }
func (SetTextLayer) Method() Method    { return MethodSetTextLayer }
func (RemoveText) Method() Method      { return MethodRemoveText }

func (c OpenScreen) MethodName() string      { return c.Method().String() }
func (c Back) MethodName() string            { return c.Method().String() }
func (c AddText) MethodName() string         { return c.Method().String() }
func (c SetTextValue) MethodName() string    { return c.Method().String() }
func (c SetTextPosition) MethodName() string { return c.Method().String() }
func (c SetTextDuration) MethodName() string { return c.Method().String() }
func (c SetTextLayer) MethodName() string    { return c.Method().String() }
func (c RemoveText) MethodName() string      { return c.Method().String() }
