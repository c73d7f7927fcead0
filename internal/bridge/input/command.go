package input

import "github.com/creaturesim/server/internal/bridge"

type Method uint8

const (
	MethodSetInputEnabled Method = iota + 1
	MethodResetInput
)

func (m Method) String() string {
	switch m {
	case MethodSetInputEnabled:
		return "SetInputEnabled"
	case MethodResetInput:
		return "ResetInput"
	default:
		return "Unknown"
	}
}

type Command interface {
	bridge.Command
	Method() Method
}

// SetInputEnabled gates every owner's input. Disabled input reads as idle.
type SetInputEnabled struct {
	bridge.Header
	Enabled bool `json:"enabled"`
}

// ResetInput forgets the latest frame of one owner, or of all owners when
// Owner is zero.
type ResetInput struct {
	bridge.Header
	Owner uint64 `json:"owner"`
}

func (SetInputEnabled) Method() Method { return MethodSetInputEnabled }
func (ResetInput) Method() Method      { return MethodResetInput }

func (c SetInputEnabled) MethodName() string { return c.Method().String() }
func (c ResetInput) MethodName() string      { return c.Method().String() }
