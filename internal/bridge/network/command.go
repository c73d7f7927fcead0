package network

import "github.com/creaturesim/server/internal/bridge"

type Method uint8

const (
	MethodSendChatMessage Method = iota + 1
	MethodDisconnect
)

func (m Method) String() string {
	switch m {
	case MethodSendChatMessage:
		return "SendChatMessage"
	case MethodDisconnect:
		return "Disconnect"
	default:
		return "Unknown"
	}
}

type Command interface {
	bridge.Command
	Method() Method
}

// SendChatMessage sends chat on behalf of the source entity's owner.
type SendChatMessage struct {
	bridge.Header
	Text string `json:"text"`
}

// Disconnect drops a connection. Owner zero targets the source entity's
// owner; on a client it drops the client's own connection.
type Disconnect struct {
	bridge.Header
	Owner  uint64 `json:"owner"`
	Reason string `json:"reason"`
}

func (SendChatMessage) Method() Method { return MethodSendChatMessage }
func (Disconnect) Method() Method      { return MethodDisconnect }

func (c SendChatMessage) MethodName() string { return c.Method().String() }
func (c Disconnect) MethodName() string      { return c.Method().String() }
