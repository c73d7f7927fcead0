package network

// Role is which side of the connection this process plays.
type Role uint8

const (
	RoleOffline Role = iota
	RoleServer
	RoleClient
)

func (r Role) String() string {
	switch r {
	case RoleServer:
		return "server"
	case RoleClient:
		return "client"
	default:
		return "offline"
	}
}

// State is the connection state machine position.
type State uint8

const (
	StateDisconnected State = iota
	StateConnecting
	StateApproving
	StateConnected
	StateListening
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateApproving:
		return "approving"
	case StateConnected:
		return "connected"
	case StateListening:
		return "listening"
	default:
		return "disconnected"
	}
}

// Error is the last connection failure, kept until the next successful
// connection.
type Error uint8

const (
	ErrorNone Error = iota
	ErrorConnectFailed
	ErrorTimeout
	ErrorRejected
	ErrorServerFull
	ErrorDisconnected
)

func (e Error) String() string {
	switch e {
	case ErrorConnectFailed:
		return "connect_failed"
	case ErrorTimeout:
		return "timeout"
	case ErrorRejected:
		return "rejected"
	case ErrorServerFull:
		return "server_full"
	case ErrorDisconnected:
		return "disconnected"
	default:
		return "none"
	}
}

// Status is what a transport reports once per drain.
type Status struct {
	Role        Role
	State       State
	Error       Error
	Connections int
}
