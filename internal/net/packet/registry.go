package packet

import (
	"fmt"

	"go.uber.org/zap"
)

// SessionState represents the session's current protocol phase.
type SessionState int

const (
	StateHandshake SessionState = iota // hello sent, awaiting approval
	StateApproved                      // approved, owns a player entity
	StateDisconnecting
)

func (s SessionState) String() string {
	switch s {
	case StateHandshake:
		return "Handshake"
	case StateApproved:
		return "Approved"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// HandlerFunc is the callback signature for packet handlers. The session is
// passed as an opaque value so this package does not import net.
type HandlerFunc func(sess any, r *Reader)

type handlerEntry struct {
	fn      HandlerFunc
	allowed uint8 // bit per SessionState
	calls   uint64
}

// Registry maps opcodes to handlers gated by session state.
type Registry struct {
	handlers map[byte]*handlerEntry
	refused  uint64
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[byte]*handlerEntry),
		log:      log,
	}
}

// Register maps an opcode to a handler, restricted to the given session states.
func (reg *Registry) Register(opcode byte, states []SessionState, fn HandlerFunc) {
	e := &handlerEntry{fn: fn}
	for _, s := range states {
		e.allowed |= 1 << uint(s)
	}
	reg.handlers[opcode] = e
}

// Dispatch runs the handler for the opcode in data[0]. Unknown opcodes are
// ignored; an opcode sent in the wrong session state is refused with an
// error.
func (reg *Registry) Dispatch(sess any, state SessionState, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty packet")
	}
	opcode := data[0]
	reg.log.Debug("packet received",
		zap.String("op", OpcodeName(opcode)),
		zap.Int("size", len(data)),
		zap.Stringer("state", state),
	)

	entry, ok := reg.handlers[opcode]
	if !ok {
		return nil
	}
	if entry.allowed&(1<<uint(state)) == 0 {
		reg.refused++
		reg.log.Warn("opcode not allowed in state",
			zap.String("op", OpcodeName(opcode)),
			zap.Stringer("state", state),
		)
		return fmt.Errorf("opcode %s not allowed in state %s", OpcodeName(opcode), state)
	}
	entry.calls++
	return reg.safeCall(entry.fn, sess, NewReader(data), opcode)
}

// Has reports whether a handler is registered for opcode.
func (reg *Registry) Has(opcode byte) bool {
	_, ok := reg.handlers[opcode]
	return ok
}

// Calls returns how many packets of opcode reached their handler.
func (reg *Registry) Calls(opcode byte) uint64 {
	if e, ok := reg.handlers[opcode]; ok {
		return e.calls
	}
	return 0
}

// Refused returns how many packets arrived in a state their opcode does not
// allow.
func (reg *Registry) Refused() uint64 { return reg.refused }

// safeCall runs a handler and turns a panic into an error so one bad packet
// cannot stop the game loop.
func (reg *Registry) safeCall(fn HandlerFunc, sess any, r *Reader, opcode byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("handler panic recovered",
				zap.String("op", OpcodeName(opcode)),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for opcode %s: %v", OpcodeName(opcode), rec)
		}
	}()
	fn(sess, r)
	return nil
}
