package handler

import (
	"github.com/creaturesim/server/internal/bridge/input"
	"github.com/creaturesim/server/internal/core/vec"
	"github.com/creaturesim/server/internal/net"
	"github.com/creaturesim/server/internal/net/packet"
)

// HandleInput processes C_OPCODE_INPUT and hands the frame to the input
// service, which keeps the newest frame per owner. Truncated frames are
// dropped.
func HandleInput(sess *net.Session, r *packet.Reader, deps *Deps) {
	tick := uint32(r.ReadD())
	x := net.DecodeAxis(int16(r.ReadH()))
	y := net.DecodeAxis(int16(r.ReadH()))
	buttons := r.ReadC()
	if r.Short() {
		return
	}

	deps.Hub.Input.Manager().Submit(sess.ID, input.Frame{
		Tick:    tick,
		Move:    vec.V2(x, y),
		Jump:    buttons&packet.ButtonJump != 0,
		Ability: buttons&packet.ButtonAbility != 0,
	})
}
