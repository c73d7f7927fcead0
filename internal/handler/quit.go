package handler

import (
	"github.com/creaturesim/server/internal/net"
	"github.com/creaturesim/server/internal/net/packet"
	"go.uber.org/zap"
)

// HandleQuit processes C_OPCODE_QUIT. Cleanup happens when the input system
// sees the closed session.
func HandleQuit(sess *net.Session, _ *packet.Reader, deps *Deps) {
	deps.Log.Debug("client quit", zap.Uint64("session", sess.ID))
	sess.Close()
}
