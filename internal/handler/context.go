package handler

import (
	"github.com/creaturesim/server/internal/bridge/hub"
	"github.com/creaturesim/server/internal/config"
	"github.com/creaturesim/server/internal/core/ecs"
	"github.com/creaturesim/server/internal/core/event"
	"github.com/creaturesim/server/internal/net"
	"github.com/creaturesim/server/internal/net/packet"
	"go.uber.org/zap"
)

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	Config *config.Config
	Log    *zap.Logger
	Bus    *event.Bus
	Store  *net.SessionStore
	Host   *net.Host
	Hub    *hub.Hub
	// Players resolves a session's player entity; it is absent until the
	// tick after approval.
	Players func(owner uint64) (ecs.EntityID, bool)
}

// RegisterAll registers all packet handlers into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	reg.Register(packet.C_OPCODE_APPROVAL,
		[]packet.SessionState{packet.StateHandshake},
		func(sess any, r *packet.Reader) {
			HandleApproval(sess.(*net.Session), r, deps)
		},
	)

	approved := []packet.SessionState{packet.StateApproved}

	reg.Register(packet.C_OPCODE_CHAT, approved,
		func(sess any, r *packet.Reader) {
			HandleChat(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_INPUT, approved,
		func(sess any, r *packet.Reader) {
			HandleInput(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_QUIT,
		[]packet.SessionState{packet.StateHandshake, packet.StateApproved},
		func(sess any, r *packet.Reader) {
			HandleQuit(sess.(*net.Session), r, deps)
		},
	)
}
