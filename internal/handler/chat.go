package handler

import (
	"strings"

	"github.com/creaturesim/server/internal/bridge/network"
	"github.com/creaturesim/server/internal/core/event"
	"github.com/creaturesim/server/internal/net"
	"github.com/creaturesim/server/internal/net/packet"
	"go.uber.org/zap"
)

// HandleChat processes C_OPCODE_CHAT. The line is broadcast through the
// network bridge on behalf of the sender's player entity, or straight
// through the host while the player has not spawned yet.
func HandleChat(sess *net.Session, r *packet.Reader, deps *Deps) {
	text := strings.TrimSpace(r.ReadS())
	if text == "" {
		return
	}
	if len([]rune(text)) > network.MaxChatLength {
		text = string([]rune(text)[:network.MaxChatLength])
	}

	event.Emit(deps.Bus, event.ChatReceived{SessionID: sess.ID, From: sess.Name, Text: text})

	if deps.Players != nil && deps.Hub != nil {
		if e, ok := deps.Players(sess.ID); ok {
			deps.Hub.Network.SendChatMessage(0, e, text)
			return
		}
	}
	if err := deps.Host.Chat(sess.Name, text); err != nil {
		deps.Log.Warn("chat broadcast failed", zap.Uint64("session", sess.ID), zap.Error(err))
	}
}
