package net

import (
	"github.com/creaturesim/server/internal/bridge/network"
	"github.com/creaturesim/server/internal/net/packet"
)

// Host is the server side as the network bridge sees it. Game loop only.
type Host struct {
	store *SessionStore
}

func NewHost(store *SessionStore) *Host {
	return &Host{store: store}
}

func (h *Host) Status() network.Status {
	return network.Status{
		Role:        network.RoleServer,
		State:       network.StateListening,
		Connections: h.store.Approved(),
	}
}

// Chat broadcasts S_OPCODE_CHAT to every approved session.
func (h *Host) Chat(from, text string) error {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_CHAT)
	w.WriteS(from)
	w.WriteS(text)
	data := w.Bytes()
	h.store.ForEach(func(s *Session) {
		if s.State() == packet.StateApproved {
			s.Send(data)
		}
	})
	return nil
}

// Disconnect kicks the session with the given owner ID.
func (h *Host) Disconnect(owner uint64, reason string) error {
	s := h.store.Get(owner)
	if s == nil || s.IsClosed() {
		return ErrNoSession
	}
	s.Kick(reason)
	return nil
}
