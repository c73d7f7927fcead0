package handler

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/creaturesim/server/internal/core/event"
	"github.com/creaturesim/server/internal/net"
	"github.com/creaturesim/server/internal/net/packet"
	"go.uber.org/zap"
)

// MaxNameLength bounds player names in runes.
const MaxNameLength = 24

// HandleApproval processes C_OPCODE_APPROVAL. An accepted session gets
// S_OPCODE_APPROVED with its owner ID and moves to StateApproved; a rejected
// one gets S_OPCODE_DISCONNECT and is closed.
func HandleApproval(sess *net.Session, r *packet.Reader, deps *Deps) {
	version := r.ReadH()
	secret := r.ReadS()
	name := cleanName(r.ReadS(), sess.ID)

	err := deps.approve(version, secret)
	if err == nil && r.Short() {
		err = fmt.Errorf("%w: truncated packet", net.ErrBadApproval)
	}
	if err != nil {
		reason := net.ErrBadApproval.Error()
		if errors.Is(err, net.ErrServerFull) {
			reason = net.ErrServerFull.Error()
		}
		deps.Log.Info("approval rejected",
			zap.Uint64("session", sess.ID),
			zap.String("ip", sess.IP),
			zap.String("name", name),
			zap.Error(err),
		)
		event.Emit(deps.Bus, event.Approval{SessionID: sess.ID, Name: name, Reason: reason})
		sess.Kick(reason)
		return
	}

	sess.Name = name
	sess.SetState(packet.StateApproved)

	w := packet.NewWriterWithOpcode(packet.S_OPCODE_APPROVED)
	w.WriteQ(sess.ID)
	w.WriteH(uint16(deps.Store.Approved()))
	w.WriteH(uint16(deps.Config.Network.MaxPlayers))
	sess.Send(w.Bytes())

	deps.Log.Info("approval accepted", zap.Uint64("session", sess.ID), zap.String("name", name))
	event.Emit(deps.Bus, event.Approval{SessionID: sess.ID, Name: name, Accepted: true})
	event.Emit(deps.Bus, event.Connected{SessionID: sess.ID, Name: name})
}

// approve checks protocol version, shared secret and capacity.
func (d *Deps) approve(version uint16, secret string) error {
	if version != packet.ProtocolVersion {
		return fmt.Errorf("%w: protocol %d, want %d", net.ErrBadApproval, version, packet.ProtocolVersion)
	}
	want := d.Config.Network.SharedSecret
	if subtle.ConstantTimeCompare([]byte(secret), []byte(want)) != 1 {
		return fmt.Errorf("%w: secret mismatch", net.ErrBadApproval)
	}
	if limit := d.Config.Network.MaxPlayers; limit > 0 && d.Store.Approved() >= limit {
		return fmt.Errorf("%w: %d/%d players", net.ErrServerFull, d.Store.Approved(), limit)
	}
	return nil
}

func cleanName(name string, id uint64) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Sprintf("player%d", id)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		name = string([]rune(name)[:MaxNameLength])
	}
	return name
}
