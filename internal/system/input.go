package system

import (
	"time"

	"github.com/creaturesim/server/internal/core/event"
	coresys "github.com/creaturesim/server/internal/core/system"
	"github.com/creaturesim/server/internal/net"
	"github.com/creaturesim/server/internal/net/packet"
	"go.uber.org/zap"
)

// InputSystem drains packet queues from all sessions and dispatches them
// through the packet registry. Phase 0 (Input).
type InputSystem struct {
	netServer       *net.Server
	registry        *packet.Registry
	store           *net.SessionStore
	bus             *event.Bus
	maxPerTick      int
	approvalTimeout time.Duration
	now             func() time.Time
	log             *zap.Logger
}

func NewInputSystem(
	netServer *net.Server,
	registry *packet.Registry,
	store *net.SessionStore,
	bus *event.Bus,
	maxPerTick int,
	approvalTimeout time.Duration,
	log *zap.Logger,
) *InputSystem {
	return &InputSystem{
		netServer:       netServer,
		registry:        registry,
		store:           store,
		bus:             bus,
		maxPerTick:      maxPerTick,
		approvalTimeout: approvalTimeout,
		now:             time.Now,
		log:             log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	// Accept new sessions
	for {
		select {
		case sess := <-s.netServer.NewSessions():
			s.store.Add(sess)
		default:
			goto doneNew
		}
	}
doneNew:

	// Process dead sessions
	for {
		select {
		case id := <-s.netServer.DeadSessions():
			s.store.Remove(id)
		default:
			goto doneDead
		}
	}
doneDead:

	for _, id := range s.store.IDs() {
		sess := s.store.Get(id)
		if sess.IsClosed() {
			// Packets sent just before the close (C_QUIT) are still handled.
			s.drain(sess)
			sess.FlushOutput()
			s.disconnect(sess)
			s.netServer.NotifyDead(id)
			s.store.Remove(id)
			continue
		}

		if sess.State() == packet.StateHandshake && s.approvalTimeout > 0 &&
			s.now().Sub(sess.Opened) > s.approvalTimeout {
			s.log.Info("approval timed out", zap.Uint64("session", id), zap.String("ip", sess.IP))
			event.Emit(s.bus, event.Approval{SessionID: id, Reason: net.ErrTimeout.Error()})
			sess.Kick(net.ErrTimeout.Error())
			continue
		}

		s.drain(sess)
	}
}

func (s *InputSystem) drain(sess *net.Session) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case data := <-sess.InQueue:
			if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
				s.log.Debug("packet dispatch failed",
					zap.Uint64("session", sess.ID),
					zap.Error(err),
				)
			}
		default:
			return
		}
	}
}

// disconnect reports the loss of an approved session.
func (s *InputSystem) disconnect(sess *net.Session) {
	if sess.Name == "" {
		return
	}
	s.log.Info("session closed", zap.Uint64("session", sess.ID), zap.String("name", sess.Name))
	event.Emit(s.bus, event.Disconnected{SessionID: sess.ID, Name: sess.Name, Reason: "closed"})
}
