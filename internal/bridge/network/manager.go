package network

import (
	"time"
	"unicode/utf8"

	"github.com/creaturesim/server/internal/core/ecs"
	"go.uber.org/zap"
)

// MaxChatLength bounds chat text in runes.
const MaxChatLength = 256

// Transport is the network layer as the bridge sees it. The server and the
// client in internal/net both implement it.
type Transport interface {
	Status() Status
	Chat(from, text string) error
	Disconnect(owner uint64, reason string) error
}

// Identity resolves an entity to its owning connection and display name.
type Identity func(ecs.EntityID) (owner uint64, name string, ok bool)

// Property is the per-tick network snapshot.
type Property struct {
	Role        Role   `json:"role"`
	State       State  `json:"state"`
	Error       Error  `json:"error"`
	Connections int    `json:"connections"`
	ChatSent    uint64 `json:"chat_sent"`
	ChatFailed  uint64 `json:"chat_failed"`
}

// Manager forwards chat and disconnect requests to a transport and mirrors
// its status. It is ready once a transport is attached.
type Manager struct {
	transport Transport
	identity  Identity
	status    Status
	sent      uint64
	failed    uint64
	log       *zap.Logger
}

func NewManager(log *zap.Logger) *Manager {
	return &Manager{log: log}
}

// Attach installs the transport and the entity resolver.
func (m *Manager) Attach(t Transport, id Identity) {
	m.transport = t
	m.identity = id
	m.status = t.Status()
}

func (m *Manager) Ready() bool { return m.transport != nil }

func (m *Manager) resolve(e ecs.EntityID) (uint64, string) {
	if m.identity != nil {
		if owner, name, ok := m.identity(e); ok {
			return owner, name
		}
	}
	return 0, "server"
}

func (m *Manager) Apply(cmd Command) (struct{}, bool) {
	switch c := cmd.(type) {
	case SendChatMessage:
		text := truncate(c.Text, MaxChatLength)
		if text == "" {
			break
		}
		_, name := m.resolve(c.Source())
		if err := m.transport.Chat(name, text); err != nil {
			m.failed++
			m.log.Warn("chat send failed", zap.String("from", name), zap.Error(err))
			break
		}
		m.sent++
	case Disconnect:
		owner := c.Owner
		if owner == 0 {
			owner, _ = m.resolve(c.Source())
		}
		if err := m.transport.Disconnect(owner, c.Reason); err != nil {
			m.log.Warn("disconnect failed", zap.Uint64("owner", owner), zap.Error(err))
		}
	default:
		m.log.Warn("unhandled network command", zap.String("method", cmd.MethodName()))
	}
	return struct{}{}, false
}

func (m *Manager) Update(time.Duration) {
	m.status = m.transport.Status()
}

func (m *Manager) Snapshot() Property {
	return Property{
		Role:        m.status.Role,
		State:       m.status.State,
		Error:       m.status.Error,
		Connections: m.status.Connections,
		ChatSent:    m.sent,
		ChatFailed:  m.failed,
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
