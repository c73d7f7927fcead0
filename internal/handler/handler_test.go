package handler

import (
	stdnet "net"
	"testing"

	"github.com/creaturesim/server/internal/bridge/hub"
	"github.com/creaturesim/server/internal/config"
	"github.com/creaturesim/server/internal/core/ecs"
	"github.com/creaturesim/server/internal/core/event"
	"github.com/creaturesim/server/internal/net"
	"github.com/creaturesim/server/internal/net/packet"
	"go.uber.org/zap"
)

type fixture struct {
	deps *Deps
	reg  *packet.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.Network.SharedSecret = "open sesame"
	cfg.Network.MaxPlayers = 2
	store := net.NewSessionStore()
	deps := &Deps{
		Config: cfg,
		Log:    zap.NewNop(),
		Bus:    event.NewBus(),
		Store:  store,
		Host:   net.NewHost(store),
		Hub:    hub.New(hub.Options{Lanes: 1, SampleRate: 8000, Screens: []string{"hud"}}, zap.NewNop()),
	}
	reg := packet.NewRegistry(zap.NewNop())
	RegisterAll(reg, deps)
	return &fixture{deps: deps, reg: reg}
}

var nextID uint64

func (f *fixture) session(t *testing.T) *net.Session {
	t.Helper()
	a, b := stdnet.Pipe()
	t.Cleanup(func() { a.Close(); b.Close() })
	nextID++
	s := net.NewSession(a, nextID, 8, 8, 0, zap.NewNop())
	f.deps.Store.Add(s)
	return s
}

func approval(version uint16, secret, name string) []byte {
	w := packet.NewWriterWithOpcode(packet.C_OPCODE_APPROVAL)
	w.WriteH(version)
	w.WriteS(secret)
	w.WriteS(name)
	return w.Bytes()
}

func sent(s *net.Session) []*packet.Reader {
	s.FlushOutput()
	var out []*packet.Reader
	for {
		select {
		case data := <-s.OutQueue:
			out = append(out, packet.NewReader(data))
		default:
			return out
		}
	}
}

func (f *fixture) dispatch(t *testing.T, s *net.Session, data []byte) {
	t.Helper()
	if err := f.reg.Dispatch(s, s.State(), data); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
}

func TestApprovalAccepts(t *testing.T) {
	f := newFixture(t)
	var connected []event.Connected
	event.Subscribe(f.deps.Bus, func(c event.Connected) { connected = append(connected, c) })

	s := f.session(t)
	f.dispatch(t, s, approval(packet.ProtocolVersion, "open sesame", "  ada  "))

	if s.State() != packet.StateApproved || s.Name != "ada" {
		t.Fatalf("state %s name %q", s.State(), s.Name)
	}
	out := sent(s)
	if len(out) != 1 || out[0].Opcode() != packet.S_OPCODE_APPROVED {
		t.Fatalf("sent %d packets", len(out))
	}
	if owner := out[0].ReadQ(); owner != s.ID {
		t.Fatalf("owner = %d, want %d", owner, s.ID)
	}

	f.deps.Bus.SwapBuffers()
	f.deps.Bus.DispatchAll()
	if len(connected) != 1 || connected[0].SessionID != s.ID {
		t.Fatalf("connected events = %+v", connected)
	}
}

func TestApprovalRejects(t *testing.T) {
	tests := []struct {
		name    string
		version uint16
		secret  string
		fill    int
		cut     int // bytes dropped from the end of the packet
		reason  string
	}{
		{name: "bad secret", version: packet.ProtocolVersion, secret: "guess", reason: net.ErrBadApproval.Error()},
		{name: "old protocol", version: packet.ProtocolVersion + 1, secret: "open sesame", reason: net.ErrBadApproval.Error()},
		{name: "server full", version: packet.ProtocolVersion, secret: "open sesame", fill: 2, reason: net.ErrServerFull.Error()},
		{name: "truncated", version: packet.ProtocolVersion, secret: "open sesame", cut: 1, reason: net.ErrBadApproval.Error()},
	}
	for _, tt := range tests {
		f := newFixture(t)
		for i := 0; i < tt.fill; i++ {
			f.session(t).SetState(packet.StateApproved)
		}
		var rejected []event.Approval
		event.Subscribe(f.deps.Bus, func(a event.Approval) { rejected = append(rejected, a) })

		s := f.session(t)
		pkt := approval(tt.version, tt.secret, "eve")
		f.dispatch(t, s, pkt[:len(pkt)-tt.cut])

		if s.State() != packet.StateDisconnecting {
			t.Fatalf("%s: state %s", tt.name, s.State())
		}
		out := sent(s)
		if len(out) != 1 || out[0].Opcode() != packet.S_OPCODE_DISCONNECT {
			t.Fatalf("%s: sent %d packets", tt.name, len(out))
		}
		if reason := out[0].ReadS(); reason != tt.reason {
			t.Fatalf("%s: reason %q, want %q", tt.name, reason, tt.reason)
		}
		f.deps.Bus.SwapBuffers()
		f.deps.Bus.DispatchAll()
		if len(rejected) != 1 || rejected[0].Accepted {
			t.Fatalf("%s: approval events %+v", tt.name, rejected)
		}
	}
}

func TestChatBeforeApprovalIsRefused(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	w := packet.NewWriterWithOpcode(packet.C_OPCODE_CHAT)
	w.WriteS("hi")
	if err := f.reg.Dispatch(s, s.State(), w.Bytes()); err == nil {
		t.Fatal("chat dispatched in handshake state")
	}
}

func TestChatRouting(t *testing.T) {
	f := newFixture(t)
	speaker := f.session(t)
	speaker.SetState(packet.StateApproved)
	speaker.Name = "ada"
	listener := f.session(t)
	listener.SetState(packet.StateApproved)

	chat := func(text string) []byte {
		w := packet.NewWriterWithOpcode(packet.C_OPCODE_CHAT)
		w.WriteS(text)
		return w.Bytes()
	}

	// No player entity yet: broadcast straight through the host.
	f.dispatch(t, speaker, chat("  hello  "))
	out := sent(listener)
	if len(out) != 1 || out[0].Opcode() != packet.S_OPCODE_CHAT {
		t.Fatalf("listener got %d packets", len(out))
	}
	if from, text := out[0].ReadS(), out[0].ReadS(); from != "ada" || text != "hello" {
		t.Fatalf("chat = %q %q", from, text)
	}

	// With a player entity the line goes through the network bridge.
	f.deps.Players = func(owner uint64) (ecs.EntityID, bool) { return ecs.EntityID(owner + 100), owner == speaker.ID }
	f.dispatch(t, speaker, chat("again"))
	if n := f.deps.Hub.Network.Pending(); n != 1 {
		t.Fatalf("network bridge pending = %d, want 1", n)
	}
	if out := sent(listener); len(out) != 0 {
		t.Fatalf("bridged chat also sent directly: %d packets", len(out))
	}

	f.dispatch(t, speaker, chat("   "))
	if n := f.deps.Hub.Network.Pending(); n != 1 {
		t.Fatal("blank chat was forwarded")
	}
}

func TestInputSubmitsFrame(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	s.SetState(packet.StateApproved)

	w := packet.NewWriterWithOpcode(packet.C_OPCODE_INPUT)
	w.WriteDU(12)
	w.WriteH(uint16(net.EncodeAxis(1)))
	w.WriteH(uint16(net.EncodeAxis(-0.5)))
	w.WriteC(packet.ButtonJump)
	f.dispatch(t, s, w.Bytes())

	m := f.deps.Hub.Input.Manager()
	m.Update(0)
	fr := m.Snapshot().Frame(s.ID)
	if fr.Tick != 12 || !fr.Jump || fr.Ability {
		t.Fatalf("frame = %+v", fr)
	}
	if fr.Move.X < 0.8 || fr.Move.Y > -0.4 {
		t.Fatalf("move = %+v", fr.Move)
	}
}

func TestQuitClosesSession(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	f.dispatch(t, s, []byte{packet.C_OPCODE_QUIT})
	if !s.IsClosed() {
		t.Fatal("session still open")
	}
}

func TestTruncatedInputIsDropped(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	s.SetState(packet.StateApproved)

	w := packet.NewWriterWithOpcode(packet.C_OPCODE_INPUT)
	w.WriteDU(3)
	w.WriteH(uint16(net.EncodeAxis(1)))
	f.dispatch(t, s, w.Bytes())

	m := f.deps.Hub.Input.Manager()
	m.Update(0)
	if fr := m.Snapshot().Frame(s.ID); fr.Tick != 0 {
		t.Fatalf("truncated frame accepted: %+v", fr)
	}
}
