package system

import (
	"context"
	gonet "net"
	"testing"
	"time"

	"github.com/creaturesim/server/internal/bridge/hub"
	"github.com/creaturesim/server/internal/core/event"
	coresys "github.com/creaturesim/server/internal/core/system"
	"github.com/creaturesim/server/internal/creature"
	"github.com/creaturesim/server/internal/net"
	"github.com/creaturesim/server/internal/net/packet"
	"github.com/creaturesim/server/internal/persist"
	"go.uber.org/zap"
)

type memChatLog struct {
	chat  [][]persist.ChatRow
	audit [][]persist.AuditRow
}

func (m *memChatLog) SaveChat(_ context.Context, rows []persist.ChatRow) error {
	if len(rows) > 0 {
		m.chat = append(m.chat, append([]persist.ChatRow(nil), rows...))
	}
	return nil
}

func (m *memChatLog) SaveAudit(_ context.Context, rows []persist.AuditRow) error {
	if len(rows) > 0 {
		m.audit = append(m.audit, append([]persist.AuditRow(nil), rows...))
	}
	return nil
}

func (m *memChatLog) RecentChat(context.Context, int) ([]persist.ChatRow, error) { return nil, nil }

func (m *memChatLog) Audit(context.Context, uint64) ([]persist.AuditRow, error) { return nil, nil }

func (m *memChatLog) Close() error { return nil }

func TestChatLogSystemSavesEveryInterval(t *testing.T) {
	bus := event.NewBus()
	clock := coresys.NewClock()
	r := coresys.NewRunner(clock)
	store := &memChatLog{}
	r.Register(NewEventDispatchSystem(bus))
	r.Register(NewChatLogSystem(store, bus, clock, 3, zap.NewNop()))

	event.Emit(bus, event.Approval{SessionID: 1, Name: "ann", Accepted: true})
	event.Emit(bus, event.Approval{SessionID: 2, Name: "bob", Reason: "bad secret"})
	event.Emit(bus, event.ChatReceived{SessionID: 1, From: "ann", Text: "hi"})

	r.Tick(time.Millisecond)
	r.Tick(time.Millisecond)
	if len(store.chat) != 0 || len(store.audit) != 0 {
		t.Fatalf("saved before the interval: %d chat %d audit batches", len(store.chat), len(store.audit))
	}

	event.Emit(bus, event.Disconnected{SessionID: 1, Name: "ann", Reason: "closed"})
	r.Tick(time.Millisecond)
	if len(store.chat) != 1 || len(store.audit) != 1 {
		t.Fatalf("batches = %d chat %d audit, want 1 1", len(store.chat), len(store.audit))
	}
	if row := store.chat[0][0]; row.Body != "hi" || row.Sender != "ann" || row.Tick != 1 {
		t.Fatalf("chat row = %+v", row)
	}
	audit := store.audit[0]
	if len(audit) != 3 {
		t.Fatalf("audit rows = %d, want 3", len(audit))
	}
	if audit[0].Kind != persist.AuditApproved || audit[1].Kind != persist.AuditRejected || audit[2].Kind != persist.AuditDisconnected {
		t.Fatalf("audit kinds = %s %s %s", audit[0].Kind, audit[1].Kind, audit[2].Kind)
	}
	if audit[1].Reason != "bad secret" {
		t.Fatalf("rejection reason = %q", audit[1].Reason)
	}

	for i := 0; i < 3; i++ {
		r.Tick(time.Millisecond)
	}
	if len(store.chat) != 1 || len(store.audit) != 1 {
		t.Fatal("empty interval produced a save")
	}
}

type countingFeed struct {
	clients int
	frames  []any
}

func (f *countingFeed) Clients() int { return f.clients }

func (f *countingFeed) Broadcast(v any) error {
	f.frames = append(f.frames, v)
	return nil
}

func TestObserverSystemRespectsCadenceAndClients(t *testing.T) {
	w := creature.NewWorld(1)
	h := hub.New(hub.Options{Lanes: 1, SampleRate: 8000}, zap.NewNop())
	clock := coresys.NewClock()
	r := coresys.NewRunner(clock)
	feed := &countingFeed{}
	r.Register(NewObserverSystem(w, h, feed, clock, 2, zap.NewNop()))

	r.Tick(time.Millisecond)
	r.Tick(time.Millisecond)
	if len(feed.frames) != 0 {
		t.Fatalf("broadcast with no clients: %d frames", len(feed.frames))
	}

	feed.clients = 1
	for i := 0; i < 4; i++ {
		r.Tick(time.Millisecond)
	}
	if len(feed.frames) != 2 {
		t.Fatalf("frames = %d, want 2 (every second tick)", len(feed.frames))
	}
}

func TestInputSystemTimesOutHandshake(t *testing.T) {
	srv, err := net.NewServer("127.0.0.1:0", 8, 8, 100, zap.NewNop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	go srv.AcceptLoop()
	defer srv.Shutdown()

	conn, err := gonet.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	bus := event.NewBus()
	var approvals []event.Approval
	event.Subscribe(bus, func(e event.Approval) { approvals = append(approvals, e) })

	store := net.NewSessionStore()
	sys := NewInputSystem(srv, packet.NewRegistry(zap.NewNop()), store, bus, 8, time.Second, zap.NewNop())

	deadline := time.Now().Add(2 * time.Second)
	for store.Len() == 0 && time.Now().Before(deadline) {
		sys.Update(0)
		time.Sleep(5 * time.Millisecond)
	}
	if store.Len() != 1 {
		t.Fatalf("sessions = %d, want 1", store.Len())
	}
	sess := store.Get(store.IDs()[0])

	sys.Update(0)
	bus.SwapBuffers()
	bus.DispatchAll()
	if len(approvals) != 0 {
		t.Fatalf("timed out too early: %+v", approvals)
	}

	sys.now = func() time.Time { return time.Now().Add(time.Minute) }
	sys.Update(0)
	sys.Update(0)
	bus.SwapBuffers()
	bus.DispatchAll()
	if len(approvals) != 1 || approvals[0].Accepted || approvals[0].Reason != net.ErrTimeout.Error() {
		t.Fatalf("approvals = %+v, want one timeout", approvals)
	}

	select {
	case <-sess.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out session not closed")
	}
}
