package system

import (
	"context"
	"time"

	"github.com/creaturesim/server/internal/core/event"
	coresys "github.com/creaturesim/server/internal/core/system"
	"github.com/creaturesim/server/internal/persist"
	"go.uber.org/zap"
)

// JournalSystem writes the commands the bridges applied this tick.
// Phase 7 (Persist).
type JournalSystem struct {
	journal *persist.CommandJournal
	clock   *coresys.Clock
	log     *zap.Logger
}

func NewJournalSystem(j *persist.CommandJournal, clock *coresys.Clock, log *zap.Logger) *JournalSystem {
	return &JournalSystem{journal: j, clock: clock, log: log}
}

func (s *JournalSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *JournalSystem) Update(_ time.Duration) {
	if err := s.journal.Flush(s.clock.Tick()); err != nil {
		s.log.Error("journal write failed", zap.Error(err))
	}
}

// ChatLogSystem collects chat lines and session audit rows from the bus and
// saves them in batches every interval ticks. Phase 7 (Persist).
type ChatLogSystem struct {
	store    persist.ChatLog
	clock    *coresys.Clock
	interval uint64
	chat     []persist.ChatRow
	audit    []persist.AuditRow
	now      func() time.Time
	log      *zap.Logger
}

func NewChatLogSystem(store persist.ChatLog, bus *event.Bus, clock *coresys.Clock, interval int, log *zap.Logger) *ChatLogSystem {
	s := &ChatLogSystem{
		store:    store,
		clock:    clock,
		interval: uint64(max(1, interval)),
		now:      time.Now,
		log:      log,
	}
	event.Subscribe(bus, func(e event.ChatReceived) {
		s.chat = append(s.chat, persist.ChatRow{
			Tick:      s.clock.Tick(),
			SessionID: e.SessionID,
			Sender:    e.From,
			Body:      e.Text,
			At:        s.now(),
		})
	})
	event.Subscribe(bus, func(e event.Approval) {
		row := persist.AuditRow{SessionID: e.SessionID, Name: e.Name, Kind: persist.AuditApproved, At: s.now()}
		if !e.Accepted {
			row.Kind, row.Reason = persist.AuditRejected, e.Reason
		}
		s.audit = append(s.audit, row)
	})
	event.Subscribe(bus, func(e event.Disconnected) {
		s.audit = append(s.audit, persist.AuditRow{
			SessionID: e.SessionID,
			Name:      e.Name,
			Kind:      persist.AuditDisconnected,
			Reason:    e.Reason,
			At:        s.now(),
		})
	})
	return s
}

func (s *ChatLogSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *ChatLogSystem) Update(_ time.Duration) {
	if s.clock.Tick()%s.interval != 0 {
		return
	}
	s.Flush()
}

// Flush saves everything collected so far. Rows that fail to save are
// dropped after logging.
func (s *ChatLogSystem) Flush() {
	if len(s.chat) == 0 && len(s.audit) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.store.SaveChat(ctx, s.chat); err != nil {
		s.log.Error("chat log save failed", zap.Int("rows", len(s.chat)), zap.Error(err))
	}
	if err := s.store.SaveAudit(ctx, s.audit); err != nil {
		s.log.Error("session audit save failed", zap.Int("rows", len(s.audit)), zap.Error(err))
	}
	s.chat = s.chat[:0]
	s.audit = s.audit[:0]
}
