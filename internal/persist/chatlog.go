package persist

import (
	"context"
	"time"
)

// ChatRow is one chat line accepted from a session.
type ChatRow struct {
	Tick      uint64
	SessionID uint64
	Sender    string
	Body      string
	At        time.Time
}

// Session audit kinds.
const (
	AuditApproved     = "approved"
	AuditRejected     = "rejected"
	AuditDisconnected = "disconnected"
)

// AuditRow records one connection lifecycle step.
type AuditRow struct {
	SessionID uint64
	Name      string
	Kind      string
	Reason    string
	At        time.Time
}

// ChatLog persists chat lines and the session audit trail. Both write
// methods take a whole tick's batch and commit it in one transaction.
type ChatLog interface {
	SaveChat(ctx context.Context, rows []ChatRow) error
	SaveAudit(ctx context.Context, rows []AuditRow) error
	RecentChat(ctx context.Context, limit int) ([]ChatRow, error)
	Audit(ctx context.Context, sessionID uint64) ([]AuditRow, error)
	Close() error
}
