package persist

import (
	"context"
	"fmt"
)

// PGChatLog stores the chat log in Postgres.
type PGChatLog struct {
	db *DB
}

func NewPGChatLog(db *DB) *PGChatLog {
	return &PGChatLog{db: db}
}

func (r *PGChatLog) SaveChat(ctx context.Context, rows []ChatRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("chat begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO chat_log (tick, session_id, sender, body, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			int64(c.Tick), int64(c.SessionID), c.Sender, c.Body, c.At,
		); err != nil {
			return fmt.Errorf("chat insert: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (r *PGChatLog) SaveAudit(ctx context.Context, rows []AuditRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("audit begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, a := range rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO session_audit (session_id, name, kind, reason, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			int64(a.SessionID), a.Name, a.Kind, a.Reason, a.At,
		); err != nil {
			return fmt.Errorf("audit insert: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// RecentChat returns up to limit lines, oldest first.
func (r *PGChatLog) RecentChat(ctx context.Context, limit int) ([]ChatRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT tick, session_id, sender, body, created_at FROM (
		     SELECT id, tick, session_id, sender, body, created_at
		     FROM chat_log ORDER BY id DESC LIMIT $1
		 ) recent ORDER BY id`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChatRow
	for rows.Next() {
		var c ChatRow
		var tick, sid int64
		if err := rows.Scan(&tick, &sid, &c.Sender, &c.Body, &c.At); err != nil {
			return nil, err
		}
		c.Tick, c.SessionID = uint64(tick), uint64(sid)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGChatLog) Audit(ctx context.Context, sessionID uint64) ([]AuditRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT session_id, name, kind, reason, created_at
		 FROM session_audit WHERE session_id = $1 ORDER BY id`, int64(sessionID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AuditRow
	for rows.Next() {
		var a AuditRow
		var sid int64
		if err := rows.Scan(&sid, &a.Name, &a.Kind, &a.Reason, &a.At); err != nil {
			return nil, err
		}
		a.SessionID = uint64(sid)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PGChatLog) Close() error {
	r.db.Close()
	return nil
}
