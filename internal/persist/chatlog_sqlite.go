package persist

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteChatLog stores the chat log in a single SQLite file. Times are kept
// as unix milliseconds.
type SQLiteChatLog struct {
	db *sql.DB
}

// OpenSQLiteChatLog opens (creating if needed) the database at path and
// applies pending migrations.
func OpenSQLiteChatLog(ctx context.Context, path string) (*SQLiteChatLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{`PRAGMA journal_mode=WAL`, `PRAGMA busy_timeout=5000`} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite %s: %w", pragma, err)
		}
	}
	if err := runSQLiteMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteChatLog{db: db}, nil
}

func (r *SQLiteChatLog) SaveChat(ctx context.Context, rows []ChatRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("chat begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chat_log (tick, session_id, sender, body, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, c := range rows {
		if _, err := stmt.ExecContext(ctx, int64(c.Tick), int64(c.SessionID), c.Sender, c.Body, c.At.UnixMilli()); err != nil {
			return fmt.Errorf("chat insert: %w", err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteChatLog) SaveAudit(ctx context.Context, rows []AuditRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("audit begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO session_audit (session_id, name, kind, reason, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, a := range rows {
		if _, err := stmt.ExecContext(ctx, int64(a.SessionID), a.Name, a.Kind, a.Reason, a.At.UnixMilli()); err != nil {
			return fmt.Errorf("audit insert: %w", err)
		}
	}
	return tx.Commit()
}

// RecentChat returns up to limit lines, oldest first.
func (r *SQLiteChatLog) RecentChat(ctx context.Context, limit int) ([]ChatRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tick, session_id, sender, body, created_at FROM (
		     SELECT id, tick, session_id, sender, body, created_at
		     FROM chat_log ORDER BY id DESC LIMIT ?
		 ) ORDER BY id`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChatRow
	for rows.Next() {
		var c ChatRow
		var tick, sid, ms int64
		if err := rows.Scan(&tick, &sid, &c.Sender, &c.Body, &ms); err != nil {
			return nil, err
		}
		c.Tick, c.SessionID, c.At = uint64(tick), uint64(sid), time.UnixMilli(ms)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteChatLog) Audit(ctx context.Context, sessionID uint64) ([]AuditRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT session_id, name, kind, reason, created_at
		 FROM session_audit WHERE session_id = ? ORDER BY id`, int64(sessionID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AuditRow
	for rows.Next() {
		var a AuditRow
		var sid, ms int64
		if err := rows.Scan(&sid, &a.Name, &a.Kind, &a.Reason, &ms); err != nil {
			return nil, err
		}
		a.SessionID, a.At = uint64(sid), time.UnixMilli(ms)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteChatLog) Close() error {
	return r.db.Close()
}
