package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/valdiviamed/snotcap/internal/services"
)

const auditSchema = `
CREATE TABLE IF NOT EXISTS audit_log (
	id     TEXT PRIMARY KEY,
	time   TEXT NOT NULL,
	actor  TEXT NOT NULL,
	action TEXT NOT NULL,
	target TEXT NOT NULL,
	note   TEXT NOT NULL DEFAULT ''
);`

// AuditStore keeps the submission audit trail in a local SQLite database.
// Writes are best effort: failures are logged, never returned to the
// submission path.
type AuditStore struct {
	db  *sql.DB
	log zerolog.Logger
}

func OpenAuditStore(path string, log zerolog.Logger) (*AuditStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	if _, err := db.Exec(auditSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create audit schema: %w", err)
	}
	return &AuditStore{db: db, log: log}, nil
}

func (s *AuditStore) Close() error { return s.db.Close() }

// AddAudit appends one entry. Implements services.AuditStore.
func (s *AuditStore) AddAudit(e services.AuditEntry) {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	_, err := s.db.Exec(
		`INSERT INTO audit_log (id, time, actor, action, target, note) VALUES (?, ?, ?, ?, ?, ?)`,
		id, e.Time.Format(time.RFC3339), e.Actor, e.Action, e.Target, e.Note,
	)
	if err != nil {
		s.log.Warn().Err(err).Str("action", e.Action).Msg("audit insert failed")
	}
}

// ListAudit returns up to limit entries, newest first.
func (s *AuditStore) ListAudit(limit int) ([]services.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT time, actor, action, target, note FROM audit_log ORDER BY time DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []services.AuditEntry
	for rows.Next() {
		var e services.AuditEntry
		var ts string
		if err := rows.Scan(&ts, &e.Actor, &e.Action, &e.Target, &e.Note); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			e.Time = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
