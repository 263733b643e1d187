package audit

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// MemoryDSN keeps the journal in a shared in-memory database that lives as
// long as the process.
const MemoryDSN = "file:legalyze-audit?mode=memory&cache=shared"

// Auditor journals every analysis operation the backend performs. Only the
// operation name and input size are stored, never document text.
type Auditor struct {
	db     *sql.DB
	logger *zap.Logger
}

type AuditEntry struct {
	ID         int64     `json:"id"`
	Operation  string    `json:"operation"`
	InputBytes int       `json:"input_bytes"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewAuditor(dsn string, logger *zap.Logger) (*Auditor, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	// A shared in-memory database disappears when its last connection closes.
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		operation TEXT NOT NULL,
		input_bytes INTEGER NOT NULL,
		error TEXT,
		duration_ms INTEGER NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create audit table: %w", err)
	}
	return &Auditor{db: db, logger: logger}, nil
}

// Log records one operation. Failures to write are logged and swallowed.
func (a *Auditor) Log(operation string, inputBytes int, took time.Duration, err error) {
	if a == nil || a.db == nil {
		return
	}
	var errStr string
	if err != nil {
		errStr = err.Error()
	}
	_, dbErr := a.db.Exec(
		"INSERT INTO audit_log (operation, input_bytes, error, duration_ms) VALUES (?, ?, ?, ?)",
		operation, inputBytes, errStr, took.Milliseconds(),
	)
	if dbErr != nil {
		a.logger.Warn("failed to write audit log", zap.Error(dbErr))
	}
}

// GetLogs returns the newest entries first.
func (a *Auditor) GetLogs(limit int) ([]AuditEntry, error) {
	if a == nil || a.db == nil {
		return nil, nil
	}
	rows, err := a.db.Query(
		"SELECT id, operation, input_bytes, error, duration_ms, timestamp FROM audit_log ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []AuditEntry{}
	for rows.Next() {
		var e AuditEntry
		var errStr sql.NullString
		if err := rows.Scan(&e.ID, &e.Operation, &e.InputBytes, &errStr, &e.DurationMS, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Error = errStr.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (a *Auditor) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}
