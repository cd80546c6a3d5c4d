package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/interview-scheduler/internal/core"
	"go.uber.org/zap"
)

// SQLiteArchive is a SQLite implementation of the HistoryArchive interface
type SQLiteArchive struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteArchive creates a new SQLite archive
func NewSQLiteArchive(dbPath string, logger *zap.Logger) (*SQLiteArchive, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS session_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			from_addr TEXT,
			to_addr TEXT,
			subject TEXT,
			body TEXT,
			event_id TEXT,
			recruiter_email TEXT,
			candidate_email TEXT,
			at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	// Create index on session_id for per-session lookups
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_session_id ON session_events(session_id)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &SQLiteArchive{
		db:     db,
		logger: logger,
	}, nil
}

// Record appends one event for a session
func (a *SQLiteArchive) Record(ctx context.Context, sessionID string, event core.Event) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO session_events (session_id, kind, from_addr, to_addr, subject, body, event_id, recruiter_email, candidate_email, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sessionID, string(event.Kind), event.From, event.To, event.Subject, event.Body,
		event.EventID, event.RecruiterEmail, event.CandidateEmail, event.At.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// Stop closes the database connection
func (a *SQLiteArchive) Stop() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
