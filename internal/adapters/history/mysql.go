package history

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/interview-scheduler/internal/core"
	"go.uber.org/zap"
)

// MySQLArchive is a MySQL implementation of the HistoryArchive interface
type MySQLArchive struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLArchive creates a new MySQL archive
func NewMySQLArchive(dsn string, logger *zap.Logger) (*MySQLArchive, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS session_events (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			session_id VARCHAR(64) NOT NULL,
			kind VARCHAR(32) NOT NULL,
			from_addr VARCHAR(255),
			to_addr VARCHAR(255),
			subject TEXT,
			body MEDIUMTEXT,
			event_id VARCHAR(255),
			recruiter_email VARCHAR(255),
			candidate_email VARCHAR(255),
			at TIMESTAMP NULL,
			INDEX idx_session_id (session_id)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLArchive{
		db:     db,
		logger: logger,
	}, nil
}

// Record appends one event for a session
func (a *MySQLArchive) Record(ctx context.Context, sessionID string, event core.Event) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO session_events (session_id, kind, from_addr, to_addr, subject, body, event_id, recruiter_email, candidate_email, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sessionID, string(event.Kind), event.From, event.To, event.Subject, event.Body,
		event.EventID, event.RecruiterEmail, event.CandidateEmail, event.At)

	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// Stop closes the database connection
func (a *MySQLArchive) Stop() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}
