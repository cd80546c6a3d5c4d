package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrMissingCandidate is returned when a session is started without a
// candidate address
var ErrMissingCandidate = errors.New("candidate email is required")

// SessionStore holds the single active scheduling session. It is mutated
// concurrently by the request layer and the polling loop, so every operation
// takes the store lock.
type SessionStore struct {
	mu            sync.RWMutex
	session       *Session
	defaultSender string
	archive       HistoryArchive
	logger        *zap.Logger
}

// NewSessionStore creates a session store. defaultSender is used as the
// recruiter address when a session is started without one. archive may be
// nil; when set, every appended event is also recorded there best-effort.
func NewSessionStore(defaultSender string, archive HistoryArchive, logger *zap.Logger) *SessionStore {
	return &SessionStore{
		defaultSender: defaultSender,
		archive:       archive,
		logger:        logger,
	}
}

// Start activates a session for the given pair of addresses. If a session is
// already active its id and history are preserved, so a re-start does not
// lose the audit trail; otherwise a fresh id and empty history are minted.
func (s *SessionStore) Start(candidateEmail, recruiterEmail string) (Session, error) {
	if candidateEmail == "" {
		return Session{}, ErrMissingCandidate
	}
	if recruiterEmail == "" {
		recruiterEmail = s.defaultSender
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		s.session = &Session{
			ID:      uuid.NewString(),
			History: []Event{},
		}
		s.logger.Info("Starting new session", zap.String("session_id", s.session.ID))
	} else {
		s.logger.Info("Restarting active session",
			zap.String("session_id", s.session.ID),
			zap.Int("history_len", len(s.session.History)))
	}

	s.session.RecruiterEmail = recruiterEmail
	s.session.CandidateEmail = candidateEmail
	s.session.Status = StatusStarted

	return s.snapshotLocked(), nil
}

// Reset discards the active session entirely and installs a fresh
// initialized one with an empty history
func (s *SessionStore) Reset() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = &Session{
		ID:      uuid.NewString(),
		Status:  StatusInitialized,
		History: []Event{},
	}
	s.logger.Info("Session reset", zap.String("session_id", s.session.ID))

	return s.snapshotLocked()
}

// AppendEvent appends to the active session's history, stamping the event
// with the append time. Without an active session this is a warning no-op.
func (s *SessionStore) AppendEvent(event Event) {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		s.logger.Warn("Dropping event, no active session", zap.String("kind", string(event.Kind)))
		return
	}

	event.At = time.Now().UTC()
	s.session.History = append(s.session.History, event)
	sessionID := s.session.ID
	s.mu.Unlock()

	// Archive outside the lock; the in-memory history is authoritative and a
	// failed archive write only loses the audit copy.
	if s.archive != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.archive.Record(ctx, sessionID, event); err != nil {
			s.logger.Error("Failed to archive event",
				zap.String("session_id", sessionID),
				zap.String("kind", string(event.Kind)),
				zap.Error(err))
		}
	}
}

// Snapshot returns a read-only copy of the active session. The second return
// value is false when no session has been started or reset yet.
func (s *SessionStore) Snapshot() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return Session{}, false
	}
	return s.snapshotLocked(), true
}

// CandidateEmail returns the active session's candidate address, or empty
// when no session is active
func (s *SessionStore) CandidateEmail() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return ""
	}
	return s.session.CandidateEmail
}

// SessionID returns the active session's id, or empty when no session is
// active
func (s *SessionStore) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return ""
	}
	return s.session.ID
}

func (s *SessionStore) snapshotLocked() Session {
	copied := *s.session
	copied.History = make([]Event, len(s.session.History))
	copy(copied.History, s.session.History)
	return copied
}
