// Package history provides append-only archives of session events. Archives
// are write-only audit sinks: session state itself stays in memory and is
// never rebuilt from an archive.
package history

import (
	"context"
	"sync"

	"github.com/mikey/interview-scheduler/internal/core"
	"go.uber.org/zap"
)

// MemoryArchive is an in-memory implementation of the HistoryArchive
// interface
type MemoryArchive struct {
	mu     sync.RWMutex
	events map[string][]core.Event
	logger *zap.Logger
}

// NewMemoryArchive creates a new in-memory archive
func NewMemoryArchive(logger *zap.Logger) *MemoryArchive {
	return &MemoryArchive{
		events: make(map[string][]core.Event),
		logger: logger,
	}
}

// Record appends one event for a session
func (a *MemoryArchive) Record(ctx context.Context, sessionID string, event core.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.events[sessionID] = append(a.events[sessionID], event)
	return nil
}

// Events returns a copy of the archived events for a session
func (a *MemoryArchive) Events(sessionID string) []core.Event {
	a.mu.RLock()
	defer a.mu.RUnlock()

	events := make([]core.Event, len(a.events[sessionID]))
	copy(events, a.events[sessionID])
	return events
}

// Stop is a no-op for the in-memory archive
func (a *MemoryArchive) Stop() {}
