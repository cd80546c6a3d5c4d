package history

import (
	"context"

	"github.com/mikey/interview-scheduler/internal/core"
)

// NoopArchive discards every event. Used when archiving is disabled.
type NoopArchive struct{}

// NewNoopArchive creates a new no-op archive
func NewNoopArchive() *NoopArchive {
	return &NoopArchive{}
}

// Record discards the event
func (a *NoopArchive) Record(ctx context.Context, sessionID string, event core.Event) error {
	return nil
}

// Stop is a no-op
func (a *NoopArchive) Stop() {}
