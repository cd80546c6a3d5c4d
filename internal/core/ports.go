package core

import (
	"context"
	"time"
)

// InboxGateway defines the mailbox operations consumed by the polling loop.
// The provider's own read/unread flag is the deduplication ledger: a message
// stays in ListUnread results until MarkRead succeeds for it.
type InboxGateway interface {
	// ListUnread returns up to max unread messages, optionally restricted to
	// a sender address
	ListUnread(ctx context.Context, fromFilter string, max int64) ([]InboundMessage, error)

	// MarkRead clears the unread flag for a message
	MarkRead(ctx context.Context, messageID string) error
}

// ForwardResult classifies the downstream engine's response to a message
type ForwardResult int

const (
	ForwardAccepted ForwardResult = iota
	ForwardRejected
	ForwardUnreachable
)

func (r ForwardResult) String() string {
	switch r {
	case ForwardAccepted:
		return "accepted"
	case ForwardRejected:
		return "rejected"
	default:
		return "unreachable"
	}
}

// EngineNotifier forwards normalized inbound mail to the downstream
// reasoning engine. A timeout counts as unreachable, not rejected.
type EngineNotifier interface {
	// Forward hands one inbound message to the engine under a session id
	Forward(ctx context.Context, msg InboundMessage, sessionID string) ForwardResult

	// Kickoff tells the engine a session has started so it can send the
	// initial outreach email
	Kickoff(ctx context.Context, recruiterEmail, candidateEmail string) error
}

// MailSender delivers outbound mail
type MailSender interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// CalendarClient defines the calendar operations consumed by the slot
// surface: a free/busy query and event creation
type CalendarClient interface {
	// BusyWindows returns the occupied intervals for a calendar within
	// [from, to)
	BusyWindows(ctx context.Context, calendarID string, from, to time.Time) ([]BusyWindow, error)

	// CreateEvent creates an event and returns its provider id
	CreateEvent(ctx context.Context, calendarID string, req EventRequest) (string, error)
}

// HistoryArchive is a best-effort audit sink for session events. Archived
// events are never read back into session state; the in-memory store remains
// authoritative for the process lifetime.
type HistoryArchive interface {
	// Record appends one event for a session
	Record(ctx context.Context, sessionID string, event Event) error

	// Stop releases any resources held by the archive
	Stop()
}
