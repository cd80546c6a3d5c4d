package core

import (
	"time"
)

// SessionStatus is the coarse lifecycle state of a scheduling session.
// Fine-grained stage tracking is owned by the downstream engine.
type SessionStatus string

const (
	StatusInitialized SessionStatus = "initialized"
	StatusStarted     SessionStatus = "started"
)

// Session represents the single active scheduling conversation between
// a recruiter and a candidate
type Session struct {
	ID             string
	RecruiterEmail string
	CandidateEmail string
	Status         SessionStatus
	History        []Event
}

// EventKind identifies the variant of a history event
type EventKind string

const (
	EventEmailReceived EventKind = "email_received"
	EventEmailSent     EventKind = "email_sent"
	EventCreated       EventKind = "event_created"
)

// Event is one entry in a session's append-only history. Which fields are
// populated depends on Kind; At is assigned at append time and events are
// immutable once appended.
type Event struct {
	Kind           EventKind
	From           string
	To             string
	Subject        string
	Body           string
	EventID        string
	RecruiterEmail string
	CandidateEmail string
	At             time.Time
}

// InboundMessage is an unread mailbox message as surfaced by the inbox
// gateway. ID is the provider-issued identifier used for deduplication and
// mark-read; the provider never reuses it for a different message.
type InboundMessage struct {
	ID      string
	From    string
	Subject string
	Body    string
}

// BusyWindow is a half-open occupied interval reported by a calendar
type BusyWindow struct {
	Start time.Time
	End   time.Time
}

// Slot is a half-open bookable window of fixed duration
type Slot struct {
	StartTime time.Time
	EndTime   time.Time
}

// Overlaps reports whether the slot intersects the half-open interval
// [start, end)
func (s Slot) Overlaps(start, end time.Time) bool {
	return s.StartTime.Before(end) && s.EndTime.After(start)
}

// EventRequest describes a calendar event to be created for a confirmed slot
type EventRequest struct {
	Summary        string
	Location       string
	StartTime      time.Time
	EndTime        time.Time
	RecruiterEmail string
	CandidateEmail string
}
