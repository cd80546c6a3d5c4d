package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// SchedulerService is the core coordinator invoked by the request layer. It
// ties the session store and the poller to the external collaborators and
// owns the rule that collaborator failures during a request are logged, not
// surfaced, once the session mutation itself has succeeded.
type SchedulerService struct {
	store    *SessionStore
	poller   *Poller
	engine   EngineNotifier
	mail     MailSender
	calendar CalendarClient
	logger   *zap.Logger

	defaultSender     string
	defaultCalendarID string
	defaultInterval   time.Duration
	callTimeout       time.Duration
}

// NewSchedulerService creates the coordinator
func NewSchedulerService(
	store *SessionStore,
	poller *Poller,
	engine EngineNotifier,
	mail MailSender,
	calendar CalendarClient,
	logger *zap.Logger,
	defaultSender string,
	defaultCalendarID string,
	defaultInterval time.Duration,
	callTimeout time.Duration,
) *SchedulerService {
	if defaultInterval <= 0 {
		defaultInterval = 30 * time.Second
	}
	if callTimeout <= 0 {
		callTimeout = 5 * time.Second
	}
	return &SchedulerService{
		store:             store,
		poller:            poller,
		engine:            engine,
		mail:              mail,
		calendar:          calendar,
		logger:            logger,
		defaultSender:     defaultSender,
		defaultCalendarID: defaultCalendarID,
		defaultInterval:   defaultInterval,
		callTimeout:       callTimeout,
	}
}

// StartSession activates a session and asks the engine to kick off the
// conversation. A kickoff failure is logged only; the session is started
// either way and the engine can be re-kicked by restarting.
func (s *SchedulerService) StartSession(ctx context.Context, candidateEmail, recruiterEmail string) (Session, error) {
	session, err := s.store.Start(candidateEmail, recruiterEmail)
	if err != nil {
		return Session{}, err
	}

	kickCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	if err := s.engine.Kickoff(kickCtx, session.RecruiterEmail, session.CandidateEmail); err != nil {
		s.logger.Warn("Engine kickoff failed, session started anyway",
			zap.String("session_id", session.ID),
			zap.Error(err))
	}

	return session, nil
}

// ResetSession stops the polling loop and replaces the session with a fresh
// initialized one
func (s *SchedulerService) ResetSession() Session {
	s.poller.Stop()
	return s.store.Reset()
}

// Status returns a copy of the active session and whether the poller is
// running. ok is false when no session exists yet.
func (s *SchedulerService) Status() (session Session, polling bool, ok bool) {
	session, ok = s.store.Snapshot()
	return session, s.poller.IsRunning(), ok
}

// StartWatcher starts (or restarts) the inbox polling loop. A zero interval
// falls back to the configured default; filter optionally narrows the watch
// to one sender address.
func (s *SchedulerService) StartWatcher(interval time.Duration, filter string) {
	if interval <= 0 {
		interval = s.defaultInterval
	}
	s.poller.SetSenderFilter(filter)
	s.poller.Start(interval)
}

// StopWatcher halts the polling loop
func (s *SchedulerService) StopWatcher() {
	s.poller.Stop()
}

// AvailableSlots computes the bookable windows for a calendar. Busy windows
// come from the calendar's free/busy query; if that query fails the
// computation degrades to an unconstrained business-hours grid with a
// warning, per the transient-failure policy. Window validation errors are
// returned to the caller.
func (s *SchedulerService) AvailableSlots(ctx context.Context, calendarID string, from, to time.Time, duration time.Duration) ([]Slot, error) {
	if calendarID == "" {
		calendarID = s.defaultCalendarID
	}
	if !to.After(from) {
		return nil, ErrInvalidWindow
	}

	var busy []BusyWindow
	busyCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	busy, err := s.calendar.BusyWindows(busyCtx, calendarID, from, to)
	if err != nil {
		s.logger.Warn("Free/busy query failed, computing slots without busy windows",
			zap.String("calendar_id", calendarID),
			zap.Error(err))
		busy = nil
	}

	return ComputeSlots(from, to, duration, busy)
}

// SendMail delivers an outbound message from the session's recruiter address
// and records it in the history
func (s *SchedulerService) SendMail(ctx context.Context, to, subject, body string) error {
	from := s.defaultSender
	if session, ok := s.store.Snapshot(); ok && session.RecruiterEmail != "" {
		from = session.RecruiterEmail
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	if err := s.mail.Send(sendCtx, from, to, subject, body); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	s.store.AppendEvent(Event{
		Kind:    EventEmailSent,
		To:      to,
		Subject: subject,
		Body:    body,
	})
	return nil
}

// CreateEvent books a calendar event for a confirmed slot and records it in
// the history
func (s *SchedulerService) CreateEvent(ctx context.Context, calendarID string, req EventRequest) (string, error) {
	if calendarID == "" {
		calendarID = s.defaultCalendarID
	}
	if session, ok := s.store.Snapshot(); ok {
		if req.RecruiterEmail == "" {
			req.RecruiterEmail = session.RecruiterEmail
		}
		if req.CandidateEmail == "" {
			req.CandidateEmail = session.CandidateEmail
		}
	}

	createCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	eventID, err := s.calendar.CreateEvent(createCtx, calendarID, req)
	if err != nil {
		return "", fmt.Errorf("failed to create calendar event: %w", err)
	}

	s.store.AppendEvent(Event{
		Kind:           EventCreated,
		EventID:        eventID,
		RecruiterEmail: req.RecruiterEmail,
		CandidateEmail: req.CandidateEmail,
	})
	return eventID, nil
}

// IngestDirect feeds one inbound message through the same append-and-forward
// path the poller uses. It backs the simulated-inbound request endpoint, so
// there is no mailbox message to mark read.
func (s *SchedulerService) IngestDirect(ctx context.Context, msg InboundMessage) ForwardResult {
	s.store.AppendEvent(Event{
		Kind:    EventEmailReceived,
		From:    msg.From,
		Subject: msg.Subject,
		Body:    msg.Body,
	})

	fwdCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	result := s.engine.Forward(fwdCtx, msg, s.store.SessionID())
	if result != ForwardAccepted {
		s.logger.Warn("Engine did not accept injected message",
			zap.String("result", result.String()))
	}
	return result
}
