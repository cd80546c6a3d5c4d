package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCalendar struct {
	mu      sync.Mutex
	busy    []BusyWindow
	busyErr error
	events  []EventRequest
}

func (f *fakeCalendar) BusyWindows(ctx context.Context, calendarID string, from, to time.Time) ([]BusyWindow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busyErr != nil {
		return nil, f.busyErr
	}
	return f.busy, nil
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, calendarID string, req EventRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, req)
	return "event-123", nil
}

type fakeMail struct {
	mu      sync.Mutex
	sent    []string
	sendErr error
}

func (f *fakeMail) Send(ctx context.Context, from, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, to)
	return nil
}

type kickoffTrackingEngine struct {
	mu           sync.Mutex
	kickoffErr   error
	kickoffCalls int
}

func (f *kickoffTrackingEngine) Forward(ctx context.Context, msg InboundMessage, sessionID string) ForwardResult {
	return ForwardAccepted
}

func (f *kickoffTrackingEngine) Kickoff(ctx context.Context, recruiterEmail, candidateEmail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kickoffCalls++
	return f.kickoffErr
}

func (f *kickoffTrackingEngine) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.kickoffCalls
}

func newTestService(t *testing.T, notifier EngineNotifier, mail MailSender, cal CalendarClient) (*SchedulerService, *SessionStore, *Poller) {
	t.Helper()
	store := newTestStore()
	inbox := newFakeInbox()
	poller := NewPoller(store, inbox, notifier, matchAll{}, zap.NewNop(), 10, time.Second)
	t.Cleanup(poller.Stop)

	service := NewSchedulerService(store, poller, notifier, mail, cal, zap.NewNop(),
		"recruiter@company.com", "primary", 30*time.Second, time.Second)
	return service, store, poller
}

func TestServiceStartSessionKicksOffEngine(t *testing.T) {
	notifier := &kickoffTrackingEngine{}
	service, _, _ := newTestService(t, notifier, &fakeMail{}, &fakeCalendar{})

	session, err := service.StartSession(context.Background(), "candidate@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, StatusStarted, session.Status)
	assert.Equal(t, 1, notifier.calls())
}

func TestServiceStartSessionSucceedsWhenKickoffFails(t *testing.T) {
	notifier := &kickoffTrackingEngine{kickoffErr: errors.New("engine down")}
	service, store, _ := newTestService(t, notifier, &fakeMail{}, &fakeCalendar{})

	session, err := service.StartSession(context.Background(), "candidate@example.com", "")
	require.NoError(t, err, "a kickoff failure is logged, not surfaced")
	assert.Equal(t, StatusStarted, session.Status)

	snapshot, ok := store.Snapshot()
	require.True(t, ok)
	assert.Equal(t, StatusStarted, snapshot.Status)
}

func TestServiceStartSessionValidation(t *testing.T) {
	notifier := &kickoffTrackingEngine{}
	service, _, _ := newTestService(t, notifier, &fakeMail{}, &fakeCalendar{})

	_, err := service.StartSession(context.Background(), "", "")
	require.ErrorIs(t, err, ErrMissingCandidate)
	assert.Zero(t, notifier.calls(), "no kickoff for a rejected start")
}

func TestServiceResetStopsPolling(t *testing.T) {
	service, _, poller := newTestService(t, newFakeEngine(), &fakeMail{}, &fakeCalendar{})

	_, err := service.StartSession(context.Background(), "candidate@example.com", "")
	require.NoError(t, err)
	service.StartWatcher(time.Hour, "")
	require.True(t, poller.IsRunning())

	fresh := service.ResetSession()
	assert.False(t, poller.IsRunning(), "reset implies watcher stop")
	assert.Equal(t, StatusInitialized, fresh.Status)
}

func TestServiceAvailableSlotsAppliesBusyWindows(t *testing.T) {
	cal := &fakeCalendar{busy: []BusyWindow{{
		Start: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC),
	}}}
	service, _, _ := newTestService(t, newFakeEngine(), &fakeMail{}, cal)

	slots, err := service.AvailableSlots(context.Background(), "",
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
		time.Hour)
	require.NoError(t, err)
	require.Len(t, slots, 6, "the busy hour is excluded from the Monday grid")
	for _, slot := range slots {
		assert.False(t, slot.Overlaps(cal.busy[0].Start, cal.busy[0].End))
	}
}

func TestServiceAvailableSlotsDegradesWhenCalendarFails(t *testing.T) {
	cal := &fakeCalendar{busyErr: errors.New("calendar timeout")}
	service, _, _ := newTestService(t, newFakeEngine(), &fakeMail{}, cal)

	slots, err := service.AvailableSlots(context.Background(), "",
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
		time.Hour)
	require.NoError(t, err, "transient calendar failure is not surfaced")
	assert.Len(t, slots, 7, "full business-hours grid without busy data")
}

func TestServiceAvailableSlotsRejectsReversedWindow(t *testing.T) {
	service, _, _ := newTestService(t, newFakeEngine(), &fakeMail{}, &fakeCalendar{})

	_, err := service.AvailableSlots(context.Background(), "",
		time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Hour)
	require.ErrorIs(t, err, ErrInvalidWindow)
}

func TestServiceSendMailRecordsHistory(t *testing.T) {
	mail := &fakeMail{}
	service, store, _ := newTestService(t, newFakeEngine(), mail, &fakeCalendar{})
	_, err := service.StartSession(context.Background(), "candidate@example.com", "")
	require.NoError(t, err)

	err = service.SendMail(context.Background(), "candidate@example.com", "Interview", "Hello")
	require.NoError(t, err)

	session, ok := store.Snapshot()
	require.True(t, ok)
	require.Len(t, session.History, 1)
	assert.Equal(t, EventEmailSent, session.History[0].Kind)
	assert.Equal(t, "candidate@example.com", session.History[0].To)
	assert.Equal(t, []string{"candidate@example.com"}, mail.sent)
}

func TestServiceSendMailFailureRecordsNothing(t *testing.T) {
	mail := &fakeMail{sendErr: errors.New("relay refused")}
	service, store, _ := newTestService(t, newFakeEngine(), mail, &fakeCalendar{})
	_, err := service.StartSession(context.Background(), "candidate@example.com", "")
	require.NoError(t, err)

	err = service.SendMail(context.Background(), "candidate@example.com", "Interview", "Hello")
	require.Error(t, err)

	session, ok := store.Snapshot()
	require.True(t, ok)
	assert.Empty(t, session.History)
}

func TestServiceCreateEventFillsAttendeesAndRecordsHistory(t *testing.T) {
	cal := &fakeCalendar{}
	service, store, _ := newTestService(t, newFakeEngine(), &fakeMail{}, cal)
	_, err := service.StartSession(context.Background(), "candidate@example.com", "")
	require.NoError(t, err)

	eventID, err := service.CreateEvent(context.Background(), "", EventRequest{
		Summary:   "Interview",
		StartTime: time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 1, 15, 15, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "event-123", eventID)

	require.Len(t, cal.events, 1)
	assert.Equal(t, "recruiter@company.com", cal.events[0].RecruiterEmail)
	assert.Equal(t, "candidate@example.com", cal.events[0].CandidateEmail)

	session, ok := store.Snapshot()
	require.True(t, ok)
	require.Len(t, session.History, 1)
	assert.Equal(t, EventCreated, session.History[0].Kind)
	assert.Equal(t, "event-123", session.History[0].EventID)
}

func TestServiceIngestDirectAppendsAndForwards(t *testing.T) {
	notifier := newFakeEngine()
	service, store, _ := newTestService(t, notifier, &fakeMail{}, &fakeCalendar{})
	_, err := service.StartSession(context.Background(), "candidate@example.com", "")
	require.NoError(t, err)

	result := service.IngestDirect(context.Background(), InboundMessage{
		From:    "candidate@example.com",
		Subject: "Re: Interview",
		Body:    "Tuesday works",
	})
	assert.Equal(t, ForwardAccepted, result)

	session, ok := store.Snapshot()
	require.True(t, ok)
	require.Len(t, session.History, 1)
	assert.Equal(t, EventEmailReceived, session.History[0].Kind)
	assert.Equal(t, "Re: Interview", session.History[0].Subject)
}
