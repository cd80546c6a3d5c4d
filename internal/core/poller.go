package core

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SenderMatcher decides whether a message's From header belongs to the
// address the poller is filtering on. It backs up provider-side filtering
// for gateways whose query language cannot express the filter.
type SenderMatcher interface {
	Matches(filter, from string) bool
}

// Poller is the timer-driven inbox ingestion loop. Each tick lists unread
// messages, appends them to the session history and forwards them to the
// downstream engine, marking a message read only once the engine accepts it.
// Unaccepted messages stay unread and are re-offered on a later tick, which
// gives at-least-once delivery with the mailbox as the durable work queue.
type Poller struct {
	store       *SessionStore
	inbox       InboxGateway
	engine      EngineNotifier
	match       SenderMatcher
	logger      *zap.Logger
	batchSize   int64
	callTimeout time.Duration

	mu             sync.Mutex
	running        bool
	stopCh         chan struct{}
	senderOverride string
}

// NewPoller creates a poller in the stopped state
func NewPoller(
	store *SessionStore,
	inbox InboxGateway,
	engine EngineNotifier,
	match SenderMatcher,
	logger *zap.Logger,
	batchSize int64,
	callTimeout time.Duration,
) *Poller {
	if batchSize <= 0 {
		batchSize = 10
	}
	if callTimeout <= 0 {
		callTimeout = 5 * time.Second
	}
	return &Poller{
		store:       store,
		inbox:       inbox,
		engine:      engine,
		match:       match,
		logger:      logger,
		batchSize:   batchSize,
		callTimeout: callTimeout,
	}
}

// Start begins ticking every interval. Calling Start on a running poller is
// a restart: the previous loop is stopped first so the new interval takes
// effect.
func (p *Poller) Start(interval time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		p.logger.Info("Restarting poller with new interval", zap.Duration("interval", interval))
		p.stopLocked()
	} else {
		p.logger.Info("Starting poller", zap.Duration("interval", interval))
	}

	stopCh := make(chan struct{})
	p.stopCh = stopCh
	p.running = true

	go p.run(interval, stopCh)
}

// Stop halts the loop. It is idempotent and safe to call mid-tick: the
// in-flight tick finishes, but no further tick is scheduled.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Poller) stopLocked() {
	if !p.running {
		return
	}
	close(p.stopCh)
	p.running = false
	p.logger.Info("Poller stopped")
}

// IsRunning reports whether the loop is active
func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// SetSenderFilter overrides the sender address the loop filters on. When
// empty, the active session's candidate address is used.
func (p *Poller) SetSenderFilter(filter string) {
	p.mu.Lock()
	p.senderOverride = filter
	p.mu.Unlock()
}

func (p *Poller) senderFilter() string {
	p.mu.Lock()
	override := p.senderOverride
	p.mu.Unlock()

	if override != "" {
		return override
	}
	return p.store.CandidateEmail()
}

func (p *Poller) run(interval time.Duration, stopCh chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// A stop issued while this goroutine was waiting must win over a
			// pending tick.
			select {
			case <-stopCh:
				return
			default:
			}
			p.tick()
		case <-stopCh:
			return
		}
	}
}

// tick runs one pass of the ingestion loop. Errors never escape: a failure
// for one message is logged and the remaining messages are still processed,
// and a listing failure just means this tick yields nothing.
func (p *Poller) tick() {
	filter := p.senderFilter()

	ctx, cancel := context.WithTimeout(context.Background(), p.callTimeout)
	msgs, err := p.inbox.ListUnread(ctx, filter, p.batchSize)
	cancel()
	if err != nil {
		p.logger.Warn("Failed to list unread messages", zap.Error(err))
		return
	}
	if len(msgs) == 0 {
		return
	}

	p.logger.Debug("Tick picked up unread messages",
		zap.Int("count", len(msgs)),
		zap.String("filter", filter))

	for _, msg := range msgs {
		if filter != "" && p.match != nil && !p.match.Matches(filter, msg.From) {
			p.logger.Debug("Skipping message from unexpected sender",
				zap.String("message_id", msg.ID),
				zap.String("from", msg.From))
			continue
		}
		p.processOne(msg)
	}
}

func (p *Poller) processOne(msg InboundMessage) {
	p.store.AppendEvent(Event{
		Kind:    EventEmailReceived,
		From:    msg.From,
		Subject: msg.Subject,
		Body:    msg.Body,
	})

	ctx, cancel := context.WithTimeout(context.Background(), p.callTimeout)
	result := p.engine.Forward(ctx, msg, p.store.SessionID())
	cancel()

	if result != ForwardAccepted {
		p.logger.Warn("Engine did not accept message, leaving unread for retry",
			zap.String("message_id", msg.ID),
			zap.String("result", result.String()))
		return
	}

	ctx, cancel = context.WithTimeout(context.Background(), p.callTimeout)
	err := p.inbox.MarkRead(ctx, msg.ID)
	cancel()
	if err != nil {
		// The engine has the message but the unread flag survived, so a later
		// tick may forward it again. Delivery stays at-least-once.
		p.logger.Error("Accepted message could not be marked read",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		return
	}

	p.logger.Info("Message forwarded and marked read", zap.String("message_id", msg.ID))
}
