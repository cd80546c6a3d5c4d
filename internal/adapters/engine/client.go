// Package engine contains the HTTP client for the downstream reasoning
// engine that interprets candidate replies and decides next actions.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mikey/interview-scheduler/internal/core"
	"github.com/mikey/interview-scheduler/internal/utils"
	"go.uber.org/zap"
)

// Client implements core.EngineNotifier against the engine's HTTP surface
type Client struct {
	baseURL     string
	httpClient  *http.Client
	normalizer  *utils.BodyNormalizer
	maxBodySize int
	logger      *zap.Logger
}

// NewClient creates a new engine client. Bodies are normalized and capped at
// maxBodySize bytes before they are forwarded.
func NewClient(baseURL string, timeout time.Duration, normalizer *utils.BodyNormalizer, maxBodySize int, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if maxBodySize <= 0 {
		maxBodySize = 4096
	}
	return &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: timeout},
		normalizer:  normalizer,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

type ingestPayload struct {
	From      string `json:"from"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	SessionID string `json:"sessionId,omitempty"`
}

type kickoffPayload struct {
	RecruiterEmail string `json:"recruiterEmail"`
	CandidateEmail string `json:"candidateEmail"`
}

// Forward hands one inbound message to the engine. A transport failure or
// timeout is unreachable; a non-2xx response is a rejection. Either way the
// caller leaves the message unread so it is retried.
func (c *Client) Forward(ctx context.Context, msg core.InboundMessage, sessionID string) core.ForwardResult {
	payload := ingestPayload{
		From:      msg.From,
		Subject:   msg.Subject,
		Body:      c.normalizer.Normalize(msg.Body, c.maxBodySize),
		SessionID: sessionID,
	}

	resp, err := c.post(ctx, "/ingestEmail", payload)
	if err != nil {
		c.logger.Warn("Engine unreachable",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		return core.ForwardUnreachable
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Engine rejected message",
			zap.String("message_id", msg.ID),
			zap.Int("status", resp.StatusCode))
		return core.ForwardRejected
	}

	return core.ForwardAccepted
}

// Kickoff tells the engine a session has started
func (c *Client) Kickoff(ctx context.Context, recruiterEmail, candidateEmail string) error {
	resp, err := c.post(ctx, "/kickoff", kickoffPayload{
		RecruiterEmail: recruiterEmail,
		CandidateEmail: candidateEmail,
	})
	if err != nil {
		return fmt.Errorf("engine kickoff request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("engine kickoff returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}
