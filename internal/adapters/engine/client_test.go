package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mikey/interview-scheduler/internal/core"
	"github.com/mikey/interview-scheduler/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, time.Second, utils.NewBodyNormalizer(zap.NewNop()), 4096, zap.NewNop())
}

func TestForwardAccepted(t *testing.T) {
	var got ingestPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ingestEmail", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result := client.Forward(context.Background(), core.InboundMessage{
		ID:      "msg-1",
		From:    "candidate@example.com",
		Subject: "Re: Interview",
		Body:    "Tuesday works for me",
	}, "session-1")

	assert.Equal(t, core.ForwardAccepted, result)
	assert.Equal(t, "candidate@example.com", got.From)
	assert.Equal(t, "Re: Interview", got.Subject)
	assert.Equal(t, "Tuesday works for me", got.Body)
	assert.Equal(t, "session-1", got.SessionID)
}

func TestForwardStripsQuotedReplyText(t *testing.T) {
	var got ingestPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	body := "Tuesday works.\n\nOn Mon, Jan 15, 2024 at 9:00 AM Jane Doe wrote:\n> When are you free?\n"
	result := client.Forward(context.Background(), core.InboundMessage{From: "c@x.com", Body: body}, "")

	assert.Equal(t, core.ForwardAccepted, result)
	assert.Equal(t, "Tuesday works.", got.Body)
}

func TestForwardRejectedOnErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result := client.Forward(context.Background(), core.InboundMessage{ID: "msg-1"}, "")
	assert.Equal(t, core.ForwardRejected, result)
}

func TestForwardUnreachableWhenEngineIsDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL)
	result := client.Forward(context.Background(), core.InboundMessage{ID: "msg-1"}, "")
	assert.Equal(t, core.ForwardUnreachable, result)
}

func TestKickoff(t *testing.T) {
	var got kickoffPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/kickoff", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.Kickoff(context.Background(), "recruiter@company.com", "candidate@example.com")
	require.NoError(t, err)
	assert.Equal(t, "recruiter@company.com", got.RecruiterEmail)
	assert.Equal(t, "candidate@example.com", got.CandidateEmail)
}

func TestKickoffErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.Kickoff(context.Background(), "r@c.com", "c@x.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestKickoffUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL)
	err := client.Kickoff(context.Background(), "r@c.com", "c@x.com")
	require.Error(t, err)
}
