// Package gmailbox implements the inbox gateway on the Gmail API. The
// UNREAD label doubles as the processing ledger: a message disappears from
// ListUnread only after MarkRead removes the label.
package gmailbox

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mikey/interview-scheduler/internal/core"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Gateway implements core.InboxGateway against a Gmail mailbox
type Gateway struct {
	svc    *gmail.Service
	user   string
	label  string
	logger *zap.Logger
}

// NewGateway creates a Gmail gateway. credentialsFile holds the OAuth client
// config and tokenFile a previously issued token; label optionally restricts
// every query to one Gmail label.
func NewGateway(ctx context.Context, user, credentialsFile, tokenFile, label string, logger *zap.Logger) (*Gateway, error) {
	credBytes, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(credBytes, gmail.GmailModifyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	tokBytes, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	token := &oauth2.Token{}
	if err := json.Unmarshal(tokBytes, token); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	if user == "" {
		user = "me"
	}
	return &Gateway{
		svc:    svc,
		user:   user,
		label:  label,
		logger: logger,
	}, nil
}

// ListUnread returns up to max unread messages, optionally restricted to a
// sender. A message that cannot be fetched in full is skipped, not fatal.
func (g *Gateway) ListUnread(ctx context.Context, fromFilter string, max int64) ([]core.InboundMessage, error) {
	query := "is:unread"
	if fromFilter != "" {
		query += fmt.Sprintf(" from:%s", fromFilter)
	}
	if g.label != "" {
		query += fmt.Sprintf(" label:%s", g.label)
	}

	resp, err := g.svc.Users.Messages.List(g.user).Q(query).MaxResults(max).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages := make([]core.InboundMessage, 0, len(resp.Messages))
	for _, ref := range resp.Messages {
		full, err := g.svc.Users.Messages.Get(g.user, ref.Id).Format("full").Context(ctx).Do()
		if err != nil {
			g.logger.Warn("Failed to fetch message, skipping",
				zap.String("message_id", ref.Id),
				zap.Error(err))
			continue
		}
		messages = append(messages, toInbound(full))
	}

	return messages, nil
}

// MarkRead removes the UNREAD label from a message
func (g *Gateway) MarkRead(ctx context.Context, messageID string) error {
	_, err := g.svc.Users.Messages.Modify(g.user, messageID, &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to mark message %s read: %w", messageID, err)
	}
	return nil
}

func toInbound(msg *gmail.Message) core.InboundMessage {
	out := core.InboundMessage{ID: msg.Id}
	if msg.Payload == nil {
		return out
	}

	for _, h := range msg.Payload.Headers {
		switch strings.ToLower(h.Name) {
		case "from":
			out.From = h.Value
		case "subject":
			out.Subject = h.Value
		}
	}
	out.Body = extractBody(msg.Payload)
	return out
}

// extractBody walks the MIME tree preferring the first text/plain part
func extractBody(part *gmail.MessagePart) string {
	if part.Body != nil && part.Body.Data != "" {
		if part.MimeType == "" || strings.HasPrefix(part.MimeType, "text/") {
			return decodeBody(part.Body.Data)
		}
	}

	for _, p := range part.Parts {
		if p.MimeType == "text/plain" {
			if body := extractBody(p); body != "" {
				return body
			}
		}
	}
	for _, p := range part.Parts {
		if body := extractBody(p); body != "" {
			return body
		}
	}
	return ""
}

func decodeBody(data string) string {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return ""
		}
	}
	return string(decoded)
}
