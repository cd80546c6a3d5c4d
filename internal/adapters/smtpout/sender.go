// Package smtpout delivers outbound mail through a relay over SMTP.
package smtpout

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"
)

// Sender implements core.MailSender over a plain SMTP relay
type Sender struct {
	relayAddr     string
	helloHostname string
	logger        *zap.Logger
}

// NewSender creates a new SMTP sender. helloHostname defaults to the local
// hostname when empty.
func NewSender(relayAddr, helloHostname string, logger *zap.Logger) *Sender {
	if helloHostname == "" {
		if hostname, err := os.Hostname(); err == nil {
			helloHostname = hostname
		} else {
			helloHostname = "localhost"
		}
	}
	return &Sender{
		relayAddr:     relayAddr,
		helloHostname: helloHostname,
		logger:        logger,
	}
}

// Send delivers one message. The context deadline bounds the whole SMTP
// exchange via the connection deadline.
func (s *Sender) Send(ctx context.Context, from, to, subject, body string) error {
	deadline := time.Now().Add(30 * time.Second)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}

	// Connect to the relay with a timeout
	conn, err := net.DialTimeout("tcp", s.relayAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP relay: %w", err)
	}

	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(s.helloHostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if err := c.Mail(from, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	if err := c.Rcpt(to, nil); err != nil {
		return fmt.Errorf("RCPT TO failed: %w", err)
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}

	if _, err := wc.Write(buildMessage(from, to, subject, body)); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		s.logger.Warn("QUIT command failed", zap.Error(err))
		// Not returning an error here as the email has already been sent
	}

	s.logger.Info("Email sent",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}
