package senders

import (
	"net/mail"
	"strings"

	"go.uber.org/zap"
)

// Matcher checks whether a message's From header belongs to a given address.
// Mailbox providers return From in display forms like `Jane Doe <jane@x.com>`,
// so the comparison is on the bare address, case-insensitively.
type Matcher struct {
	logger *zap.Logger
}

// NewMatcher creates a new sender matcher
func NewMatcher(logger *zap.Logger) *Matcher {
	return &Matcher{logger: logger}
}

// Matches reports whether from refers to the filter address. An empty filter
// matches everything.
func (m *Matcher) Matches(filter, from string) bool {
	if filter == "" {
		return true
	}

	matched := strings.EqualFold(normalize(filter), normalize(from))
	if !matched && m.logger != nil {
		m.logger.Debug("Sender does not match filter",
			zap.String("filter", filter),
			zap.String("from", from))
	}
	return matched
}

// normalize extracts the bare address from an RFC 5322 From value
func normalize(addr string) string {
	addr = strings.TrimSpace(addr)
	if parsed, err := mail.ParseAddress(addr); err == nil {
		return strings.ToLower(parsed.Address)
	}

	// Fall back to stripping angle brackets by hand
	if start := strings.LastIndex(addr, "<"); start >= 0 {
		if end := strings.Index(addr[start:], ">"); end > 0 {
			addr = addr[start+1 : start+end]
		}
	}
	return strings.ToLower(strings.TrimSpace(addr))
}
