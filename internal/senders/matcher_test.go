package senders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMatcher(t *testing.T) {
	m := NewMatcher(zap.NewNop())

	tests := []struct {
		name   string
		filter string
		from   string
		want   bool
	}{
		{"bare addresses", "jane@example.com", "jane@example.com", true},
		{"display name form", "jane@example.com", "Jane Doe <jane@example.com>", true},
		{"quoted display name", "jane@example.com", `"Doe, Jane" <jane@example.com>`, true},
		{"case insensitive", "Jane@Example.COM", "jane@example.com", true},
		{"filter in display form", "Jane Doe <jane@example.com>", "jane@example.com", true},
		{"surrounding whitespace", "jane@example.com", "  jane@example.com  ", true},
		{"different address", "jane@example.com", "john@example.com", false},
		{"different domain", "jane@example.com", "jane@example.org", false},
		{"empty filter matches all", "", "anyone@example.com", true},
		{"empty from", "jane@example.com", "", false},
		{"malformed angle brackets", "jane@example.com", "Jane <jane@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Matches(tt.filter, tt.from))
		})
	}
}

func TestMatcherWithoutLogger(t *testing.T) {
	m := NewMatcher(nil)
	assert.False(t, m.Matches("jane@example.com", "john@example.com"))
}
