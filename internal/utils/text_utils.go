package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// replyMarker matches the attribution line mail clients insert above quoted
// text, e.g. "On Mon, Jan 15, 2024 at 9:00 AM Jane Doe wrote:"
var replyMarker = regexp.MustCompile(`(?m)^On .{0,120} wrote:\s*$`)

// BodyNormalizer prepares inbound email bodies before they are handed to the
// downstream engine: quoted reply text is dropped, the body is truncated to
// a size limit and invalid UTF-8 is removed.
type BodyNormalizer struct {
	logger *zap.Logger
}

// NewBodyNormalizer creates a new BodyNormalizer
func NewBodyNormalizer(logger *zap.Logger) *BodyNormalizer {
	return &BodyNormalizer{
		logger: logger,
	}
}

// StripQuoted removes quoted reply blocks: everything below the first reply
// attribution line, plus any remaining ">"-prefixed lines. Runs of blank
// lines left behind are collapsed.
func (n *BodyNormalizer) StripQuoted(body string) string {
	if loc := replyMarker.FindStringIndex(body); loc != nil {
		body = body[:loc[0]]
	}

	lines := strings.Split(body, "\n")
	kept := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), ">") {
			continue
		}
		if strings.TrimSpace(line) == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		kept = append(kept, line)
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// TruncateText safely truncates text to the specified maximum size
// and ensures the result is valid UTF-8
func (n *BodyNormalizer) TruncateText(text string, maxSize int) string {
	// If no limit or text is already within limits, return as is
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	// First truncate to the byte limit
	truncated := text[:maxSize]

	// Ensure the truncated text ends with a valid UTF-8 sequence
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		// Remove bytes until we have valid UTF-8
		truncated = truncated[:len(truncated)-1]
	}

	n.logger.Debug("Body truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated + "\n[... Content truncated due to size limits ...]"
}

// SanitizeUTF8 ensures the string contains only valid UTF-8 characters
func (n *BodyNormalizer) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	// Replace invalid UTF-8 sequences with the Unicode replacement character
	result := make([]rune, 0, len(text))
	for i, r := range text {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(text[i:])
			if size == 1 {
				// Skip invalid UTF-8 sequences
				continue
			}
		}
		result = append(result, r)
	}

	n.logger.Debug("Body sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(string(result))))

	return string(result)
}

// Normalize strips quoted text, truncates and sanitizes in one operation
func (n *BodyNormalizer) Normalize(body string, maxSize int) string {
	stripped := n.StripQuoted(body)
	truncated := n.TruncateText(stripped, maxSize)
	return n.SanitizeUTF8(truncated)
}
