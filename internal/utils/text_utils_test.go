package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestNormalizer() *BodyNormalizer {
	return NewBodyNormalizer(zap.NewNop())
}

func TestStripQuotedRemovesReplyBlock(t *testing.T) {
	n := newTestNormalizer()

	body := "Tuesday at 10 works for me.\n" +
		"\n" +
		"On Mon, Jan 15, 2024 at 9:00 AM Jane Doe wrote:\n" +
		"> Hi, when are you free this week?\n" +
		"> Best, Jane\n"

	assert.Equal(t, "Tuesday at 10 works for me.", n.StripQuoted(body))
}

func TestStripQuotedRemovesBareQuoteLines(t *testing.T) {
	n := newTestNormalizer()

	body := "Sounds good.\n> earlier message\n>> even earlier\nThanks!"
	assert.Equal(t, "Sounds good.\nThanks!", n.StripQuoted(body))
}

func TestStripQuotedCollapsesBlankRuns(t *testing.T) {
	n := newTestNormalizer()

	body := "First.\n> quoted\n\n> quoted\n\nSecond."
	assert.Equal(t, "First.\n\nSecond.", n.StripQuoted(body))
}

func TestStripQuotedLeavesPlainBodies(t *testing.T) {
	n := newTestNormalizer()

	body := "No quoting here.\nJust two lines."
	assert.Equal(t, body, n.StripQuoted(body))
}

func TestTruncateTextRespectsLimit(t *testing.T) {
	n := newTestNormalizer()

	long := strings.Repeat("a", 100)
	got := n.TruncateText(long, 10)
	assert.True(t, strings.HasPrefix(got, strings.Repeat("a", 10)))
	assert.Contains(t, got, "truncated")
}

func TestTruncateTextNoopWithinLimit(t *testing.T) {
	n := newTestNormalizer()

	assert.Equal(t, "short", n.TruncateText("short", 100))
	assert.Equal(t, "no limit", n.TruncateText("no limit", 0))
}

func TestTruncateTextKeepsValidUTF8(t *testing.T) {
	n := newTestNormalizer()

	// 7 bytes cuts the second three-byte rune in half
	got := n.TruncateText("日本語テスト", 7)
	cut, _, _ := strings.Cut(got, "\n")
	assert.True(t, strings.HasPrefix(got, "日本"))
	assert.Equal(t, "日本", cut)
}

func TestSanitizeUTF8(t *testing.T) {
	n := newTestNormalizer()

	assert.Equal(t, "clean", n.SanitizeUTF8("clean"))
	assert.Equal(t, "ab", n.SanitizeUTF8("a\xffb"))
}

func TestNormalize(t *testing.T) {
	n := newTestNormalizer()

	body := "Works for me.\n\nOn Tue, Jan 16, 2024 at 2:00 PM Bob wrote:\n> options?\n"
	assert.Equal(t, "Works for me.", n.Normalize(body, 4096))
}
