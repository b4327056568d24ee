// Package htmlutils provides helpers for turning search-API and article HTML
// into plain text, and for building Telegram-safe HTML messages.
package htmlutils

import (
	"html"
	"strings"
	"unicode/utf16"

	xhtml "golang.org/x/net/html"
)

const ellipsis = "…"

// StripHTMLTags removes all tags from text and decodes HTML entities.
// Naver wraps matched query terms in <b> and escapes quotes as &quot;.
func StripHTMLTags(text string) string {
	if !strings.ContainsAny(text, "<&") {
		return strings.TrimSpace(text)
	}

	var sb strings.Builder

	z := xhtml.NewTokenizer(strings.NewReader(text))

	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			// io.EOF or malformed input; keep what was collected.
			break
		}

		if tt == xhtml.TextToken {
			sb.Write(z.Text())
		}
	}

	return CollapseWhitespace(sb.String())
}

// CollapseWhitespace replaces any run of whitespace with a single space.
func CollapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// EscapeHTML escapes text for Telegram's HTML parse mode.
func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

// TruncateRunes cuts text to at most limit runes, appending an ellipsis
// when anything was removed.
func TruncateRunes(text string, limit int) string {
	if limit <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	return strings.TrimSpace(string(runes[:limit])) + ellipsis
}

// UTF16Len returns the number of UTF-16 code units needed to encode the string.
// Telegram counts message length in UTF-16 code units, not Unicode code points.
func UTF16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// TruncateUTF16 cuts s so that it fits within maxUnits UTF-16 code units.
func TruncateUTF16(s string, maxUnits int) string {
	units := 0

	for i, r := range s {
		runeUnits := 1
		if r > 0xFFFF {
			runeUnits = 2 // Surrogate pair needed
		}

		if units+runeUnits > maxUnits {
			return s[:i]
		}

		units += runeUnits
	}

	return s
}
