package dedup

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var keywordFolder = cases.Fold()

// NormalizeKeyword returns the comparison form of a keyword: NFC normalized,
// case folded, trimmed, with inner whitespace collapsed to single spaces.
// "  NewJeans " and "newjeans" compare equal; Hangul composed and decomposed
// forms compare equal.
func NormalizeKeyword(keyword string) string {
	k := norm.NFC.String(keyword)
	k = keywordFolder.String(k)

	return strings.Join(strings.Fields(k), " ")
}
