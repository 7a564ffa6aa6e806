// Package textnorm canonicalizes strings so header names, product names and
// query terms compare accent- and locale-insensitively.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// isOddSpace reports space-like code points seen in warehouse exports: NBSP,
// the U+2000 block (en/em spaces through zero-width joiner), the word joiner
// and the BOM.
func isOddSpace(r rune) bool {
	switch {
	case r == '\u00a0':
		return true
	case r >= '\u2000' && r <= '\u200d':
		return true
	case r == '\u2060', r == '\ufeff':
		return true
	}
	return false
}

// Fold strips combining diacritical marks, replaces odd space-like runes with
// plain spaces, collapses whitespace runs and trims. Fold is idempotent and
// total: any input, including the empty string, yields a valid result.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	s = strings.Map(func(r rune) rune {
		if isOddSpace(r) {
			return ' '
		}
		return r
	}, s)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	return strings.Join(strings.Fields(s), " ")
}

// Norm is Fold plus case folding.
func Norm(s string) string {
	return strings.ToLower(Fold(s))
}
