// Package normalize folds marketplace product text into a canonical ASCII
// form so that keyword extraction and category scoring compare like with
// like regardless of locale spelling.
package normalize

import (
	"regexp"
	"strings"
)

// foldTable maps the Turkish letters (and their uppercase forms) that appear
// in marketplace category names onto ASCII equivalents.
var foldTable = map[rune]rune{
	'ğ': 'g', 'Ğ': 'g',
	'ü': 'u', 'Ü': 'u',
	'ş': 's', 'Ş': 's',
	'ı': 'i', 'İ': 'i',
	'ö': 'o', 'Ö': 'o',
	'ç': 'c', 'Ç': 'c',
	'â': 'a', 'Â': 'a',
	'î': 'i', 'Î': 'i',
	'û': 'u', 'Û': 'u',
}

var (
	nonWordPattern    = regexp.MustCompile(`[^a-z0-9]+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize lowercases the input, folds locale-specific letters to ASCII,
// replaces non-word characters with spaces and collapses whitespace.
// It is pure, total and idempotent: Normalize(Normalize(s)) == Normalize(s)
// and Normalize("") == "".
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if folded, ok := foldTable[r]; ok {
			b.WriteRune(folded)
			continue
		}
		b.WriteRune(r)
	}

	out := strings.ToLower(b.String())
	out = nonWordPattern.ReplaceAllString(out, " ")
	out = whitespacePattern.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// Tokens normalizes the input and splits it on whitespace.
func Tokens(text string) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}
