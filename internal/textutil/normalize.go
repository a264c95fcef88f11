// Package textutil holds the text primitives the matcher is built on:
// Vietnamese-aware normalization, token-overlap similarity and keyword
// scoring.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Vietnamese letters survive normalization even when they have no
// decomposition (the block spans Latin-1 Supplement to Latin Extended
// Additional).
const (
	vietFirst = 'à'
	vietLast  = 'ỹ'
)

// Normalize maps text to the canonical form used for comparison: lowercase,
// accents stripped, "đ" folded to "d", punctuation replaced by spaces and
// whitespace collapsed. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	s := strings.ToLower(text)
	s = stripMarks(s)
	s = strings.ReplaceAll(s, "đ", "d")

	s = strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, s)

	return strings.Join(strings.Fields(s), " ")
}

// stripMarks decomposes s and drops every combining mark.
func stripMarks(s string) string {
	// transform.Chain keeps state, so build a fresh chain per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		return true
	case r >= vietFirst && r <= vietLast:
		return true
	}
	return false
}

// Tokens splits normalized text on whitespace into a set of unique tokens.
func Tokens(normalized string) map[string]struct{} {
	fields := strings.Fields(normalized)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// ExtractKeywords returns the unique tokens of text (after normalization)
// that are at least minLength runes long, in first-seen order.
func ExtractKeywords(text string, minLength int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, w := range strings.Fields(Normalize(text)) {
		if len([]rune(w)) < minLength {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
