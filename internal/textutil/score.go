package textutil

import "strings"

const (
	// KeywordHitScore is awarded for every keyword found in the query.
	KeywordHitScore = 0.15
	// KeywordScoreCap bounds the keyword score so keyword hits alone
	// cannot dominate the composite.
	KeywordScoreCap = 0.3
)

// Similarity returns the Jaccard index of the token sets of two normalized
// strings. It is symmetric and lies in [0,1].
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	ta, tb := Tokens(a), Tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	small, large := ta, tb
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for t := range small {
		if _, ok := large[t]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

// KeywordScore rewards normalized keywords that appear as substrings of the
// normalized query: min(0.3, hits*0.15).
func KeywordScore(query string, keywords []string) float64 {
	if query == "" || len(keywords) == 0 {
		return 0
	}
	hits := 0
	for _, kw := range keywords {
		if kw != "" && strings.Contains(query, kw) {
			hits++
		}
	}
	return min(KeywordScoreCap, float64(hits)*KeywordHitScore)
}

// ContainsAnyKeyword reports whether at least one non-empty keyword is a
// substring of query.
func ContainsAnyKeyword(query string, keywords []string) bool {
	if query == "" {
		return false
	}
	for _, kw := range keywords {
		if kw != "" && strings.Contains(query, kw) {
			return true
		}
	}
	return false
}
