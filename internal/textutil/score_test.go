package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"both empty", "", "", 0},
		{"left empty", "", "gia", 0},
		{"right empty", "gia", "", 0},
		{"identical", "gia dich vu", "gia dich vu", 1},
		{"disjoint", "gia", "lien he", 0},
		{"one of three", "gia", "gia dich vu", 1.0 / 3},
		{"duplicates collapse", "gia gia", "gia ca", 1.0 / 2},
		{"order irrelevant", "dich vu gia", "gia dich vu", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilarity_Properties(t *testing.T) {
	samples := []string{
		"gia",
		"gia dich vu",
		"gia ca san pham",
		"openlive la gi",
		"lien he ho tro the nao",
		"cach tro thanh co dong",
	}

	for _, a := range samples {
		assert.Equal(t, 1.0, Similarity(a, a), "reflexive for %q", a)
		assert.Equal(t, 0.0, Similarity(a, Normalize("?!...")), "empty side for %q", a)
		for _, b := range samples {
			ab, ba := Similarity(a, b), Similarity(b, a)
			assert.Equal(t, ab, ba, "symmetric for %q / %q", a, b)
			assert.GreaterOrEqual(t, ab, 0.0)
			assert.LessOrEqual(t, ab, 1.0)
		}
	}
}

func TestKeywordScore(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		keywords []string
		want     float64
	}{
		{"no keywords", "gia", nil, 0},
		{"empty query", "", []string{"gia"}, 0},
		{"one hit", "gia dich vu", []string{"gia", "lien he"}, 0.15},
		{"two hits saturate", "gia ca", []string{"gia", "ca"}, 0.3},
		{"substring hit", "giay phep kinh doanh", []string{"giay phep"}, 0.15},
		{"empty keyword ignored", "gia", []string{""}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, KeywordScore(tt.query, tt.keywords), 1e-9)
		})
	}
}

func TestKeywordScore_NeverExceedsCap(t *testing.T) {
	keywords := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for n := 0; n <= len(keywords); n++ {
		got := KeywordScore("a b c d e f g h", keywords[:n])
		assert.LessOrEqual(t, got, KeywordScoreCap)
	}
	assert.Equal(t, KeywordScoreCap, KeywordScore("a b c d e f g h", keywords))
}

func TestContainsAnyKeyword(t *testing.T) {
	assert.True(t, ContainsAnyKeyword("cach tro thanh co dong", []string{"x", "co dong"}))
	assert.False(t, ContainsAnyKeyword("cach tro thanh co dong", []string{"giay phep"}))
	assert.False(t, ContainsAnyKeyword("", []string{"gia"}))
	assert.False(t, ContainsAnyKeyword("gia", []string{""}))
}
