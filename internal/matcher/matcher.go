// Package matcher scores free-text queries against the FAQ corpus.
//
// A Matcher is immutable once built: corpus changes are applied by building
// a new Matcher and swapping it in, never by patching the index in place.
package matcher

import (
	"sort"
	"strings"

	"github.com/openlive/faq-chatbot/internal/models"
	"github.com/openlive/faq-chatbot/internal/textutil"
)

// DefaultThreshold is the minimum composite score for a confident match.
const DefaultThreshold = 0.65

// MaxSuggestions bounds the suggestions returned with a failed match.
const MaxSuggestions = 3

// User-facing messages.
const (
	MessageEmptyQuery = "Vui lòng nhập câu hỏi của bạn"
	MessageNoMatch    = "Câu hỏi của bạn chưa có trong hệ thống"
)

// DefaultSuggestions is returned when neither keyword nor frequent
// suggestions are available.
var DefaultSuggestions = []string{
	"Cách trở thành cổ đông?",
	"Giấy phép kinh doanh?",
	"Liên hệ hỗ trợ thế nào?",
}

// Weights are the coefficients of the composite score. They should sum to 1.
type Weights struct {
	Question float64
	Keywords float64
	Answer   float64
}

// DefaultWeights favour question text; answer text is a minor signal.
var DefaultWeights = Weights{Question: 0.6, Keywords: 0.3, Answer: 0.1}

// Option configures a Matcher.
type Option func(*Matcher)

// WithThreshold overrides DefaultThreshold. Values outside [0,1] are ignored.
func WithThreshold(threshold float64) Option {
	return func(m *Matcher) {
		if threshold >= 0 && threshold <= 1 {
			m.threshold = threshold
		}
	}
}

// WithWeights overrides DefaultWeights.
func WithWeights(w Weights) Option {
	return func(m *Matcher) {
		m.weights = w
	}
}

// Matcher holds the normalized index and scoring configuration.
type Matcher struct {
	index     []IndexedQuestion
	threshold float64
	weights   Weights
}

// New builds the index for corpus and returns a ready Matcher.
func New(corpus models.Corpus, opts ...Option) *Matcher {
	m := &Matcher{
		index:     BuildIndex(corpus),
		threshold: DefaultThreshold,
		weights:   DefaultWeights,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Len returns the number of indexed questions.
func (m *Matcher) Len() int { return len(m.index) }

// Threshold returns the configured confidence cutoff.
func (m *Matcher) Threshold() float64 { return m.threshold }

// Index returns the indexed questions in corpus order. Callers must not
// modify the returned slice.
func (m *Matcher) Index() []IndexedQuestion { return m.index }

// Result is the outcome of FindBestMatch.
type Result struct {
	Success     bool
	Match       *IndexedQuestion
	Score       float64
	Threshold   float64
	Message     string
	Suggestions []string
}

// Score computes the composite score of a normalized query against q.
func (m *Matcher) Score(normalizedQuery string, q *IndexedQuestion) float64 {
	return m.weights.Question*textutil.Similarity(normalizedQuery, q.NormalizedQuestion) +
		m.weights.Keywords*textutil.KeywordScore(normalizedQuery, q.NormalizedKeywords) +
		m.weights.Answer*textutil.Similarity(normalizedQuery, q.NormalizedAnswer)
}

// FindBestMatch returns the highest scoring question for query. The first
// question reaching the maximum wins. A blank query returns immediately
// without scanning the index.
func (m *Matcher) FindBestMatch(query string) Result {
	if strings.TrimSpace(query) == "" {
		return Result{
			Threshold:   m.threshold,
			Message:     MessageEmptyQuery,
			Suggestions: append([]string(nil), DefaultSuggestions...),
		}
	}

	normalized := textutil.Normalize(query)

	var best *IndexedQuestion
	highest := 0.0
	for i := range m.index {
		score := m.Score(normalized, &m.index[i])
		if score > highest {
			highest = score
			best = &m.index[i]
		}
	}

	res := Result{
		Success:   best != nil && highest >= m.threshold,
		Match:     best,
		Score:     highest,
		Threshold: m.threshold,
	}
	if !res.Success {
		res.Message = MessageNoMatch
		res.Suggestions = m.Suggestions(normalized)
	}
	return res
}

// Suggestions picks fallback questions for a normalized query: questions
// with a keyword found in the query, else frequent questions, else
// DefaultSuggestions. The result is never empty.
func (m *Matcher) Suggestions(normalizedQuery string) []string {
	var out []string
	for i := range m.index {
		if len(out) == MaxSuggestions {
			break
		}
		if textutil.ContainsAnyKeyword(normalizedQuery, m.index[i].NormalizedKeywords) {
			out = append(out, m.index[i].Question)
		}
	}
	if len(out) > 0 {
		return out
	}

	for _, q := range m.Frequent(MaxSuggestions) {
		out = append(out, q.Question)
	}
	if len(out) > 0 {
		return out
	}

	return append([]string(nil), DefaultSuggestions...)
}

// Frequent returns up to limit questions flagged as frequent, in corpus
// order. A non-positive limit returns all of them.
func (m *Matcher) Frequent(limit int) []IndexedQuestion {
	var out []IndexedQuestion
	for _, q := range m.index {
		if limit > 0 && len(out) == limit {
			break
		}
		if q.IsFrequent {
			out = append(out, q)
		}
	}
	return out
}

// Hit is one ranked search result.
type Hit struct {
	Question *IndexedQuestion
	Score    float64
}

// Rank scores every question against query and returns those with a
// positive score of at least threshold, best first. Equal scores keep corpus
// order. A non-positive limit returns every hit.
func (m *Matcher) Rank(query string, threshold float64, limit int) []Hit {
	normalized := textutil.Normalize(query)
	if normalized == "" {
		return nil
	}

	var hits []Hit
	for i := range m.index {
		score := m.Score(normalized, &m.index[i])
		if score > 0 && score >= threshold {
			hits = append(hits, Hit{Question: &m.index[i], Score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}
