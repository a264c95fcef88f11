package matcher

import (
	"github.com/openlive/faq-chatbot/internal/models"
	"github.com/openlive/faq-chatbot/internal/textutil"
)

// IndexedQuestion is the flattened, pre-normalized view of one question.
type IndexedQuestion struct {
	ID            string
	CategoryID    string
	CategoryTitle string
	Question      string
	Answer        string
	Keywords      []string
	IsFrequent    bool
	// Position is the question's place in corpus order (category order,
	// then question order). Ties in scoring are resolved by it.
	Position int

	NormalizedQuestion string
	NormalizedAnswer   string
	NormalizedKeywords []string
}

// BuildIndex flattens the corpus in declaration order and normalizes the
// question, answer and every keyword once.
func BuildIndex(corpus models.Corpus) []IndexedQuestion {
	index := make([]IndexedQuestion, 0, corpus.QuestionCount())
	for _, cat := range corpus.Categories {
		for _, q := range cat.Questions {
			keywords := make([]string, 0, len(q.Keywords))
			for _, kw := range q.Keywords {
				if n := textutil.Normalize(kw); n != "" {
					keywords = append(keywords, n)
				}
			}
			index = append(index, IndexedQuestion{
				ID:                 q.ID,
				CategoryID:         cat.ID,
				CategoryTitle:      cat.Title,
				Question:           q.Question,
				Answer:             q.Answer,
				Keywords:           append([]string(nil), q.Keywords...),
				IsFrequent:         q.IsFrequent,
				Position:           len(index),
				NormalizedQuestion: textutil.Normalize(q.Question),
				NormalizedAnswer:   textutil.Normalize(q.Answer),
				NormalizedKeywords: keywords,
			})
		}
	}
	return index
}
