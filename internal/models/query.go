package models

import "time"

// SearchRequest is the payload for GET /search (query parameters).
type SearchRequest struct {
	Query     string  `json:"q"         query:"q"`         // free-text query
	Threshold float64 `json:"threshold" query:"threshold"` // optional; 0 means service default
	Limit     int     `json:"limit"     query:"limit"`     // optional; 0 means service default
}

// SearchResult is one ranked hit of a search.
type SearchResult struct {
	ID            string  `json:"id"`
	Question      string  `json:"question"`
	Category      string  `json:"category"`
	CategoryID    string  `json:"categoryId"`
	Score         float64 `json:"score"`
	AnswerPreview string  `json:"answerPreview"`
}

// MatchResult is the outcome of a best-match lookup.
type MatchResult struct {
	Success     bool            `json:"success"`
	Match       *QuestionDetail `json:"data"`
	Score       float64         `json:"score"`
	Threshold   float64         `json:"threshold"`
	Message     string          `json:"message"`
	Suggestions []string        `json:"suggestions"`
	Timestamp   time.Time       `json:"timestamp"`
}

// ChatRequest is the payload for POST /chat.
type ChatRequest struct {
	Message   string `json:"message"`
	UserID    string `json:"user_id"`
	Platform  string `json:"platform"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// Chat response types.
const (
	ChatTypeFAQAnswer = "faq_answer"
	ChatTypeAIAnswer  = "ai_answer"
	ChatTypeNoMatch   = "no_match"
)

// ChatData carries the body of a chat reply. Which fields are set depends
// on ChatResponse.Type.
type ChatData struct {
	Answer      string   `json:"answer,omitempty"`
	Message     string   `json:"message,omitempty"`
	QuestionID  string   `json:"question_id,omitempty"`
	Question    string   `json:"question,omitempty"`
	Category    string   `json:"category,omitempty"`
	Score       float64  `json:"score"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// ChatResponse is returned by POST /chat.
type ChatResponse struct {
	Type      string    `json:"type"`
	Data      ChatData  `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// QuestionInput is the admin payload for creating a question.
type QuestionInput struct {
	ID         string   `json:"id"`
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Keywords   []string `json:"keywords"`
	Related    []string `json:"related"`
	IsFrequent bool     `json:"isFrequent"`
}

// QuestionPatch is the admin payload for updating a question. Nil fields
// are left unchanged.
type QuestionPatch struct {
	Question   *string   `json:"question"`
	Answer     *string   `json:"answer"`
	Keywords   *[]string `json:"keywords"`
	Related    *[]string `json:"related"`
	IsFrequent *bool     `json:"isFrequent"`
}
