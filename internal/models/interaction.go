package models

import "time"

// InteractionRecord is one row appended to the interaction log.
type InteractionRecord struct {
	ID         string            `bson:"_id"         json:"id"`
	Timestamp  time.Time         `bson:"timestamp"   json:"timestamp"`
	Platform   string            `bson:"platform"    json:"platform"`
	UserID     string            `bson:"user_id"     json:"user_id"`
	Message    string            `bson:"message"     json:"message"`
	Action     string            `bson:"action"      json:"action"`
	Status     string            `bson:"status"      json:"status"`
	QuestionID string            `bson:"question_id" json:"question_id,omitempty"`
	Score      float64           `bson:"score"       json:"score"`
	Metadata   InteractionSource `bson:"metadata"    json:"metadata"`
}

// InteractionSource records where a request came from.
type InteractionSource struct {
	IP        string `bson:"ip"         json:"ip"`
	UserAgent string `bson:"user_agent" json:"userAgent"`
}

// AnalyticsEvent is a client-side event posted by the web widget.
type AnalyticsEvent struct {
	QuestionID string `json:"questionId"`
	Platform   string `json:"platform"`
	UserID     string `json:"user_id"`
}

// Interaction actions.
const (
	ActionChat          = "chat"
	ActionSearch        = "search"
	ActionViewQuestion  = "view_question"
	ActionAddQuestion   = "add_question"
	ActionUpdate        = "update_question"
	ActionAnalytics     = "analytics"
	ActionServerStartup = "server_startup"
)
