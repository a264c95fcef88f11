package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/openlive/faq-chatbot/internal/models"
)

// ChatService answers chat messages from the FAQ, falling back to an answer
// generator when no confident match exists.
type ChatService interface {
	// Ask returns the reply for one user message.
	Ask(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error)
}

// chatService is the concrete implementation. fallback may be nil.
type chatService struct {
	faq      FAQService
	fallback AnswerGenerator
	logger   InteractionLogger
	now      func() time.Time
}

// NewChatService wires dependencies and returns ChatService.
func NewChatService(faq FAQService, fallback AnswerGenerator, logger InteractionLogger) ChatService {
	if logger == nil {
		logger = NewNopInteractionLogger()
	}
	return &chatService{
		faq:      faq,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

// Ask matches the message against the FAQ. Blank messages and misses are
// regular replies, not errors; only a cancelled context fails the call.
func (s *chatService) Ask(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return models.ChatResponse{}, err
	}

	match := s.faq.FindAnswer(ctx, req.Message)
	resp := models.ChatResponse{Timestamp: s.now().UTC()}
	rec := models.InteractionRecord{
		Platform: req.Platform,
		UserID:   req.UserID,
		Message:  req.Message,
		Action:   models.ActionChat,
		Score:    match.Score,
		Metadata: models.InteractionSource{IP: req.IP, UserAgent: req.UserAgent},
	}

	switch {
	case match.Success && match.Match != nil:
		resp.Type = models.ChatTypeFAQAnswer
		resp.Data = models.ChatData{
			Answer:     match.Match.Answer,
			QuestionID: match.Match.ID,
			Question:   match.Match.Question.Question,
			Category:   match.Match.Category.Title,
			Score:      match.Score,
		}
		rec.QuestionID = match.Match.ID
		rec.Status = "answered"

	case strings.TrimSpace(req.Message) != "" && s.fallback != nil:
		answer, err := s.fallback.Generate(ctx, req.Message)
		if err == nil && strings.TrimSpace(answer) != "" {
			resp.Type = models.ChatTypeAIAnswer
			resp.Data = models.ChatData{Answer: answer, Message: answer, Score: match.Score}
			rec.Status = "ai_answered"
			break
		}
		if err != nil {
			log.Printf("[Chat Service] AI fallback failed: %v", err)
		}
		resp.Type, resp.Data = noMatch(match)
		rec.Status = "unanswered"

	default:
		resp.Type, resp.Data = noMatch(match)
		rec.Status = "unanswered"
	}

	s.logger.Log(rec)
	return resp, nil
}

func noMatch(match models.MatchResult) (string, models.ChatData) {
	return models.ChatTypeNoMatch, models.ChatData{
		Message:     match.Message,
		Score:       match.Score,
		Suggestions: match.Suggestions,
	}
}
