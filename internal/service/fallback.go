package service

import "context"

// AnswerGenerator produces a free-form answer when the FAQ has no confident
// match. Implementations are opaque and replaceable.
type AnswerGenerator interface {
	Generate(ctx context.Context, query string) (string, error)
}

// staticFallback always answers with the same text.
type staticFallback struct {
	answer string
}

// DefaultFallbackAnswer points the user at human support.
const DefaultFallbackAnswer = "Xin lỗi, hiện tại tôi chưa có câu trả lời cho câu hỏi này. " +
	"Vui lòng liên hệ bộ phận hỗ trợ để được giải đáp."

// NewStaticFallback returns an AnswerGenerator that always replies with
// answer (DefaultFallbackAnswer when empty).
func NewStaticFallback(answer string) AnswerGenerator {
	if answer == "" {
		answer = DefaultFallbackAnswer
	}
	return staticFallback{answer: answer}
}

func (f staticFallback) Generate(context.Context, string) (string, error) {
	return f.answer, nil
}
