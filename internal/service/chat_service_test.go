package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlive/faq-chatbot/internal/models"
)

type recordingLogger struct {
	mu      sync.Mutex
	records []models.InteractionRecord
}

func (l *recordingLogger) Log(rec models.InteractionRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
}

func (l *recordingLogger) LogStartup() {}
func (l *recordingLogger) Close()      {}

func (l *recordingLogger) all() []models.InteractionRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.InteractionRecord(nil), l.records...)
}

type stubGenerator struct {
	answer string
	err    error
	calls  int
}

func (g *stubGenerator) Generate(context.Context, string) (string, error) {
	g.calls++
	return g.answer, g.err
}

func TestChatService_FAQAnswer(t *testing.T) {
	logger := &recordingLogger{}
	gen := &stubGenerator{answer: "không dùng"}
	svc := NewChatService(newTestService(t, &memoryRepo{corpus: sampleCorpus()}), gen, logger)

	resp, err := svc.Ask(context.Background(), models.ChatRequest{
		Message:  "Liên hệ hỗ trợ thế nào?",
		UserID:   "u-1",
		Platform: "web",
		IP:       "10.0.0.1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ChatTypeFAQAnswer, resp.Type)
	assert.Equal(t, "Gọi hotline 1900 hoặc nhắn tin Zalo.", resp.Data.Answer)
	assert.Equal(t, "contact", resp.Data.QuestionID)
	assert.Equal(t, "Hỗ trợ", resp.Data.Category)
	assert.Zero(t, gen.calls)

	records := logger.all()
	require.Len(t, records, 1)
	assert.Equal(t, models.ActionChat, records[0].Action)
	assert.Equal(t, "answered", records[0].Status)
	assert.Equal(t, "contact", records[0].QuestionID)
	assert.Equal(t, "web", records[0].Platform)
	assert.Equal(t, "10.0.0.1", records[0].Metadata.IP)
}

func TestChatService_NoMatchWithoutFallback(t *testing.T) {
	logger := &recordingLogger{}
	svc := NewChatService(newTestService(t, &memoryRepo{corpus: sampleCorpus()}), nil, logger)

	resp, err := svc.Ask(context.Background(), models.ChatRequest{Message: "thời tiết hôm nay"})
	require.NoError(t, err)
	assert.Equal(t, models.ChatTypeNoMatch, resp.Type)
	assert.Equal(t, "Câu hỏi của bạn chưa có trong hệ thống", resp.Data.Message)
	assert.NotEmpty(t, resp.Data.Suggestions)
	assert.Empty(t, resp.Data.Answer)

	records := logger.all()
	require.Len(t, records, 1)
	assert.Equal(t, "unanswered", records[0].Status)
}

func TestChatService_AIFallback(t *testing.T) {
	logger := &recordingLogger{}
	gen := &stubGenerator{answer: "Thời tiết hôm nay đẹp."}
	svc := NewChatService(newTestService(t, &memoryRepo{corpus: sampleCorpus()}), gen, logger)

	resp, err := svc.Ask(context.Background(), models.ChatRequest{Message: "thời tiết hôm nay"})
	require.NoError(t, err)
	assert.Equal(t, models.ChatTypeAIAnswer, resp.Type)
	assert.Equal(t, "Thời tiết hôm nay đẹp.", resp.Data.Answer)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "ai_answered", logger.all()[0].Status)
}

func TestChatService_FallbackErrorDegradesToNoMatch(t *testing.T) {
	gen := &stubGenerator{err: errors.New("quota exceeded")}
	svc := NewChatService(newTestService(t, &memoryRepo{corpus: sampleCorpus()}), gen, nil)

	resp, err := svc.Ask(context.Background(), models.ChatRequest{Message: "thời tiết hôm nay"})
	require.NoError(t, err)
	assert.Equal(t, models.ChatTypeNoMatch, resp.Type)
	assert.NotEmpty(t, resp.Data.Suggestions)
}

func TestChatService_BlankMessageSkipsFallback(t *testing.T) {
	gen := &stubGenerator{answer: "x"}
	svc := NewChatService(newTestService(t, &memoryRepo{corpus: sampleCorpus()}), gen, nil)

	resp, err := svc.Ask(context.Background(), models.ChatRequest{Message: "   "})
	require.NoError(t, err)
	assert.Equal(t, models.ChatTypeNoMatch, resp.Type)
	assert.Equal(t, "Vui lòng nhập câu hỏi của bạn", resp.Data.Message)
	assert.Zero(t, gen.calls)
}

func TestChatService_CancelledContext(t *testing.T) {
	logger := &recordingLogger{}
	svc := NewChatService(newTestService(t, &memoryRepo{corpus: sampleCorpus()}), nil, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Ask(ctx, models.ChatRequest{Message: "OpenLive là gì?"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, logger.all())
}

func TestStaticFallback(t *testing.T) {
	got, err := NewStaticFallback("").Generate(context.Background(), "bất kỳ")
	require.NoError(t, err)
	assert.Equal(t, DefaultFallbackAnswer, got)

	got, err = NewStaticFallback("Liên hệ 1900").Generate(context.Background(), "bất kỳ")
	require.NoError(t, err)
	assert.Equal(t, "Liên hệ 1900", got)
}
