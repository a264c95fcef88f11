package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlive/faq-chatbot/internal/models"
	"github.com/openlive/faq-chatbot/internal/service"
)

type staticRepo struct {
	corpus models.Corpus
}

func (r *staticRepo) Load(context.Context) (models.Corpus, error) { return r.corpus.Clone(), nil }
func (r *staticRepo) Save(context.Context, models.Corpus) error  { return nil }

type captureLogger struct {
	mu      sync.Mutex
	records []models.InteractionRecord
}

func (l *captureLogger) Log(rec models.InteractionRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
}
func (l *captureLogger) LogStartup() {}
func (l *captureLogger) Close()      {}

func (l *captureLogger) actions() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.records))
	for i, r := range l.records {
		out[i] = r.Action
	}
	return out
}

type historyStub struct {
	records []models.InteractionRecord
	err     error
}

func (h historyStub) Recent(_ context.Context, limit int) ([]models.InteractionRecord, error) {
	if h.err != nil {
		return nil, h.err
	}
	return h.records[:min(limit, len(h.records))], nil
}

func fixture() models.Corpus {
	return models.Corpus{
		Categories: []models.Category{
			{
				ID:    "general",
				Title: "Tìm hiểu về OpenLive",
				Questions: []models.Question{
					{ID: "what-is-openlive", Question: "OpenLive là gì?", Answer: "OpenLive là tập đoàn công nghệ.",
						Keywords: []string{"giới thiệu", "openlive"}, LastUpdated: "2024-06-20"},
					{ID: "business-license", Question: "Giấy phép kinh doanh của OpenLive?", Answer: "Có đầy đủ giấy phép.",
						Keywords: []string{"giấy phép"}, LastUpdated: "2024-06-20", IsFrequent: true},
				},
			},
			{
				ID:    "support",
				Title: "Hỗ trợ",
				Questions: []models.Question{
					{ID: "contact", Question: "Liên hệ hỗ trợ thế nào?", Answer: "Gọi hotline 1900.",
						Keywords: []string{"liên hệ", "hỗ trợ"}, LastUpdated: "2024-06-20", IsFrequent: true},
				},
			},
		},
		Metadata: models.Metadata{
			LastUpdated: "2024-06-20",
			Version:     "1.2.0",
			Contact:     &models.Contact{Phone: "1900", Facebook: "fb", Zalo: "zalo"},
		},
	}
}

type testApp struct {
	app    *fiber.App
	faq    service.FAQService
	logger *captureLogger
}

func newTestApp(t *testing.T, history service.InteractionReader) testApp {
	t.Helper()
	faq, err := service.NewFAQService(context.Background(), &staticRepo{corpus: fixture()}, service.FAQOptions{})
	require.NoError(t, err)

	logger := &captureLogger{}
	app := fiber.New(AppConfig())
	RegisterRoutes(app, Services{
		FAQ:     faq,
		Chat:    service.NewChatService(faq, nil, logger),
		Logger:  logger,
		History: history,
	})
	NewHealthHandler(faq, map[string]HealthCheck{
		"sqlite": func(context.Context) error { return nil },
	}).Register(app)

	return testApp{app: app, faq: faq, logger: logger}
}

func (a testApp) do(t *testing.T, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestListCategories(t *testing.T) {
	a := newTestApp(t, nil)

	for _, path := range []string{"/api/v1/categories", "/api/faq"} {
		code, body := a.do(t, "GET", path, "")
		require.Equal(t, fiber.StatusOK, code)

		cats := decode[[]models.CategorySummary](t, body)
		require.Len(t, cats, 2)
		assert.Equal(t, "general", cats[0].ID)
		assert.Equal(t, 2, cats[0].QuestionCount)
	}
}

func TestListQuestions(t *testing.T) {
	a := newTestApp(t, nil)

	code, body := a.do(t, "GET", "/api/v1/categories/general/questions?skip=1&limit=1", "")
	require.Equal(t, fiber.StatusOK, code)
	qs := decode[[]models.QuestionSummary](t, body)
	require.Len(t, qs, 1)
	assert.Equal(t, "business-license", qs[0].ID)

	code, body = a.do(t, "GET", "/api/v1/categories/nope/questions", "")
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Contains(t, decode[map[string]string](t, body)["error"], "not found")

	code, _ = a.do(t, "GET", "/api/v1/categories/general/questions?skip=-1", "")
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestGetQuestion(t *testing.T) {
	a := newTestApp(t, nil)

	code, body := a.do(t, "GET", "/api/v1/questions/contact", "")
	require.Equal(t, fiber.StatusOK, code)
	detail := decode[map[string]any](t, body)
	assert.Equal(t, "contact", detail["id"])
	assert.Equal(t, float64(1), detail["popularity"])
	assert.Equal(t, map[string]any{"id": "support", "title": "Hỗ trợ"}, detail["category"])

	code, body = a.do(t, "GET", "/api/faq/contact", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, float64(2), decode[map[string]any](t, body)["popularity"])

	code, _ = a.do(t, "GET", "/api/v1/questions/missing", "")
	assert.Equal(t, fiber.StatusNotFound, code)

	assert.Equal(t, []string{models.ActionViewQuestion, models.ActionViewQuestion}, a.logger.actions())
}

func TestSearch(t *testing.T) {
	a := newTestApp(t, nil)

	code, body := a.do(t, "GET", "/api/v1/search?q=li%C3%AAn+h%E1%BB%87+h%E1%BB%97+tr%E1%BB%A3", "")
	require.Equal(t, fiber.StatusOK, code)
	results := decode[[]models.SearchResult](t, body)
	require.NotEmpty(t, results)
	assert.Equal(t, "contact", results[0].ID)
	assert.Equal(t, "support", results[0].CategoryID)

	code, _ = a.do(t, "GET", "/api/v1/search?q=", "")
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = a.do(t, "GET", "/api/v1/search?q=abc&threshold=2", "")
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, body = a.do(t, "GET", "/api/v1/search?q=openlive&threshold=0&limit=1", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Len(t, decode[[]models.SearchResult](t, body), 1)
}

func TestInteractionRecordsSurviveKeepAlive(t *testing.T) {
	a := newTestApp(t, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = a.app.Listener(ln) }()
	t.Cleanup(func() { _ = a.app.Shutdown() })

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	br := bufio.NewReader(conn)

	send := func(query, ua string) {
		_, err := fmt.Fprintf(conn, "GET /api/v1/search?q=%s HTTP/1.1\r\nHost: faq.test\r\nUser-Agent: %s\r\n\r\n", query, ua)
		require.NoError(t, err)
		resp, err := http.ReadResponse(br, nil)
		require.NoError(t, err)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	send("AAAAAAAAAAAAAAAA", "UA-FIRST-AAAAAAAAAA")
	send("ZZZZZZZZZZZZ+lien+he", "UA-SECOND-ZZZZZZZZZZZZ")

	a.logger.mu.Lock()
	defer a.logger.mu.Unlock()
	require.Len(t, a.logger.records, 2)
	assert.Equal(t, "AAAAAAAAAAAAAAAA", a.logger.records[0].Message)
	assert.Equal(t, "UA-FIRST-AAAAAAAAAA", a.logger.records[0].Metadata.UserAgent)
	assert.Equal(t, "ZZZZZZZZZZZZ lien he", a.logger.records[1].Message)
	assert.Equal(t, "UA-SECOND-ZZZZZZZZZZZZ", a.logger.records[1].Metadata.UserAgent)
}

func TestChat(t *testing.T) {
	a := newTestApp(t, nil)

	code, body := a.do(t, "POST", "/api/v1/chat", `{"message":"Liên hệ hỗ trợ thế nào?","user_id":"u-1"}`)
	require.Equal(t, fiber.StatusOK, code)
	resp := decode[models.ChatResponse](t, body)
	assert.Equal(t, models.ChatTypeFAQAnswer, resp.Type)
	assert.Equal(t, "Gọi hotline 1900.", resp.Data.Answer)

	code, body = a.do(t, "POST", "/api/ask", `{"message":"thời tiết hôm nay"}`)
	require.Equal(t, fiber.StatusOK, code)
	resp = decode[models.ChatResponse](t, body)
	assert.Equal(t, models.ChatTypeNoMatch, resp.Type)
	assert.NotEmpty(t, resp.Data.Suggestions)

	code, body = a.do(t, "POST", "/api/v1/chat", `{"message":"  "}`)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "Vui lòng nhập câu hỏi của bạn", decode[models.ChatResponse](t, body).Data.Message)

	code, _ = a.do(t, "POST", "/api/v1/chat", `{not json`)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestMatch(t *testing.T) {
	a := newTestApp(t, nil)

	code, body := a.do(t, "POST", "/api/v1/match", `{"message":"OpenLive là gì?"}`)
	require.Equal(t, fiber.StatusOK, code)
	res := decode[map[string]any](t, body)
	assert.Equal(t, true, res["success"])
	assert.Equal(t, "what-is-openlive", res["data"].(map[string]any)["id"])
}

func TestSuggestions(t *testing.T) {
	a := newTestApp(t, nil)

	code, body := a.do(t, "GET", "/api/v1/suggestions?limit=1", "")
	require.Equal(t, fiber.StatusOK, code)
	got := decode[[]models.Suggestion](t, body)
	require.Len(t, got, 1)
	assert.Equal(t, "business-license", got[0].ID)
}

func TestWebhook(t *testing.T) {
	a := newTestApp(t, nil)

	code, body := a.do(t, "POST", "/webhook/web", `{"message":"OpenLive là gì?"}`)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, models.ChatTypeFAQAnswer, decode[models.ChatResponse](t, body).Type)

	code, body = a.do(t, "POST", "/webhook/telegram", `{"message":"hi"}`)
	require.Equal(t, fiber.StatusOK, code)
	reply := decode[map[string]string](t, body)
	assert.Equal(t, UnsupportedPlatformReply, reply["text"])
	assert.Equal(t, "unsupported_platform", reply["status"])
}

func TestAdminAddAndUpdate(t *testing.T) {
	a := newTestApp(t, nil)

	code, body := a.do(t, "POST", "/api/v1/admin/categories/support/questions",
		`{"id":"membership-fee","question":"Phí thành viên là bao nhiêu?","answer":"500.000đ mỗi năm.","keywords":["phí"]}`)
	require.Equal(t, fiber.StatusCreated, code, string(body))
	assert.Equal(t, "membership-fee", decode[map[string]any](t, body)["id"])

	code, body = a.do(t, "POST", "/api/v1/chat", `{"message":"Phí thành viên là bao nhiêu?"}`)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "membership-fee", decode[models.ChatResponse](t, body).Data.QuestionID)

	code, _ = a.do(t, "POST", "/api/v1/admin/categories/support/questions", `{"id":"membership-fee","question":"x"}`)
	assert.Equal(t, fiber.StatusConflict, code)

	code, _ = a.do(t, "POST", "/api/v1/admin/categories/support/questions", `{"question":""}`)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = a.do(t, "POST", "/api/v1/admin/categories/nope/questions", `{"question":"x"}`)
	assert.Equal(t, fiber.StatusNotFound, code)

	code, body = a.do(t, "PATCH", "/api/v1/admin/questions/membership-fee", `{"answer":"600.000đ mỗi năm."}`)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "600.000đ mỗi năm.", decode[map[string]any](t, body)["answer"])

	code, body = a.do(t, "GET", "/api/v1/admin/metadata", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "1.2.2", decode[models.Metadata](t, body).Version)

	assert.Contains(t, a.logger.actions(), models.ActionAddQuestion)
	assert.Contains(t, a.logger.actions(), models.ActionUpdate)
}

func TestAdminReloadAndValidate(t *testing.T) {
	a := newTestApp(t, nil)

	code, body := a.do(t, "POST", "/api/v1/admin/reload", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "reloaded", decode[map[string]any](t, body)["status"])

	code, body = a.do(t, "GET", "/api/v1/admin/validate", "")
	require.Equal(t, fiber.StatusOK, code)
	report := decode[service.ValidationReport](t, body)
	assert.True(t, report.Valid())
}

func TestAdminInteractions(t *testing.T) {
	code, _ := newTestApp(t, nil).do(t, "GET", "/api/v1/admin/interactions", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, code)

	history := historyStub{records: []models.InteractionRecord{
		{ID: "b", Action: models.ActionChat},
		{ID: "a", Action: models.ActionServerStartup},
	}}
	a := newTestApp(t, history)

	code, body := a.do(t, "GET", "/api/v1/admin/interactions?limit=1", "")
	require.Equal(t, fiber.StatusOK, code)
	records := decode[[]models.InteractionRecord](t, body)
	require.Len(t, records, 1)
	assert.Equal(t, "b", records[0].ID)

	code, _ = a.do(t, "GET", "/api/v1/admin/interactions?limit=0", "")
	assert.Equal(t, fiber.StatusBadRequest, code)

	failing := newTestApp(t, historyStub{err: errors.New("sheet offline")})
	code, _ = failing.do(t, "GET", "/api/v1/admin/interactions", "")
	assert.Equal(t, fiber.StatusBadGateway, code)
}

func TestAnalytics(t *testing.T) {
	a := newTestApp(t, nil)

	code, _ := a.do(t, "POST", "/api/analytics", `{"questionId":"contact","platform":"openlive.vn"}`)
	assert.Equal(t, fiber.StatusAccepted, code)
	assert.Equal(t, []string{models.ActionAnalytics}, a.logger.actions())
}

func TestHealth(t *testing.T) {
	a := newTestApp(t, nil)

	code, body := a.do(t, "GET", "/health", "")
	require.Equal(t, fiber.StatusOK, code)
	h := decode[map[string]any](t, body)
	assert.Equal(t, "ok", h["status"])
	assert.Equal(t, map[string]any{"sqlite": "connected"}, h["dbs"])
	assert.Equal(t, float64(3), h["corpus"].(map[string]any)["questions"])
}
