package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/openlive/faq-chatbot/internal/models"
	"github.com/openlive/faq-chatbot/internal/service"
)

// SearchHandler wires HTTP → FAQService.Search.
type SearchHandler struct {
	svc    service.FAQService
	logger service.InteractionLogger
}

// NewSearchHandler returns a handler instance.
func NewSearchHandler(svc service.FAQService, logger service.InteractionLogger) *SearchHandler {
	return &SearchHandler{svc: svc, logger: logger}
}

// Register mounts GET /search on the given router group.
func (h *SearchHandler) Register(r fiber.Router) {
	r.Get("/search", h.search)
}

// search handles GET /search?q=some+text&threshold=0.2&limit=5
func (h *SearchHandler) search(c *fiber.Ctx) error {
	var req models.SearchRequest
	if err := c.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")
	}
	if strings.TrimSpace(req.Query) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "q (query) parameter is required")
	}
	if req.Limit < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be a positive integer")
	}

	opts := service.SearchOptions{Limit: req.Limit}
	if raw := c.Query("threshold"); raw != "" {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil || t < 0 || t > 1 {
			return fiber.NewError(fiber.StatusBadRequest, "threshold must be a number between 0 and 1")
		}
		opts.Threshold = &t
	}

	results := h.svc.Search(c.UserContext(), req.Query, opts)

	rec := models.InteractionRecord{
		Platform: "web",
		Message:  req.Query,
		Action:   models.ActionSearch,
		Status:   "no_results",
		Metadata: source(c),
	}
	if len(results) > 0 {
		rec.Status = "success"
		rec.QuestionID = results[0].ID
		rec.Score = results[0].Score
	}
	h.logger.Log(rec)

	return c.JSON(results)
}
