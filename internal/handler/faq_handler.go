package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openlive/faq-chatbot/internal/models"
	"github.com/openlive/faq-chatbot/internal/service"
)

// FAQHandler wires HTTP → FAQService for browsing.
type FAQHandler struct {
	svc    service.FAQService
	logger service.InteractionLogger
}

// NewFAQHandler creates a new FAQHandler.
func NewFAQHandler(svc service.FAQService, logger service.InteractionLogger) *FAQHandler {
	return &FAQHandler{svc: svc, logger: logger}
}

// Register mounts the browsing endpoints on the supplied router group.
func (h *FAQHandler) Register(r fiber.Router) {
	r.Get("/categories", h.listCategories)
	r.Get("/categories/:id/questions", h.listQuestions)
	r.Get("/questions/:id", h.getQuestion)
	r.Get("/suggestions", h.suggestions)
	r.Post("/match", h.match)
	r.Post("/analytics", h.analytics)
}

// listCategories handles GET /categories
func (h *FAQHandler) listCategories(c *fiber.Ctx) error {
	return c.JSON(h.svc.ListCategories(c.UserContext()))
}

// listQuestions handles GET /categories/:id/questions?skip=0&limit=50
func (h *FAQHandler) listQuestions(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 0)
	if skip < 0 || limit < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "skip and limit must not be negative")
	}

	questions, err := h.svc.ListQuestions(c.UserContext(), c.Params("id"), skip, limit)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(questions)
}

// getQuestion handles GET /questions/:id
func (h *FAQHandler) getQuestion(c *fiber.Ctx) error {
	id := c.Params("id")
	detail, err := h.svc.GetQuestionDetail(c.UserContext(), id)
	if err != nil {
		return serviceError(err)
	}

	h.logger.Log(models.InteractionRecord{
		Platform:   "web",
		Action:     models.ActionViewQuestion,
		QuestionID: id,
		Status:     "success",
		Metadata:   source(c),
	})
	return c.JSON(detail)
}

// suggestions handles GET /suggestions?limit=5
func (h *FAQHandler) suggestions(c *fiber.Ctx) error {
	return c.JSON(h.svc.FrequentQuestions(c.UserContext(), c.QueryInt("limit", 5)))
}

// match handles POST /match { "message": "..." } and returns the raw
// best-match result.
func (h *FAQHandler) match(c *fiber.Ctx) error {
	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	return c.JSON(h.svc.FindAnswer(c.UserContext(), req.Message))
}

// analytics handles POST /analytics { "questionId": "...", "platform": "..." }
func (h *FAQHandler) analytics(c *fiber.Ctx) error {
	var ev models.AnalyticsEvent
	if err := c.BodyParser(&ev); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}

	h.logger.Log(models.InteractionRecord{
		Platform:   ev.Platform,
		UserID:     ev.UserID,
		Action:     models.ActionAnalytics,
		QuestionID: ev.QuestionID,
		Status:     "recorded",
		Metadata:   source(c),
	})
	return c.SendStatus(fiber.StatusAccepted)
}

func source(c *fiber.Ctx) models.InteractionSource {
	return models.InteractionSource{IP: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
}
