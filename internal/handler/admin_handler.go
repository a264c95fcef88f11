package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openlive/faq-chatbot/internal/models"
	"github.com/openlive/faq-chatbot/internal/service"
)

// AdminHandler exposes corpus maintenance and the interaction history.
// history may be nil when no readable sink is configured.
type AdminHandler struct {
	svc     service.FAQService
	logger  service.InteractionLogger
	history service.InteractionReader
}

// NewAdminHandler creates an AdminHandler instance.
func NewAdminHandler(svc service.FAQService, logger service.InteractionLogger, history service.InteractionReader) *AdminHandler {
	return &AdminHandler{svc: svc, logger: logger, history: history}
}

// Register mounts the /admin endpoints on the given router group.
func (h *AdminHandler) Register(r fiber.Router) {
	g := r.Group("/admin")
	g.Post("/categories/:id/questions", h.addQuestion)
	g.Patch("/questions/:id", h.updateQuestion)
	g.Post("/reload", h.reload)
	g.Get("/validate", h.validate)
	g.Get("/metadata", h.metadata)
	g.Get("/interactions", h.interactions)
}

// addQuestion handles POST /admin/categories/:id/questions
func (h *AdminHandler) addQuestion(c *fiber.Ctx) error {
	var in models.QuestionInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}

	detail, err := h.svc.AddQuestion(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return serviceError(err)
	}

	h.logger.Log(models.InteractionRecord{
		Platform:   "admin",
		Message:    detail.Question.Question,
		Action:     models.ActionAddQuestion,
		QuestionID: detail.ID,
		Status:     "success",
		Metadata:   source(c),
	})
	return c.Status(fiber.StatusCreated).JSON(detail)
}

// updateQuestion handles PATCH /admin/questions/:id
func (h *AdminHandler) updateQuestion(c *fiber.Ctx) error {
	var patch models.QuestionPatch
	if err := c.BodyParser(&patch); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}

	detail, err := h.svc.UpdateQuestion(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return serviceError(err)
	}

	h.logger.Log(models.InteractionRecord{
		Platform:   "admin",
		Message:    detail.Question.Question,
		Action:     models.ActionUpdate,
		QuestionID: detail.ID,
		Status:     "success",
		Metadata:   source(c),
	})
	return c.JSON(detail)
}

// reload handles POST /admin/reload
func (h *AdminHandler) reload(c *fiber.Ctx) error {
	if err := h.svc.Reload(c.UserContext()); err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{
		"status":     "reloaded",
		"categories": len(h.svc.ListCategories(c.UserContext())),
		"metadata":   h.svc.Metadata(),
	})
}

// validate handles GET /admin/validate against the live corpus.
func (h *AdminHandler) validate(c *fiber.Ctx) error {
	return c.JSON(service.ValidateCorpus(h.svc.Snapshot()))
}

// metadata handles GET /admin/metadata
func (h *AdminHandler) metadata(c *fiber.Ctx) error {
	return c.JSON(h.svc.Metadata())
}

// interactions handles GET /admin/interactions?limit=20
func (h *AdminHandler) interactions(c *fiber.Ctx) error {
	if h.history == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "interaction history is not configured")
	}

	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 500 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be between 1 and 500")
	}

	records, err := h.history.Recent(c.UserContext(), limit)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return c.JSON(records)
}
