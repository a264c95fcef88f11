package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/openlive/faq-chatbot/internal/service"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	faq    service.FAQService
	checks map[string]HealthCheck
}

func NewHealthHandler(faq service.FAQService, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{faq: faq, checks: checks}
}

func (h *HealthHandler) Register(r fiber.Router) {
	r.Get("/health", h.health)
}

func (h *HealthHandler) health(c *fiber.Ctx) error {
	status := "ok"
	deps := fiber.Map{}
	for name, check := range h.checks {
		deps[name] = h.run(c.UserContext(), check)
		if deps[name] != "connected" {
			status = "degraded"
		}
	}

	meta := h.faq.Metadata()
	questions := 0
	for _, cat := range h.faq.ListCategories(c.UserContext()) {
		questions += cat.QuestionCount
	}
	if questions == 0 {
		status = "degraded"
	}

	return c.JSON(fiber.Map{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"corpus": fiber.Map{
			"questions": questions,
			"version":   meta.Version,
		},
		"dbs": deps,
	})
}

func (h *HealthHandler) run(ctx context.Context, check HealthCheck) string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := check(ctx); err != nil {
		return "error"
	}
	return "connected"
}
