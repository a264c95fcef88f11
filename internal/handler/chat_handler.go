package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openlive/faq-chatbot/internal/models"
	"github.com/openlive/faq-chatbot/internal/service"
)

// ChatHandler wires HTTP → ChatService.
type ChatHandler struct {
	svc service.ChatService
}

// NewChatHandler returns a struct pointer so you can call Register on it.
func NewChatHandler(svc service.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// Register mounts the /chat endpoint on the supplied router group.
func (h *ChatHandler) Register(r fiber.Router) {
	r.Post("/chat", h.chat)
}

// chat handles POST /chat  { "message": "...", "user_id": "...", "platform": "web" }
// A blank message is answered with a prompt, not rejected.
func (h *ChatHandler) chat(c *fiber.Ctx) error {
	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if req.Platform == "" {
		req.Platform = "web"
	}
	return h.reply(c, req)
}

func (h *ChatHandler) reply(c *fiber.Ctx, req models.ChatRequest) error {
	src := source(c)
	req.IP, req.UserAgent = src.IP, src.UserAgent

	resp, err := h.svc.Ask(c.UserContext(), req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(resp)
}
