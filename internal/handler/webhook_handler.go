package handler

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/openlive/faq-chatbot/internal/models"
)

// UnsupportedPlatformReply is sent to platforms without an adapter.
const UnsupportedPlatformReply = "🤖 Xin chào! Hiện tại bot chưa hỗ trợ nền tảng này."

// WebhookHandler dispatches platform webhooks. Only the web platform has an
// adapter; it routes to the chat handler.
type WebhookHandler struct {
	chat *ChatHandler
}

// NewWebhookHandler creates a WebhookHandler on top of chat.
func NewWebhookHandler(chat *ChatHandler) *WebhookHandler {
	return &WebhookHandler{chat: chat}
}

// Register mounts POST /webhook/:platform.
func (h *WebhookHandler) Register(r fiber.Router) {
	r.Post("/webhook/:platform", h.handle)
}

func (h *WebhookHandler) handle(c *fiber.Ctx) error {
	platform := strings.ToLower(c.Params("platform"))

	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}

	switch platform {
	case "web":
		req.Platform = platform
		return h.chat.reply(c, req)
	default:
		log.Printf("[Webhook] Unsupported platform %q", platform)
		return c.JSON(fiber.Map{
			"text":   UnsupportedPlatformReply,
			"status": "unsupported_platform",
		})
	}
}
