package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openlive/faq-chatbot/internal/service"
)

// Services bundles what the HTTP layer needs. History may be nil.
type Services struct {
	FAQ     service.FAQService
	Chat    service.ChatService
	Logger  service.InteractionLogger
	History service.InteractionReader
}

// AppConfig is the base fiber configuration for these routes. Request
// values end up in interaction records that outlive the handler, so
// strings must not alias fasthttp's reused buffers.
func AppConfig() fiber.Config {
	return fiber.Config{
		Immutable:    true,
		ErrorHandler: ErrorHandler,
	}
}

func RegisterRoutes(app *fiber.App, svcs Services) {
	if svcs.Logger == nil {
		svcs.Logger = service.NewNopInteractionLogger()
	}

	faq := NewFAQHandler(svcs.FAQ, svcs.Logger)
	chat := NewChatHandler(svcs.Chat)

	v1 := app.Group("/api/v1")
	faq.Register(v1)
	NewSearchHandler(svcs.FAQ, svcs.Logger).Register(v1)
	chat.Register(v1)
	NewAdminHandler(svcs.FAQ, svcs.Logger, svcs.History).Register(v1)

	// Paths used by the bundled web widget.
	legacy := app.Group("/api")
	legacy.Get("/faq", faq.listCategories)
	legacy.Get("/faq/:id", faq.getQuestion)
	legacy.Post("/ask", chat.chat)
	legacy.Post("/analytics", faq.analytics)

	NewWebhookHandler(chat).Register(app)
}
