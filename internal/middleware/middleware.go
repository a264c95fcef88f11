// Package middleware holds the Fiber middleware stack shared by the server.
package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// BodyLimit caps request bodies at 10 KB.
const BodyLimit = 10 * 1024

// Logging writes one access log line per request.
func Logging() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "[${time}] ${ip} ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	})
}

// Recover turns handler panics into 500 responses.
func Recover() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			log.Printf("[HTTP] panic on %s %s: %v", c.Method(), c.Path(), e)
		},
	})
}

// CORS allows the comma-separated origins.
func CORS(origins string) fiber.Handler {
	if origins == "" {
		origins = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	})
}

// Security sets the standard security headers.
func Security() fiber.Handler {
	return helmet.New(helmet.Config{
		CrossOriginEmbedderPolicy: "unsafe-none",
	})
}

// NotFound is the terminal handler for unmatched routes.
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "Không tìm thấy trang yêu cầu",
		"path":  c.Path(),
	})
}
