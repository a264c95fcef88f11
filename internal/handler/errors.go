package handler

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/openlive/faq-chatbot/internal/service"
)

// serviceError maps service sentinels onto HTTP status codes.
func serviceError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDuplicateID), errors.Is(err, service.ErrCorpusFull):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrDataUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

// ErrorHandler renders every error as {"error": message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Printf("[HTTP] %s %s failed: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
