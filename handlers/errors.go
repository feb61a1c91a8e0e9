package handlers

import (
	"errors"
	"log"

	"monadmons-arena/services"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps service sentinels to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrRoomNotFound), errors.Is(err, services.ErrCardNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrRoomExists), errors.Is(err, services.ErrRoomFull),
		errors.Is(err, services.ErrNotOwner), errors.Is(err, services.ErrAlreadyHasCards):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidRoomCode), errors.Is(err, services.ErrUnknownMove):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrDailyClaimUnavailable):
		return fiber.StatusTooManyRequests
	case errors.Is(err, services.ErrCardNotOwned):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

func sendError(c *fiber.Ctx, tag string, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("❌ [%s] %s %s: %v", tag, c.Method(), c.Path(), err)
		return c.Status(status).JSON(fiber.Map{"error": "internal error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
