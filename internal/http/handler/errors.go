package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/LinkMe/internal/app/service"
	"github.com/sifan077/LinkMe/internal/http/middleware"
	"go.uber.org/zap"
)

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// statusFor maps service errors to HTTP status codes. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrNotFoundOrUnauthorized):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrDuplicateEmail),
		errors.Is(err, service.ErrDuplicateUsername),
		errors.Is(err, service.ErrDuplicateFolderName):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes the error response for err. Internal errors are logged
// with request context and hidden behind a generic message.
func respondError(c *fiber.Ctx, logger *zap.Logger, op string, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		logger.Error(op+" failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("user_id", middleware.UserID(c)),
			zap.Error(err),
		)
		return errorJSON(c, status, "internal server error")
	}
	return errorJSON(c, status, err.Error())
}

func badBody(c *fiber.Ctx) error {
	return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
}
