package server

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/joseph-ayodele/permit-compliance/internal/common"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, common.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, common.ErrInvalidInput),
		errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrPrecondition):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := statusFor(err)
		message := "Server error"

		var fe *fiber.Error
		switch {
		case errors.As(err, &fe):
			message = fe.Message
		case code < fiber.StatusInternalServerError:
			message = common.PublicMessage(err, err.Error())
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error("http.request.failed",
				"method", c.Method(),
				"path", c.Path(),
				"request_id", common.RequestIDFromContext(c.UserContext()),
				"error", err,
			)
		} else {
			logger.Debug("http.request.rejected", "method", c.Method(), "path", c.Path(), "status", code, "error", err)
		}
		return c.Status(code).JSON(errorResponse{Success: false, Message: message})
	}
}
