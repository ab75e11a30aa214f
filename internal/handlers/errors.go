package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/foodgram/internal/dto"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/services"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/session"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/validation"
	"github.com/gofiber/fiber/v2"
)

// StatusOf maps a service error to its HTTP status.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, session.ErrAnonymous), errors.Is(err, services.ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotInList):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrInvalidOperation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrPermissionDenied):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// Fail writes the JSON error body shared by handlers and middleware.
func Fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Code: code, Message: message})
}

// RespondError maps err to its status and writes the error body. Internal
// errors are logged and hidden.
func RespondError(c *fiber.Ctx, err error) error {
	status := StatusOf(err)
	body := dto.ErrorResponse{Error: true, Code: services.CodeOf(err), Message: err.Error()}

	var verr *validation.Error
	if errors.As(err, &verr) {
		body.Message = "Invalid input"
		body.Fields = verr.Fields
	}
	if errors.Is(err, session.ErrAnonymous) {
		body.Code = "not_authenticated"
		body.Message = "Authentication credentials were not provided"
	}
	if status == fiber.StatusInternalServerError {
		slog.ErrorContext(c.UserContext(), "request failed",
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
		return Fail(c, status, "internal_error", "Internal server error")
	}
	return c.Status(status).JSON(body)
}

func badBody(c *fiber.Ctx) error {
	return Fail(c, fiber.StatusBadRequest, "invalid_body", "Invalid request body")
}

func NotFound(c *fiber.Ctx) error {
	return Fail(c, fiber.StatusNotFound, "not_found", "Not found")
}

// paramID parses a positive integer route parameter.
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// ErrorHandler renders errors that escape the handlers, such as unknown routes.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code == fiber.StatusInternalServerError {
		slog.ErrorContext(c.UserContext(), "unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
		return Fail(c, code, "internal_error", "Internal server error")
	}
	return Fail(c, code, "http_"+strconv.Itoa(code), fe.Message)
}
