package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/campusnav/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, unknown_location, no_path, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errFromDomain maps core sentinel errors onto API errors.
func errFromDomain(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrUnknownLocation):
		return newError(c, 404, "unknown_location", err.Error())
	case errors.Is(err, domain.ErrNoPath):
		return newError(c, 422, "no_path", err.Error())
	case errors.Is(err, domain.ErrInvalidRoute):
		return newError(c, 422, "invalid_route", err.Error())
	case errors.Is(err, domain.ErrEmptyRoute):
		return newError(c, 400, "empty_route", err.Error())
	case errors.Is(err, domain.ErrSessionNotFound):
		return newError(c, 404, "session_not_found", err.Error())
	case errors.Is(err, domain.ErrNoActiveRoute):
		return newError(c, 404, "no_active_route", err.Error())
	default:
		LoggerFromCtx(c.UserContext()).Error("request failed", slog.String("path", c.Path()), slog.Any("error", err))
		return errInternal(c, "internal error")
	}
}
