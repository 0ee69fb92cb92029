package http

import (
	"errors"
	"regexp"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/seismeta/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, degenerate_geometry, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// upstreamStatus finds an HTTP status quoted in a storage or reader error.
var upstreamStatus = regexp.MustCompile(`HTTP [0-9]{3}`)

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

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errFrom maps a service error onto the API error envelope.
func errFrom(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrSurveyNotFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, domain.ErrInvalidSurvey):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrAxisCountTooSmall):
		return newError(c, 400, "axis_count_too_small", err.Error())
	case errors.Is(err, domain.ErrDegenerateGeometry):
		return newError(c, 400, "degenerate_geometry", err.Error())
	}

	if m := upstreamStatus.FindString(err.Error()); m != "" {
		if status, _ := strconv.Atoi(m[len("HTTP "):]); status >= 400 && status < 600 {
			return newError(c, status, "upstream_error", err.Error())
		}
	}
	return errInternal(c, err.Error())
}
