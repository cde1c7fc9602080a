package apperrors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies application errors for HTTP translation.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindUnauthorized
	KindDatabase
	KindSlugConflict
	KindInternal
)

// Error is the application error type returned by services. Handlers pass it
// up unchanged; the boundary error handler maps it to a response.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a bad-input or business-rule error.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NotFound creates a missing-record error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Unauthorized creates an authentication error.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Database wraps a storage failure. The original error is kept for logs but
// never exposed to clients.
func Database(err error) *Error {
	return &Error{Kind: KindDatabase, Message: "Database error occurred", Err: err}
}

// SlugConflict marks exhaustion of the slug collision retry loop.
func SlugConflict(slug string) *Error {
	return &Error{Kind: KindSlugConflict, Message: fmt.Sprintf("Could not allocate a unique slug for %q", slug)}
}

// Internal wraps unexpected downstream failures, e.g. the SMS gateway.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// code returns the machine-readable error code for client-side branching.
func (e *Error) code() string {
	switch e.Kind {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindDatabase:
		return "DATABASE_ERROR"
	case KindSlugConflict:
		return "SLUG_CONFLICT"
	default:
		return "INTERNAL_ERROR"
	}
}

// status returns the HTTP status for this error kind.
func (e *Error) status() int {
	switch e.Kind {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindSlugConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler translates errors into JSON responses. It is installed once in
// fiber.Config so handlers never carry per-route status logic.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return c.Status(appErr.status()).JSON(fiber.Map{
			"error": appErr.Message,
			"code":  appErr.code(),
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"error": fiberErr.Message,
			"code":  codeForStatus(fiberErr.Code),
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
		"code":  "INTERNAL_ERROR",
	})
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "VALIDATION_ERROR"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	default:
		return "INTERNAL_ERROR"
	}
}
