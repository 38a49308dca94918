package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"storefront/internal/apperrors"
)

// RequestError is a malformed or invalid request body. Fields maps each
// offending field to the reason it failed.
type RequestError struct {
	Message string
	Fields  map[string]string
}

func (e *RequestError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for field, reason := range e.Fields {
		parts = append(parts, field+": "+reason)
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

func (e *RequestError) Unwrap() error { return apperrors.ErrInvalidRequest }

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &RequestError{Message: "Validation failed", Fields: map[string]string{"body": err.Error()}}
	}
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return &RequestError{Message: "Validation failed", Fields: fields}
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidRequest),
		errors.Is(err, apperrors.ErrInvalidState),
		errors.Is(err, apperrors.ErrNotPaid),
		errors.Is(err, apperrors.ErrAlreadyFinalized),
		errors.Is(err, apperrors.ErrConflict):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders every error returned by a handler or middleware.
// Unknown errors are logged and answered with a bare 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		body := fiber.Map{"message": reqErr.Message, "code": "invalid_request"}
		if len(reqErr.Fields) > 0 {
			body["errors"] = reqErr.Fields
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
	}

	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("unhandled error")
		return c.Status(status).JSON(fiber.Map{"message": "Server Error"})
	}

	code := apperrors.Code(err)
	log.Debug().Err(err).Str("path", c.Path()).Int("status", status).Msg("request failed")
	return c.Status(status).JSON(fiber.Map{"message": err.Error(), "code": code})
}
