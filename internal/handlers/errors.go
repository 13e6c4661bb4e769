package handlers

import (
	"errors"
	"fmt"

	"gym/internal/services"
	"gym/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var errForbidden = errors.New("forbidden")

// requestError is a malformed request rejected before reaching a service.
type requestError struct {
	message string
	err     error
	fields  map[string]string
}

func (e *requestError) Error() string {
	return fmt.Sprintf("%s: %v", e.message, e.err)
}

func (e *requestError) Unwrap() error { return e.err }

func badBody(err error) error {
	return &requestError{message: "Invalid request body", err: err}
}

func badQuery(param string, err error) error {
	return &requestError{message: fmt.Sprintf("Invalid query parameter '%s'", param), err: err}
}

func validationFailed(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &requestError{message: "Validation failed", err: err}
	}
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return &requestError{message: "Validation failed", err: err, fields: fields}
}

// respondError maps an error to its HTTP status: 400 for rejected input, 404
// for unknown references, 401 for failed authentication, 403 for acting on
// behalf of someone else and 500 for everything else. Only client errors echo
// the cause; 500s are logged instead.
func respondError(c *fiber.Ctx, log logger.Logger, message string, err error) error {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		body := fiber.Map{"message": reqErr.message, "error": reqErr.err.Error()}
		if reqErr.fields != nil {
			body["errors"] = reqErr.fields
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case errors.Is(err, services.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": message, "error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": message, "error": err.Error()})
	case errors.Is(err, services.ErrAuthentication):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": message, "error": err.Error()})
	case errors.Is(err, errForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": message, "error": err.Error()})
	default:
		log.InternalError(message, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": message})
	}
}
