package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	govalidator "github.com/go-playground/validator/v10"

	"github.com/rBrown1405/zentry-pos-sub001/internal/auth"
	"github.com/rBrown1405/zentry-pos-sub001/internal/registration"
	"github.com/rBrown1405/zentry-pos-sub001/internal/registry"
	"github.com/rBrown1405/zentry-pos-sub001/internal/session"
	"github.com/rBrown1405/zentry-pos-sub001/internal/store"
)

// fail maps domain errors onto HTTP status codes with a stable message, so
// backend failure detail never leaks to the client.
func fail(c *fiber.Ctx, err error) error {
	var validationErrs govalidator.ValidationErrors

	switch {
	case errors.As(err, &validationErrs):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "validation failed", "fields": fieldErrors(validationErrs),
		})
	case errors.Is(err, store.ErrBusinessNotFound),
		errors.Is(err, store.ErrPropertyNotFound),
		errors.Is(err, store.ErrStaffNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, session.ErrAccessDenied):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "access denied"})
	case errors.Is(err, session.ErrNotAuthenticated),
		errors.Is(err, auth.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	case errors.Is(err, auth.ErrNotApproved):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "account pending approval"})
	case errors.Is(err, auth.ErrInactive):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "account deactivated"})
	case errors.Is(err, auth.ErrTooManyAttempts):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, try again later"})
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, registry.ErrExhausted),
		errors.Is(err, registration.ErrEmailAlreadyInUse):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict"})
	case errors.Is(err, session.ErrNotReady):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service not ready"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

func fieldErrors(errs govalidator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}
