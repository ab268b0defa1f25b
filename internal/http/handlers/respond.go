package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"mintmart/internal/domain"
	applog "mintmart/internal/log"
)

// ensureSID gives every browser a stable cart session cookie.
func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return sid
}

// fail maps domain errors onto HTTP statuses without leaking internals.
func fail(c *fiber.Ctx, action string, err error) error {
	status := fiber.StatusInternalServerError
	msg := "something went wrong, please try again"

	switch {
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrEmptyCart):
		status, msg = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		status, msg = fiber.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrCancelNotAllowed):
		status, msg = fiber.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrOracleUnavailable):
		status, msg = fiber.StatusServiceUnavailable, "ownership check unavailable, retry shortly"
	}

	if status == fiber.StatusInternalServerError {
		applog.Error(c, action, err, nil)
	} else {
		applog.Warn(c, action, map[string]any{"error": err.Error()})
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
