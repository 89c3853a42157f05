package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mathmood/diary-api/internal/middleware"
)

func userIDFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(string); ok {
			return strings.TrimSpace(id)
		}
	}
	return ""
}

func userNameFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_name"); v != nil {
		if name, ok := v.(string); ok {
			return name
		}
	}
	return ""
}

func userEmailFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_email"); v != nil {
		if email, ok := v.(string); ok {
			return email
		}
	}
	return ""
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}
