package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type correlationKeyType struct{}

var correlationKey correlationKeyType

// CorrelationID tags every request with an identifier so one diary
// submission can be traced from the access log through the service logs.
// Incoming X-Correlation-ID or X-Request-ID headers are honored; otherwise
// a fresh uuid is minted. The identifier is echoed back in the response.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get("X-Correlation-ID"))
		if id == "" {
			id = strings.TrimSpace(c.Get("X-Request-ID"))
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals("correlation_id", id)
		c.Set("X-Correlation-ID", id)
		c.SetUserContext(context.WithValue(c.Context(), correlationKey, id))

		return c.Next()
	}
}

// GetCorrelationID returns the identifier bound to the active request, or
// empty when the middleware did not run.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals("correlation_id").(string); ok {
		return id
	}
	return CorrelationIDFromContext(c.Context())
}

// CorrelationIDFromContext reads the identifier from a detached context,
// for code running outside a fiber handler.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(correlationKey).(string); ok {
		return id
	}
	return ""
}
