package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimit bounds how often one subject may hit a route group. The key is
// the authenticated user when present and the client address otherwise, so
// the chat relay cannot be drained through one account or one host.
func RateLimit(name string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			subject := ""
			if id, ok := c.Locals("user_id").(string); ok {
				subject = id
			}
			if subject == "" {
				subject = c.IP()
			}
			return fmt.Sprintf("%s:%s", name, subject)
		},
	})
}
