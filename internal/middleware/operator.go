package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mathmood/diary-api/internal/identity"
	"github.com/mathmood/diary-api/internal/utils"
)

// OperatorOnly rejects requests whose authenticated subject is not on the
// configured operator list. It must run after JWTProtected.
func OperatorOnly(classifier *identity.Classifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := userIDValue(c)
		if userID == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		if !classifier.IsOperator(userID) {
			return utils.SendError(c, fiber.StatusForbidden, "operator access required")
		}

		return c.Next()
	}
}

func userIDValue(c *fiber.Ctx) string {
	if value := c.Locals("user_id"); value != nil {
		if id, ok := value.(string); ok {
			return strings.TrimSpace(id)
		}
	}
	return ""
}
