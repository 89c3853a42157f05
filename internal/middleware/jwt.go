package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/mathmood/diary-api/internal/utils"
)

// JWTProtected returns a middleware that validates JWT bearer tokens and
// binds the subject ID to the request. Subjects are opaque strings; numeric
// claims from older tokens are normalized to their decimal form.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		userID := extractUserIDFromClaims(claims)
		if userID == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "token has no subject")
		}
		c.Locals("user_id", userID)

		if name := stringClaim(claims, "name"); name != "" {
			c.Locals("user_name", name)
		}
		if email := stringClaim(claims, "email"); email != "" {
			c.Locals("user_email", email)
		}

		return c.Next()
	}
}

func extractUserIDFromClaims(claims jwt.MapClaims) string {
	keys := []string{"sub", "user_id", "id"}
	for _, key := range keys {
		if value, ok := claims[key]; ok {
			if id := normalizeUserID(value); id != "" {
				return id
			}
		}
	}

	return ""
}

func normalizeUserID(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v < 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		if v < 0 {
			return ""
		}
		return strconv.Itoa(v)
	default:
		return ""
	}
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if value, ok := claims[key]; ok {
		if str, ok := value.(string); ok {
			return strings.TrimSpace(str)
		}
	}
	return ""
}
