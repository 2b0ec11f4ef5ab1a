package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v3"
)

// TokenHeader carries the static labeler shared secret.
const TokenHeader = "X-Manual-Labeler-Token"

// NewLabelerAuth rejects requests whose token header does not match the
// configured secret. An unset server token rejects everything: auth runs
// before any business logic.
func NewLabelerAuth(token string) fiber.Handler {
	return func(c fiber.Ctx) error {
		supplied := c.Get(TokenHeader)
		if token == "" || supplied == "" ||
			subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"ok":    false,
				"error": "unauthorized",
			})
		}
		return c.Next()
	}
}
