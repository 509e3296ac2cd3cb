package server

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// TokenValidator checks the bearer token header. Token issuing and
// decoding live outside this service; the server only needs a yes/no.
type TokenValidator interface {
	Validate(token string) bool
}

// StaticTokenValidator accepts a single configured token.
type StaticTokenValidator struct {
	Token string
}

// Validate reports whether the presented token matches.
func (v StaticTokenValidator) Validate(token string) bool {
	if v.Token == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(v.Token), []byte(token)) == 1
}

// requireAPIKey rejects requests whose api-key header does not match
// the configured key.
func requireAPIKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		presented := c.Get("api-key")
		if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(presented)) != 1 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "could not validate API key",
			})
		}
		return c.Next()
	}
}

// requireToken rejects requests whose token header fails validation.
func requireToken(v TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !v.Validate(c.Get("token")) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token",
			})
		}
		return c.Next()
	}
}
