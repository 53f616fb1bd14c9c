// Package auth rejects requests that do not carry the configured API key.
package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// Header is the request header holding the API key.
const Header = "X-API-Key"

// Config configures the middleware.
type Config struct {
	// ApiKey is the expected key. Empty disables the check.
	ApiKey string
	// Next skips the check when it returns true.
	Next func(c *fiber.Ctx) bool
}

// New returns the auth handler.
func New(cfg Config) fiber.Handler {
	want := []byte(cfg.ApiKey)
	return func(c *fiber.Ctx) error {
		if len(want) == 0 || (cfg.Next != nil && cfg.Next(c)) {
			return c.Next()
		}
		got := c.Get(Header)
		if got == "" {
			got = c.Query("api_key")
		}
		if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid api key"})
		}
		return c.Next()
	}
}
