// Package rayid tags every request with a ray id for log correlation.
package rayid

import (
	"nodegrid/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Header carries the ray id on requests and responses.
const Header = "X-Ray-ID"

// New returns the handler. An incoming ray id is kept; otherwise a new UUID is
// generated. The id is stored under logger.RayIDKey and echoed in the response.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(Header)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals(logger.RayIDKey, rid)
		c.Set(Header, rid)
		return c.Next()
	}
}
