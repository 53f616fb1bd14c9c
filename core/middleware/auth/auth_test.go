package auth_test

import (
	"net/http/httptest"
	"testing"

	"nodegrid/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(cfg auth.Config) *fiber.App {
	app := fiber.New()
	app.Use(auth.New(cfg))
	app.Get("/grid/state", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func TestAuth(t *testing.T) {
	app := newApp(auth.Config{
		ApiKey: "secret",
		Next:   func(c *fiber.Ctx) bool { return c.Path() == "/health" },
	})

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing key", "/grid/state", "", fiber.StatusUnauthorized},
		{"wrong key", "/grid/state", "nope", fiber.StatusUnauthorized},
		{"header key", "/grid/state", "secret", fiber.StatusOK},
		{"query key", "/grid/state?api_key=secret", "", fiber.StatusOK},
		{"skipped path", "/health", "", fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set(auth.Header, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAuthDisabled(t *testing.T) {
	resp, err := newApp(auth.Config{}).Test(httptest.NewRequest("GET", "/grid/state", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
