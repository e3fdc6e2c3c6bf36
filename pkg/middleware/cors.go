package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type corsMiddleware struct {
	allowOrigins []string
	allowMethods string
	allowHeaders string
	maxAge       string
}

// NewCORSMiddleware lets browser dashboards on allowOrigins call the API.
// An origin of "*" allows any origin.
func NewCORSMiddleware(allowOrigins []string) Middleware {
	return &corsMiddleware{
		allowOrigins: allowOrigins,
		allowMethods: strings.Join([]string{fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions}, ", "),
		allowHeaders: "Authorization, Content-Type",
		maxAge:       "600",
	}
}

func (m *corsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		if origin == "" || !m.allowed(origin) {
			return c.Next()
		}

		c.Vary(fiber.HeaderOrigin)
		c.Set(fiber.HeaderAccessControlAllowOrigin, origin)

		if c.Method() == fiber.MethodOptions && c.Get(fiber.HeaderAccessControlRequestMethod) != "" {
			c.Set(fiber.HeaderAccessControlAllowMethods, m.allowMethods)
			if reqHeaders := c.Get(fiber.HeaderAccessControlRequestHeaders); reqHeaders != "" {
				c.Set(fiber.HeaderAccessControlAllowHeaders, reqHeaders)
			} else {
				c.Set(fiber.HeaderAccessControlAllowHeaders, m.allowHeaders)
			}
			c.Set(fiber.HeaderAccessControlMaxAge, m.maxAge)
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

func (m *corsMiddleware) allowed(origin string) bool {
	for _, o := range m.allowOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}
