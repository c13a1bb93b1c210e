package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Handlers that set their own header win.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.Get(fiber.HeaderCacheControl); existing != "" {
			return err
		}
		if ttl := cacheControlFor(c.Path()); ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}

func cacheControlFor(path string) string {
	switch {
	case path == "/v1/health" || path == "/v1/ready":
		return "public, max-age=10"

	case path == "/metrics":
		return "no-cache"

	case strings.HasPrefix(path, "/v1/sessions"):
		// Session state changes on every step.
		return "no-store"

	case strings.HasPrefix(path, "/v1/locations"):
		// The graph only changes on restart.
		return "public, max-age=3600"

	case path == "/v1/routes":
		return "public, max-age=600"

	case strings.HasPrefix(path, "/docs"):
		return "public, max-age=300"

	case strings.HasPrefix(path, "/v1/"):
		return "public, max-age=60"
	}
	return ""
}
