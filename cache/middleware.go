package cache

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
)

// Middleware caches whole GET responses for expiration. The cache key covers
// method, path and raw query string, so reordered query parameters miss.
func Middleware(expiration time.Duration) fiber.Handler {
	if expiration <= 0 {
		expiration = time.Second
	}

	return cache.New(cache.Config{
		Expiration: expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			queryString := string(c.Request().URI().QueryString())
			if queryString != "" {
				return c.Method() + ":" + c.Path() + "?" + queryString
			}
			return c.Method() + ":" + c.Path()
		},
	})
}
