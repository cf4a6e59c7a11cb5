package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/artem13815/meetups/api/http/presenter"
)

// RateLimit allows max requests per IP per minute. A nil storage keeps the
// counters in process memory.
func RateLimit(max int, storage fiber.Storage) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		Storage:    storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "auth:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return presenter.Error(c, fiber.StatusTooManyRequests, "Too many requests")
		},
	})
}
