package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mlinyun/Peekpa/pkg/logx"
)

// RateLimit throttles a route group per client IP. Limiter errors let the
// request through.
func RateLimit(limiter RateLimiter, prefix string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}
		ok, err := limiter.Allow(c.Context(), prefix+":"+c.IP())
		if err != nil {
			logx.WithFields(logx.Fields{"error": err.Error(), "ip": c.IP()}).Warn("rate limiter unavailable")
			return c.Next()
		}
		if !ok {
			return ErrRateLimited()
		}
		return c.Next()
	}
}
