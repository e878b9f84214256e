package httpapi

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// anonRateLimit enforces a fixed-window per-minute request cap, keyed
// by client IP, using Redis as the shared counter. When rdb is nil
// (REDIS_URL unset) it degrades to a no-op — Redis is an optional
// accelerator, never a hard dependency for a single-operator instance.
func anonRateLimit(rdb *redis.Client, perMinute int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rdb == nil || perMinute <= 0 {
			return c.Next()
		}

		ctx := c.Context()
		window := time.Now().UTC().Format("200601021504")
		key := fmt.Sprintf("jobsearch:rl:%s:%s", c.IP(), window)

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			// Redis being unreachable should never block requests.
			return c.Next()
		}
		if count == 1 {
			_ = rdb.Expire(ctx, key, time.Minute)
		}
		if count > int64(perMinute) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded, try again later",
			})
		}
		return c.Next()
	}
}
