package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis/v3"
)

// NewLimiterStorage returns a Redis-backed storage for the rate limiter
// when a Redis URL is configured, or nil to fall back to the limiter's
// in-memory storage.
func NewLimiterStorage(redisURL string) fiber.Storage {
	if redisURL == "" {
		return nil
	}
	return redis.New(redis.Config{URL: redisURL})
}

// RateLimiter creates a rate limiting middleware
func RateLimiter(max int, expiration time.Duration, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: expiration,
		Storage:    storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			// Use user ID if authenticated, otherwise use IP
			userID := c.Locals("userID")
			if userID != nil {
				return userID.(string)
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "Too many requests, please try again later",
			})
		},
	})
}

// ModerateRateLimiter for regular API calls
func ModerateRateLimiter(storage fiber.Storage) fiber.Handler {
	return RateLimiter(30, 1*time.Minute, storage)
}

// RelaxedRateLimiter for read-only endpoints
func RelaxedRateLimiter(storage fiber.Storage) fiber.Handler {
	return RateLimiter(100, 1*time.Minute, storage)
}
