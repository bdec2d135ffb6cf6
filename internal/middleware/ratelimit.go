package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// RateLimit returns a fixed-window limiter backed by Redis, keyed by
// client IP and route. It guards the auth endpoints against credential
// stuffing; it is not meant as a general traffic shaper. A nil client or
// a non-positive limit disables the middleware entirely, and Redis errors
// fail open — losing the counter must not take the login page down.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) echo.MiddlewareFunc {
	if rdb == nil || limit <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := fmt.Sprintf("rl:%s:%s", c.RealIP(), c.Path())

			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				log.Printf("[RATELIMIT] incr failed: %v", err)
				return next(c)
			}
			if n == 1 {
				// First hit opens the window.
				if err := rdb.Expire(ctx, key, window).Err(); err != nil {
					log.Printf("[RATELIMIT] expire failed: %v", err)
				}
			}
			if n > int64(limit) {
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "Too many requests"})
			}
			return next(c)
		}
	}
}
