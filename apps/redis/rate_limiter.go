package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/log"
	"github.com/gofiber/fiber/v2"
	"github.com/iesreza/stayhub-backend/lib/response"
)

// RateLimitConfig is one endpoint's rate limit rule.
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
	Enabled     bool
}

// DefaultRateLimitConfig applies to endpoints without a stored override.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests: 60,
		Window:      time.Minute,
		Enabled:     true,
	}
}

// Per-endpoint overrides loaded from the settings table.
var rateLimitCache sync.Map

// SetRateLimitConfig installs an override for an endpoint key.
func SetRateLimitConfig(key string, config RateLimitConfig) {
	rateLimitCache.Store(key, config)
}

// GetRateLimitConfig returns the endpoint's rule, default when no override
// is stored.
func GetRateLimitConfig(key string) RateLimitConfig {
	if cached, ok := rateLimitCache.Load(key); ok {
		return cached.(RateLimitConfig)
	}
	return DefaultRateLimitConfig()
}

// ClearRateLimitCache drops all overrides; removed rows fall back to the
// default rule on the next reload.
func ClearRateLimitCache() {
	rateLimitCache = sync.Map{}
	log.Debug("Rate limit overrides cleared")
}

// limitState is the outcome of counting one request against its window.
type limitState struct {
	count int64
	reset time.Duration
}

// countRequest increments the sliding counter for redisKey. The second
// return value is false when Redis failed; the request is then allowed
// through rather than blocked on infrastructure trouble.
func countRequest(redisKey string, window time.Duration) (limitState, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	count, err := Client.Incr(ctx, redisKey).Result()
	if err != nil {
		log.Warning("Rate limit counter unavailable: %v", err)
		return limitState{}, false
	}
	if count == 1 {
		Client.Expire(ctx, redisKey, window)
	}
	ttl, _ := Client.TTL(ctx, redisKey).Result()

	return limitState{count: count, reset: ttl}, true
}

func clientKey(endpoint, ip, forwarded string) string {
	if forwarded != "" {
		ip = forwarded
	}
	return fmt.Sprintf("rate_limit:%s:%s", endpoint, ip)
}

func setLimitHeaders(c *fiber.Ctx, limit int, state limitState) {
	c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
	c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", max(0, limit-int(state.count))))
	c.Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(state.reset).Unix()))
}

func tooManyRequests(c *fiber.Ctx, state limitState) error {
	retryAfter := int(state.reset.Seconds())
	c.Set("Retry-After", fmt.Sprintf("%d", retryAfter))
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error":       "Too many requests",
		"retry_after": retryAfter,
	})
}

// RateLimitMiddleware limits a fiber route by the endpoint's configured
// rule, keyed per client IP.
func RateLimitMiddleware(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IsAvailable() {
			return c.Next()
		}
		config := GetRateLimitConfig(key)
		if !config.Enabled {
			return c.Next()
		}

		state, ok := countRequest(clientKey(key, c.IP(), c.Get("X-Forwarded-For")), config.Window)
		if !ok {
			return c.Next()
		}

		setLimitHeaders(c, config.MaxRequests, state)
		if int(state.count) > config.MaxRequests {
			return tooManyRequests(c, state)
		}
		return c.Next()
	}
}

// RateLimitByIP limits a fiber route with a fixed rule instead of a
// configured endpoint key. Used for public routes like the media proxy.
func RateLimitByIP(maxRequests int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IsAvailable() {
			return c.Next()
		}

		state, ok := countRequest(clientKey("ip", c.IP(), c.Get("X-Forwarded-For")), window)
		if !ok {
			return c.Next()
		}

		setLimitHeaders(c, maxRequests, state)
		if int(state.count) > maxRequests {
			return tooManyRequests(c, state)
		}
		return c.Next()
	}
}

// EvoRateLimitMiddleware is the evo-router variant of RateLimitMiddleware.
func EvoRateLimitMiddleware(key string) func(*evo.Request) error {
	return func(req *evo.Request) error {
		if !IsAvailable() {
			return req.Next()
		}
		config := GetRateLimitConfig(key)
		if !config.Enabled {
			return req.Next()
		}

		state, ok := countRequest(clientKey(key, req.IP(), req.Header("X-Forwarded-For")), config.Window)
		if !ok {
			return req.Next()
		}

		if int(state.count) > config.MaxRequests {
			return response.NewError("too_many_requests", "Too many requests. Please try again later.", 429)
		}
		return req.Next()
	}
}
