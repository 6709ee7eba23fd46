package ratelimit

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type entry struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimiter is a token bucket per caller. Tokens refill continuously at
// RequestsPerMinute and accumulate up to Burst.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	rate    float64
	burst   float64
	logger  *zap.Logger
	done    chan struct{}
}

type Config struct {
	RequestsPerMinute int
	Burst             int
	Logger            *zap.Logger
}

func New(cfg Config) *RateLimiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.RequestsPerMinute
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	rl := &RateLimiter{
		entries: make(map[string]*entry),
		rate:    float64(cfg.RequestsPerMinute) / 60,
		burst:   float64(cfg.Burst),
		logger:  cfg.Logger,
		done:    make(chan struct{}),
	}

	go rl.prune()

	return rl
}

// Middleware buckets by authenticated user when available, falling back to
// the client IP for the auth endpoints.
func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		if userID, ok := c.Locals("user_id").(string); ok && userID != "" {
			key = userID
		}

		if !rl.allow(key, time.Now()) {
			rl.logger.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.String("ip", c.IP()),
				zap.String("path", c.Path()),
			)
			c.Set(fiber.HeaderRetryAfter, "60")
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		}

		return c.Next()
	}
}

func (rl *RateLimiter) allow(key string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, ok := rl.entries[key]
	if !ok {
		e = &entry{tokens: rl.burst}
		rl.entries[key] = e
	} else {
		e.tokens += now.Sub(e.lastSeen).Seconds() * rl.rate
		if e.tokens > rl.burst {
			e.tokens = rl.burst
		}
	}
	e.lastSeen = now

	if e.tokens < 1 {
		return false
	}
	e.tokens--
	return true
}

func (rl *RateLimiter) prune() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-10 * time.Minute)
			rl.mu.Lock()
			for key, e := range rl.entries {
				if e.lastSeen.Before(cutoff) {
					delete(rl.entries, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) Stop() {
	close(rl.done)
}
