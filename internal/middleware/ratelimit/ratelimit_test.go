package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow_BurstThenBlocks(t *testing.T) {
	rl := New(Config{RequestsPerMinute: 60, Burst: 3})
	defer rl.Stop()

	now := time.Now()
	for i := 0; i < 3; i++ {
		assert.True(t, rl.allow("alice", now))
	}
	assert.False(t, rl.allow("alice", now))
}

func TestAllow_RefillsOverTime(t *testing.T) {
	rl := New(Config{RequestsPerMinute: 60, Burst: 1})
	defer rl.Stop()

	now := time.Now()
	require.True(t, rl.allow("alice", now))
	require.False(t, rl.allow("alice", now))

	assert.True(t, rl.allow("alice", now.Add(time.Second)))
	assert.False(t, rl.allow("alice", now.Add(time.Second)))
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	rl := New(Config{RequestsPerMinute: 60, Burst: 1})
	defer rl.Stop()

	now := time.Now()
	assert.True(t, rl.allow("alice", now))
	assert.True(t, rl.allow("bob", now))
	assert.False(t, rl.allow("alice", now))
}

func TestMiddleware_Returns429WhenExhausted(t *testing.T) {
	rl := New(Config{RequestsPerMinute: 60, Burst: 1})
	defer rl.Stop()

	app := fiber.New()
	app.Use(rl.Middleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get(fiber.HeaderRetryAfter))
}

func TestMiddleware_BucketsByUser(t *testing.T) {
	rl := New(Config{RequestsPerMinute: 60, Burst: 1})
	defer rl.Stop()

	user := "alice"
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", user)
		return c.Next()
	})
	app.Use(rl.Middleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	// a different user gets their own bucket
	user = "bob"
	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
