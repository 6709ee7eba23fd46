package validation

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(Middleware(cfg))
	app.Post("/api/v1/records", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/api/v1/records", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func postRecords(t *testing.T, app *fiber.App, contentType, body string) int {
	t.Helper()

	req := httptest.NewRequest("POST", "/api/v1/records", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestMiddleware_AllowsCleanPayload(t *testing.T) {
	app := newApp(Config{})

	code := postRecords(t, app, "application/json",
		`{"semester_index":1,"sgpa":8.0,"subjects":[{"subject_name":"Algorithms"}]}`)
	assert.Equal(t, fiber.StatusOK, code)
}

func TestMiddleware_RejectsMarkupInSubjectName(t *testing.T) {
	app := newApp(Config{})

	code := postRecords(t, app, "application/json",
		`{"subjects":[{"subject_name":"<script>alert(1)</script>"}]}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestMiddleware_RejectsOverlongSubjectName(t *testing.T) {
	app := newApp(Config{MaxSubjectNameLength: 10})

	code := postRecords(t, app, "application/json",
		`{"subjects":[{"subject_name":"A Very Long Course Title Indeed"}]}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestMiddleware_RejectsUnknownContentType(t *testing.T) {
	app := newApp(Config{})

	code := postRecords(t, app, "text/xml", `<records/>`)
	assert.Equal(t, fiber.StatusUnsupportedMediaType, code)
}

func TestMiddleware_IgnoresReads(t *testing.T) {
	app := newApp(Config{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/records", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
