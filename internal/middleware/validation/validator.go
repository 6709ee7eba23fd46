package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Subject names are echoed back in reports, so anything that smells like
// markup is rejected outright. SQL is handled by parameterized queries and
// not filtered here; course titles legitimately contain words like "update".
var xssPattern = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)

type Config struct {
	MaxSubjectNameLength int
	AllowedContentTypes  []string
	Logger               *zap.Logger
}

func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxSubjectNameLength == 0 {
		cfg.MaxSubjectNameLength = 120
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json", "multipart/form-data"}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == "POST" || c.Method() == "PUT" {
			contentType := c.Get("Content-Type")
			if contentType != "" {
				allowed := false
				for _, allowedType := range cfg.AllowedContentTypes {
					if strings.Contains(contentType, allowedType) {
						allowed = true
						break
					}
				}
				if !allowed {
					return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
						"error": "Unsupported content type",
					})
				}
			}
		}

		if c.Method() == "POST" && c.Path() == "/api/v1/records" && strings.Contains(c.Get("Content-Type"), "application/json") {
			var req struct {
				Subjects []struct {
					SubjectName string `json:"subject_name"`
				} `json:"subjects"`
			}

			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			for _, sub := range req.Subjects {
				if len(sub.SubjectName) > cfg.MaxSubjectNameLength {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "Subject name exceeds maximum length",
					})
				}
				if xssPattern.MatchString(sub.SubjectName) {
					cfg.Logger.Warn("Rejected suspicious subject name",
						zap.String("ip", c.IP()),
						zap.String("path", c.Path()),
					)
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "Invalid subject name",
					})
				}
			}
		}

		return c.Next()
	}
}
