package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/student-insight/backend/pkg/logger"
)

// Middleware resolves the bearer token and stores user_id and session_token
// in the request locals for the handlers behind it.
func Middleware(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token := ""
		if strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		}

		userID, err := s.ValidateSession(token)
		if err != nil {
			if errors.Is(err, ErrInvalidSession) || errors.Is(err, ErrSessionExpired) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": err.Error(),
				})
			}
			logger.Error("Failed to validate session", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to validate session",
			})
		}

		c.Locals("user_id", userID)
		c.Locals("session_token", token)

		return c.Next()
	}
}
