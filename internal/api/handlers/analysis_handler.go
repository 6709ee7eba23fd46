package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/student-insight/backend/internal/insight"
	"github.com/student-insight/backend/pkg/logger"
)

type AnalysisHandler struct {
	insight *insight.Service
}

func NewAnalysisHandler(insightService *insight.Service) *AnalysisHandler {
	return &AnalysisHandler{
		insight: insightService,
	}
}

// Analyze returns the full analytics report. Sparse histories still produce
// a 200 with the affected sections marked unavailable.
func (h *AnalysisHandler) Analyze(c *fiber.Ctx) error {
	report, err := h.insight.Analyze(c.Context(), userID(c))
	if err != nil {
		logger.Error("Failed to analyze records", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to analyze records",
		})
	}

	return c.JSON(report)
}
