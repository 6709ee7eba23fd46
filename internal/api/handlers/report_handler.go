package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/student-insight/backend/internal/metrics"
	"github.com/student-insight/backend/internal/reports"
	"github.com/student-insight/backend/internal/storage/sqlite"
	"github.com/student-insight/backend/pkg/logger"
)

type ReportHandler struct {
	db *sqlite.Client
}

func NewReportHandler(db *sqlite.Client) *ReportHandler {
	return &ReportHandler{
		db: db,
	}
}

// GetReport renders a report document. Type defaults to summary and format
// to text; CSV responses are served as downloads.
func (h *ReportHandler) GetReport(c *fiber.Ctx) error {
	reportType, err := reports.ParseType(c.Query("type"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	format, err := reports.ParseFormat(c.Query("format"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	uid := userID(c)

	user, err := h.db.GetUserByID(uid)
	if err != nil {
		logger.Error("Failed to load user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate report",
		})
	}
	if user == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	history, err := h.db.GetStudentHistory(uid)
	if err != nil {
		logger.Error("Failed to load history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate report",
		})
	}

	doc, err := reports.Build(reportType, user, history)
	if err != nil {
		if errors.Is(err, reports.ErrNoRecords) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		logger.Error("Failed to build report", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate report",
		})
	}

	contentType, body, err := reports.Render(doc, format)
	if err != nil {
		logger.Error("Failed to render report", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate report",
		})
	}

	metrics.ReportsGenerated.WithLabelValues(string(reportType), string(format)).Inc()

	c.Set(fiber.HeaderContentType, contentType)
	if format == reports.FormatCSV {
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("report_%s.csv", reportType)))
	}

	return c.Send(body)
}
