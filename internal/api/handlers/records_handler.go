package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/student-insight/backend/internal/ingestion"
	"github.com/student-insight/backend/internal/insight"
	"github.com/student-insight/backend/internal/metrics"
	"github.com/student-insight/backend/internal/storage/models"
	"github.com/student-insight/backend/internal/storage/sqlite"
	"github.com/student-insight/backend/pkg/config"
	"github.com/student-insight/backend/pkg/logger"
)

// userID reads the identity stored by the auth middleware.
func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

type RecordsHandler struct {
	db           *sqlite.Client
	parser       *ingestion.Parser
	insight      *insight.Service
	maxFileSize  int64
	maxSubjects  int
	maxSemesters int
}

func NewRecordsHandler(db *sqlite.Client, parser *ingestion.Parser, insightService *insight.Service, cfg config.UploadConfig) *RecordsHandler {
	return &RecordsHandler{
		db:           db,
		parser:       parser,
		insight:      insightService,
		maxFileSize:  int64(cfg.MaxFileSize),
		maxSubjects:  cfg.MaxSubjects,
		maxSemesters: cfg.MaxSemesters,
	}
}

// Upload ingests one semester from a CSV marksheet. The semester_index form
// field is required; sgpa comes from the form field or, failing that, the
// SGPA column of the sheet.
func (h *RecordsHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "CSV file is required",
		})
	}

	if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "File exceeds maximum size",
		})
	}

	semesterIndex, err := strconv.Atoi(c.FormValue("semester_index"))
	if err != nil || semesterIndex < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "semester_index must be a positive integer",
		})
	}
	if h.maxSemesters > 0 && semesterIndex > h.maxSemesters {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("semester_index must not exceed %d", h.maxSemesters),
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open upload", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read upload",
		})
	}
	defer file.Close()

	parsed, err := h.parser.ParseCSV(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	sgpa := parsed.SGPA
	if v := c.FormValue("sgpa"); v != "" {
		sgpa, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "sgpa must be a number",
			})
		}
	}
	if sgpa < 0 || sgpa > 10 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "sgpa must be between 0 and 10",
		})
	}

	uid := userID(c)
	record := models.SemesterRecord{
		SemesterIndex: semesterIndex,
		SGPA:          sgpa,
		Subjects:      parsed.Subjects,
		UploadedAt:    time.Now(),
	}

	if err := h.db.UpsertSemester(uid, record); err != nil {
		logger.Error("Failed to store semester", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store semester",
		})
	}

	h.insight.InvalidateReports(c.Context(), uid)

	metrics.SemestersUploaded.WithLabelValues("csv").Inc()
	metrics.SubjectsIngested.Add(float64(len(parsed.Subjects)))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":        "Semester stored",
		"semester_index": semesterIndex,
		"subjects":       len(parsed.Subjects),
		"skipped_rows":   parsed.Skipped,
		"sgpa":           sgpa,
	})
}

// CreateManual stores one semester from a JSON payload, the manual entry
// path.
func (h *RecordsHandler) CreateManual(c *fiber.Ctx) error {
	var req struct {
		SemesterIndex int                    `json:"semester_index"`
		SGPA          float64                `json:"sgpa"`
		Subjects      []models.SubjectRecord `json:"subjects"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.SemesterIndex < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "semester_index must be a positive integer",
		})
	}
	if h.maxSemesters > 0 && req.SemesterIndex > h.maxSemesters {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("semester_index must not exceed %d", h.maxSemesters),
		})
	}
	if req.SGPA < 0 || req.SGPA > 10 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "sgpa must be between 0 and 10",
		})
	}
	if len(req.Subjects) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "At least one subject is required",
		})
	}
	if h.maxSubjects > 0 && len(req.Subjects) > h.maxSubjects {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("subject count must not exceed %d", h.maxSubjects),
		})
	}
	for i := range req.Subjects {
		req.Subjects[i].SubjectName = strings.TrimSpace(req.Subjects[i].SubjectName)
		if req.Subjects[i].SubjectName == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Subject names must not be blank",
			})
		}
	}

	uid := userID(c)
	record := models.SemesterRecord{
		SemesterIndex: req.SemesterIndex,
		SGPA:          req.SGPA,
		Subjects:      req.Subjects,
		UploadedAt:    time.Now(),
	}

	if err := h.db.UpsertSemester(uid, record); err != nil {
		logger.Error("Failed to store semester", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store semester",
		})
	}

	h.insight.InvalidateReports(c.Context(), uid)

	metrics.SemestersUploaded.WithLabelValues("manual").Inc()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":        "Semester stored",
		"semester_index": req.SemesterIndex,
		"subjects":       len(req.Subjects),
	})
}

func (h *RecordsHandler) GetRecords(c *fiber.Ctx) error {
	history, err := h.db.GetStudentHistory(userID(c))
	if err != nil {
		logger.Error("Failed to load history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load records",
		})
	}

	return c.JSON(history)
}

func (h *RecordsHandler) DeleteSemester(c *fiber.Ctx) error {
	semesterIndex, err := strconv.Atoi(c.Params("semesterIndex"))
	if err != nil || semesterIndex < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "semester index must be a positive integer",
		})
	}

	uid := userID(c)
	deleted, err := h.db.DeleteSemester(uid, semesterIndex)
	if err != nil {
		logger.Error("Failed to delete semester", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete semester",
		})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Semester not found",
		})
	}

	h.insight.InvalidateReports(c.Context(), uid)

	return c.JSON(fiber.Map{
		"message":        "Semester deleted",
		"semester_index": semesterIndex,
	})
}

func (h *RecordsHandler) ClearRecords(c *fiber.Ctx) error {
	uid := userID(c)

	if err := h.db.ClearHistory(uid); err != nil {
		logger.Error("Failed to clear history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to clear records",
		})
	}

	h.insight.InvalidateReports(c.Context(), uid)

	return c.JSON(fiber.Map{
		"message": "All records deleted",
	})
}
