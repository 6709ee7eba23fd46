package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/student-insight/backend/internal/storage/models"
	"github.com/student-insight/backend/pkg/logger"
)

var (
	ErrMissingSubjectColumn = errors.New("missing required Subject column")
	ErrNoSubjectRows        = errors.New("no subject rows found")
)

// ParsedSemester is the result of one marksheet upload. SGPA carries the
// first non-zero value of the optional SGPA column, 0 when the column is
// absent; callers may override it from the request.
type ParsedSemester struct {
	Subjects []models.SubjectRecord
	SGPA     float64
	Skipped  int
}

type Parser struct {
	maxSubjects int
}

// NewParser caps the number of subject rows per upload; maxSubjects <= 0
// disables the cap.
func NewParser(maxSubjects int) *Parser {
	return &Parser{maxSubjects: maxSubjects}
}

// ParseCSV reads a marksheet. The header row must name a Subject column;
// CA_Marks, ESE_Marks, Lab_Marks, Total and SGPA are optional and default to
// 0 when absent. Non-numeric cells coerce to 0 and rows with a blank subject
// are dropped.
func (p *Parser) ParseCSV(r io.Reader) (*ParsedSemester, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoSubjectRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	subjectCol, ok := columns["Subject"]
	if !ok {
		return nil, ErrMissingSubjectColumn
	}

	result := &ParsedSemester{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		name := strings.TrimSpace(cell(row, subjectCol))
		if name == "" {
			result.Skipped++
			continue
		}

		result.Subjects = append(result.Subjects, models.SubjectRecord{
			SubjectName:               name,
			ContinuousAssessmentMarks: mark(row, columns, "CA_Marks"),
			EndSemesterMarks:          mark(row, columns, "ESE_Marks"),
			LabMarks:                  mark(row, columns, "Lab_Marks"),
			TotalMarks:                mark(row, columns, "Total"),
		})

		if result.SGPA == 0 {
			result.SGPA = mark(row, columns, "SGPA")
		}

		if p.maxSubjects > 0 && len(result.Subjects) > p.maxSubjects {
			return nil, fmt.Errorf("too many subject rows: limit is %d", p.maxSubjects)
		}
	}

	if len(result.Subjects) == 0 {
		return nil, ErrNoSubjectRows
	}

	logger.Debug("Marksheet parsed",
		zap.Int("subjects", len(result.Subjects)),
		zap.Int("skipped", result.Skipped),
	)

	return result, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// mark resolves an optional numeric column; absent columns and non-numeric
// cells both read as 0.
func mark(row []string, columns map[string]int, name string) float64 {
	i, ok := columns[name]
	if !ok {
		return 0
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(cell(row, i)), 64)
	if err != nil {
		return 0
	}

	return v
}
