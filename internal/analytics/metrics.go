package analytics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/student-insight/backend/internal/storage/models"
)

// ComputeMetrics derives the scalar aggregates of a history. CGPA is always
// the arithmetic mean of semester SGPAs, never stored or supplied.
func ComputeMetrics(h models.StudentHistory) Metrics {
	if len(h.Semesters) == 0 {
		return Metrics{Reason: ReasonNoSemesters}
	}

	sgpas := make([]float64, 0, len(h.Semesters))
	subjects := 0
	for _, sem := range h.Semesters {
		sgpas = append(sgpas, sem.SGPA)
		subjects += len(sem.Subjects)
	}

	mean := stat.Mean(sgpas, nil)
	return Metrics{
		Available:      true,
		AverageSGPA:    mean,
		CGPA:           mean,
		TotalSemesters: len(h.Semesters),
		TotalSubjects:  subjects,
	}
}
