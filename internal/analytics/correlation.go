package analytics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/student-insight/backend/internal/storage/models"
)

// AnalyzeCorrelation relates continuous-assessment marks to end-semester
// marks across every subject row: Pearson coefficient plus a least-squares
// line for the regression overlay. A constant series in either dimension
// yields an undefined result instead of a degenerate fit.
func AnalyzeCorrelation(h models.StudentHistory) Correlation {
	var ca, ese []float64
	for _, sem := range h.Semesters {
		for _, sub := range sem.Subjects {
			ca = append(ca, sub.ContinuousAssessmentMarks)
			ese = append(ese, sub.EndSemesterMarks)
		}
	}

	if len(ca) < 2 {
		return Correlation{Reason: ReasonTooFewPoints, SampleSize: len(ca)}
	}
	if constant(ca) || constant(ese) {
		return Correlation{Reason: ReasonZeroVariance, SampleSize: len(ca)}
	}

	intercept, slope := stat.LinearRegression(ca, ese, nil, false)
	return Correlation{
		Available:   true,
		Coefficient: stat.Correlation(ca, ese, nil),
		Slope:       slope,
		Intercept:   intercept,
		SampleSize:  len(ca),
	}
}
