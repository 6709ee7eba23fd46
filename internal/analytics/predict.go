package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/student-insight/backend/internal/storage/models"
)

// PredictSGPA fits an ordinary least-squares line of SGPA against semester
// index and extrapolates the requested number of future semesters, clamping
// every forecast into the [0,10] grade scale. R-squared rides along as a
// confidence indicator; a weak fit never suppresses the prediction, only a
// short series does.
func PredictSGPA(h models.StudentHistory, horizon int) Prediction {
	semesters := sortedSemesters(h)
	xs := make([]float64, 0, len(semesters))
	ys := make([]float64, 0, len(semesters))
	for _, sem := range semesters {
		xs = append(xs, float64(sem.SemesterIndex))
		ys = append(ys, sem.SGPA)
	}

	if len(xs) < 2 {
		return Prediction{Reason: ReasonTooFewPoints}
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)

	// a flat series is fitted exactly; the usual R-squared ratio would be 0/0
	r2 := 1.0
	if !constant(ys) {
		estimates := make([]float64, len(xs))
		for i, x := range xs {
			estimates[i] = intercept + slope*x
		}
		r2 = stat.RSquaredFrom(estimates, ys, nil)
	}

	last := int(xs[len(xs)-1])
	points := make([]PredictedPoint, 0, horizon)
	for i := 1; i <= horizon; i++ {
		idx := last + i
		points = append(points, PredictedPoint{
			SemesterIndex: idx,
			SGPA:          clampSGPA(intercept + slope*float64(idx)),
		})
	}

	return Prediction{
		Available: true,
		Points:    points,
		Slope:     slope,
		Intercept: intercept,
		RSquared:  r2,
	}
}

func clampSGPA(v float64) float64 {
	return math.Max(0, math.Min(10, v))
}
