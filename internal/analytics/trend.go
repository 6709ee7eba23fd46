package analytics

import (
	"github.com/student-insight/backend/internal/storage/models"
)

// AnalyzeTrend builds the ordered SGPA series with semester-over-semester
// deltas and the best/worst semesters. Ties go to the lowest semester index.
func AnalyzeTrend(h models.StudentHistory) Trend {
	if len(h.Semesters) == 0 {
		return Trend{Reason: ReasonNoSemesters}
	}

	semesters := sortedSemesters(h)
	points := make([]TrendPoint, len(semesters))
	for i, sem := range semesters {
		points[i] = TrendPoint{SemesterIndex: sem.SemesterIndex, SGPA: sem.SGPA}
	}

	// strict comparisons while scanning in index order keep the earliest
	// semester on ties
	best, worst := points[0], points[0]
	for _, p := range points[1:] {
		if p.SGPA > best.SGPA {
			best = p
		}
		if p.SGPA < worst.SGPA {
			worst = p
		}
	}

	deltas := make([]TrendDelta, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		deltas = append(deltas, TrendDelta{
			FromSemester: points[i-1].SemesterIndex,
			ToSemester:   points[i].SemesterIndex,
			Change:       points[i].SGPA - points[i-1].SGPA,
		})
	}

	t := Trend{
		Available:        true,
		Points:           points,
		Deltas:           deltas,
		BestSemester:     best,
		WorstSemester:    worst,
		RecentDirection:  DirectionStable,
		OverallDirection: DirectionStable,
	}
	if len(points) >= 2 {
		t.RecentDirection = direction(points[len(points)-1].SGPA - points[len(points)-2].SGPA)
		t.OverallDirection = direction(points[len(points)-1].SGPA - points[0].SGPA)
	}
	return t
}

func direction(change float64) string {
	switch {
	case change > 0:
		return DirectionImproving
	case change < 0:
		return DirectionDeclining
	default:
		return DirectionStable
	}
}
