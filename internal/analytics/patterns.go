package analytics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/student-insight/backend/internal/storage/models"
)

// AnalyzePatterns derives qualitative performance patterns: where the
// student scores better between continuous assessment and end-semester
// exams, how consistent the totals are, and the direction of the SGPA
// trend line.
func AnalyzePatterns(h models.StudentHistory) Patterns {
	var ca, ese, total []float64
	for _, sem := range h.Semesters {
		for _, sub := range sem.Subjects {
			ca = append(ca, sub.ContinuousAssessmentMarks)
			ese = append(ese, sub.EndSemesterMarks)
			total = append(total, sub.TotalMarks)
		}
	}
	if len(total) == 0 {
		return Patterns{Reason: ReasonNoSubjects}
	}

	p := Patterns{Available: true}

	meanCA := stat.Mean(ca, nil)
	meanESE := stat.Mean(ese, nil)
	switch {
	case meanCA > meanESE*1.1:
		p.Assessment = "Strong in continuous assessment"
	case meanESE > meanCA*1.1:
		p.Assessment = "Better at end-semester exams"
	default:
		p.Assessment = "Balanced performance"
	}

	if len(total) >= 2 {
		meanTotal := stat.Mean(total, nil)
		cv := 0.0
		if meanTotal > 0 {
			cv = stat.StdDev(total, nil) / meanTotal
		}
		switch {
		case cv < 0.15:
			p.Consistency = "Very consistent performance"
		case cv < 0.25:
			p.Consistency = "Moderately consistent"
		default:
			p.Consistency = "Variable performance across subjects"
		}
	}

	if len(h.Semesters) >= 2 {
		semesters := sortedSemesters(h)
		xs := make([]float64, len(semesters))
		ys := make([]float64, len(semesters))
		for i, sem := range semesters {
			xs[i] = float64(sem.SemesterIndex)
			ys[i] = sem.SGPA
		}
		_, slope := stat.LinearRegression(xs, ys, nil, false)
		switch {
		case slope > 0.1:
			p.Trend = "Improving over time"
		case slope < -0.1:
			p.Trend = "Declining trend"
		default:
			p.Trend = "Stable performance"
		}
	}

	return p
}
