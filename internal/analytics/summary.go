package analytics

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/student-insight/backend/internal/storage/models"
)

// SummarizeSemesters reports per-semester mark averages alongside the SGPA,
// ordered by semester index.
func SummarizeSemesters(h models.StudentHistory) []SemesterSummary {
	semesters := sortedSemesters(h)
	out := make([]SemesterSummary, 0, len(semesters))
	for _, sem := range semesters {
		s := SemesterSummary{
			SemesterIndex: sem.SemesterIndex,
			SubjectCount:  len(sem.Subjects),
			SGPA:          sem.SGPA,
		}
		if len(sem.Subjects) > 0 {
			var ca, ese, total float64
			for _, sub := range sem.Subjects {
				ca += sub.ContinuousAssessmentMarks
				ese += sub.EndSemesterMarks
				total += sub.TotalMarks
			}
			n := float64(len(sem.Subjects))
			s.MeanCA = ca / n
			s.MeanESE = ese / n
			s.MeanTotal = total / n
		}
		out = append(out, s)
	}
	return out
}

// DescribeMarks produces distribution statistics per mark column across all
// subject rows.
func DescribeMarks(h models.StudentHistory) Statistics {
	columns := [featureCount]struct {
		name   string
		values []float64
	}{
		{name: "continuous_assessment_marks"},
		{name: "end_semester_marks"},
		{name: "lab_marks"},
		{name: "total_marks"},
	}

	for _, sem := range h.Semesters {
		for _, sub := range sem.Subjects {
			columns[0].values = append(columns[0].values, sub.ContinuousAssessmentMarks)
			columns[1].values = append(columns[1].values, sub.EndSemesterMarks)
			columns[2].values = append(columns[2].values, sub.LabMarks)
			columns[3].values = append(columns[3].values, sub.TotalMarks)
		}
	}
	if len(columns[0].values) == 0 {
		return Statistics{Reason: ReasonNoSubjects}
	}

	out := make([]MarkStats, 0, featureCount)
	for _, col := range columns {
		sorted := append([]float64(nil), col.values...)
		sort.Float64s(sorted)

		stats := MarkStats{
			Column: col.name,
			Count:  len(sorted),
			Mean:   stat.Mean(sorted, nil),
			Min:    sorted[0],
			P25:    stat.Quantile(0.25, stat.LinInterp, sorted, nil),
			Median: stat.Quantile(0.5, stat.LinInterp, sorted, nil),
			P75:    stat.Quantile(0.75, stat.LinInterp, sorted, nil),
			Max:    sorted[len(sorted)-1],
		}
		if len(sorted) > 1 {
			stats.Std = stat.StdDev(sorted, nil)
		}
		out = append(out, stats)
	}

	return Statistics{Available: true, Columns: out}
}
