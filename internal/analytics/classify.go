package analytics

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/student-insight/backend/internal/storage/models"
)

// subjectMeans averages total marks per distinct subject across semesters,
// in first-appearance order.
func subjectMeans(h models.StudentHistory) []SubjectStanding {
	type acc struct {
		sum   float64
		count int
	}
	totals := make(map[string]*acc)
	var order []string
	for _, sem := range h.Semesters {
		for _, sub := range sem.Subjects {
			a, ok := totals[sub.SubjectName]
			if !ok {
				a = &acc{}
				totals[sub.SubjectName] = a
				order = append(order, sub.SubjectName)
			}
			a.sum += sub.TotalMarks
			a.count++
		}
	}

	standings := make([]SubjectStanding, 0, len(order))
	for _, name := range order {
		a := totals[name]
		standings = append(standings, SubjectStanding{
			SubjectName:    name,
			MeanTotalMarks: a.sum / float64(a.count),
		})
	}
	return standings
}

// ClassifySubjects groups subject records by name, averages their totals and
// labels each subject High/Medium/Low against percentile cut points taken
// from this student's own distribution of per-subject means. With few
// distinct subjects the boundaries collapse and one category can swallow
// everything; that is expected, not an error.
func ClassifySubjects(h models.StudentHistory, lowPct, highPct float64) Classification {
	standings := subjectMeans(h)
	if len(standings) == 0 {
		return Classification{Reason: ReasonNoSubjects}
	}

	means := make([]float64, 0, len(standings))
	for _, s := range standings {
		means = append(means, s.MeanTotalMarks)
	}

	sort.Float64s(means)
	low := stat.Quantile(lowPct/100, stat.LinInterp, means, nil)
	high := stat.Quantile(highPct/100, stat.LinInterp, means, nil)

	for i := range standings {
		standings[i].Category = categorize(standings[i].MeanTotalMarks, low, high)
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].MeanTotalMarks != standings[j].MeanTotalMarks {
			return standings[i].MeanTotalMarks > standings[j].MeanTotalMarks
		}
		return standings[i].SubjectName < standings[j].SubjectName
	})

	return Classification{
		Available:     true,
		Subjects:      standings,
		LowThreshold:  low,
		HighThreshold: high,
	}
}

func categorize(mean, low, high float64) string {
	switch {
	case mean >= high:
		return CategoryHigh
	case mean < low:
		return CategoryLow
	default:
		return CategoryMedium
	}
}
