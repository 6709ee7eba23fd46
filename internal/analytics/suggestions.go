package analytics

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/student-insight/backend/internal/storage/models"
)

// SuggestImprovements turns the aggregates into short pieces of study
// advice. Rules, not models: compare assessment components, call out the
// weakest subjects and react to the overall SGPA level.
func SuggestImprovements(h models.StudentHistory) []string {
	if h.TotalSubjects() == 0 {
		return []string{"Upload more data to get personalized suggestions"}
	}

	var suggestions []string

	var ca, ese []float64
	for _, sem := range h.Semesters {
		for _, sub := range sem.Subjects {
			ca = append(ca, sub.ContinuousAssessmentMarks)
			ese = append(ese, sub.EndSemesterMarks)
		}
	}
	meanCA := stat.Mean(ca, nil)
	meanESE := stat.Mean(ese, nil)
	if meanCA < meanESE {
		suggestions = append(suggestions, "Focus on continuous assessment - your end-semester performance is stronger than your internals")
	} else if meanESE < meanCA {
		suggestions = append(suggestions, "Prepare more for end-semester exams - your continuous assessment is strong")
	}

	if weak := weakestSubjects(h, 3); len(weak) > 0 {
		suggestions = append(suggestions, fmt.Sprintf("Focus on improving: %s", strings.Join(weak, ", ")))
	}

	if m := ComputeMetrics(h); m.Available && m.AverageSGPA > 0 {
		if m.AverageSGPA < 6.0 {
			suggestions = append(suggestions, "Consider revisiting study strategies to lift your overall SGPA")
		} else if m.AverageSGPA >= 8.0 {
			suggestions = append(suggestions, "Excellent performance! Maintain consistency across all subjects")
		}
	}

	if len(suggestions) == 0 {
		suggestions = append(suggestions, "Keep up the good work! Continue consistent performance across all subjects")
	}
	return suggestions
}

// weakestSubjects names up to limit subjects whose mean total sits below the
// average of all per-subject means, weakest first.
func weakestSubjects(h models.StudentHistory, limit int) []string {
	standings := subjectMeans(h)
	if len(standings) == 0 {
		return nil
	}

	var sum float64
	for _, s := range standings {
		sum += s.MeanTotalMarks
	}
	mean := sum / float64(len(standings))

	var weak []SubjectStanding
	for _, s := range standings {
		if s.MeanTotalMarks < mean {
			weak = append(weak, s)
		}
	}
	sort.Slice(weak, func(i, j int) bool {
		if weak[i].MeanTotalMarks != weak[j].MeanTotalMarks {
			return weak[i].MeanTotalMarks < weak[j].MeanTotalMarks
		}
		return weak[i].SubjectName < weak[j].SubjectName
	})

	names := make([]string, 0, limit)
	for _, s := range weak {
		if len(names) == limit {
			break
		}
		names = append(names, s.SubjectName)
	}
	return names
}
