package reports

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/student-insight/backend/internal/analytics"
	"github.com/student-insight/backend/internal/storage/models"
)

type Type string

const (
	TypeSummary    Type = "summary"
	TypeSemesters  Type = "semesters"
	TypeSubjects   Type = "subjects"
	TypeTranscript Type = "transcript"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

var (
	ErrUnknownType   = errors.New("unknown report type")
	ErrUnknownFormat = errors.New("unknown report format")
	ErrNoRecords     = errors.New("no semester records to report on")
)

type SummarySection struct {
	TotalSemesters int     `json:"total_semesters"`
	TotalSubjects  int     `json:"total_subjects"`
	AverageSGPA    float64 `json:"average_sgpa"`
	CGPA           float64 `json:"cgpa"`
	BestSemester   int     `json:"best_semester"`
	BestSGPA       float64 `json:"best_sgpa"`
	WorstSemester  int     `json:"worst_semester"`
	WorstSGPA      float64 `json:"worst_sgpa"`
}

type SubjectLine struct {
	SubjectName string  `json:"subject_name"`
	MeanCA      float64 `json:"mean_ca"`
	MeanESE     float64 `json:"mean_ese"`
	MeanTotal   float64 `json:"mean_total"`
	BestTotal   float64 `json:"best_total"`
	Appearances int     `json:"appearances"`
}

type TranscriptSemester struct {
	SemesterIndex int                    `json:"semester_index"`
	SGPA          float64                `json:"sgpa"`
	Subjects      []models.SubjectRecord `json:"subjects"`
}

// Document is one rendered-ready report. Only the section matching Type is
// populated.
type Document struct {
	Type        Type                        `json:"type"`
	StudentID   string                      `json:"student_id"`
	StudentName string                      `json:"student_name"`
	GeneratedAt time.Time                   `json:"generated_at"`
	Summary     *SummarySection             `json:"summary,omitempty"`
	Semesters   []analytics.SemesterSummary `json:"semesters,omitempty"`
	Subjects    []SubjectLine               `json:"subjects,omitempty"`
	Transcript  []TranscriptSemester        `json:"transcript,omitempty"`
	CGPA        float64                     `json:"cgpa,omitempty"`
}

// Build assembles the report document for one student. The history must hold
// at least one semester.
func Build(reportType Type, user *models.User, h models.StudentHistory) (*Document, error) {
	if len(h.Semesters) == 0 {
		return nil, ErrNoRecords
	}

	name := user.FullName
	if name == "" {
		name = user.Username
	}

	doc := &Document{
		Type:        reportType,
		StudentID:   h.StudentID,
		StudentName: name,
		GeneratedAt: time.Now(),
	}

	switch reportType {
	case TypeSummary:
		doc.Summary = buildSummary(h)
	case TypeSemesters:
		doc.Semesters = analytics.SummarizeSemesters(h)
	case TypeSubjects:
		doc.Subjects = buildSubjectLines(h)
	case TypeTranscript:
		doc.Transcript = buildTranscript(h)
		doc.CGPA = analytics.ComputeMetrics(h).CGPA
	default:
		return nil, ErrUnknownType
	}

	return doc, nil
}

func buildSummary(h models.StudentHistory) *SummarySection {
	metrics := analytics.ComputeMetrics(h)
	trend := analytics.AnalyzeTrend(h)

	return &SummarySection{
		TotalSemesters: metrics.TotalSemesters,
		TotalSubjects:  metrics.TotalSubjects,
		AverageSGPA:    metrics.AverageSGPA,
		CGPA:           metrics.CGPA,
		BestSemester:   trend.BestSemester.SemesterIndex,
		BestSGPA:       trend.BestSemester.SGPA,
		WorstSemester:  trend.WorstSemester.SemesterIndex,
		WorstSGPA:      trend.WorstSemester.SGPA,
	}
}

func buildSubjectLines(h models.StudentHistory) []SubjectLine {
	type agg struct {
		ca, ese, total, best float64
		count                int
	}

	byName := make(map[string]*agg)
	var names []string

	for _, sem := range h.Semesters {
		for _, sub := range sem.Subjects {
			a, ok := byName[sub.SubjectName]
			if !ok {
				a = &agg{}
				byName[sub.SubjectName] = a
				names = append(names, sub.SubjectName)
			}
			a.ca += sub.ContinuousAssessmentMarks
			a.ese += sub.EndSemesterMarks
			a.total += sub.TotalMarks
			if sub.TotalMarks > a.best {
				a.best = sub.TotalMarks
			}
			a.count++
		}
	}

	sort.Strings(names)

	lines := make([]SubjectLine, 0, len(names))
	for _, name := range names {
		a := byName[name]
		n := float64(a.count)
		lines = append(lines, SubjectLine{
			SubjectName: name,
			MeanCA:      a.ca / n,
			MeanESE:     a.ese / n,
			MeanTotal:   a.total / n,
			BestTotal:   a.best,
			Appearances: a.count,
		})
	}

	return lines
}

func buildTranscript(h models.StudentHistory) []TranscriptSemester {
	semesters := append([]models.SemesterRecord(nil), h.Semesters...)
	sort.Slice(semesters, func(i, j int) bool {
		return semesters[i].SemesterIndex < semesters[j].SemesterIndex
	})

	out := make([]TranscriptSemester, 0, len(semesters))
	for _, sem := range semesters {
		out = append(out, TranscriptSemester{
			SemesterIndex: sem.SemesterIndex,
			SGPA:          sem.SGPA,
			Subjects:      sem.Subjects,
		})
	}

	return out
}

// Render serializes a document, returning the content type and body.
func Render(doc *Document, format Format) (string, []byte, error) {
	switch format {
	case FormatText:
		return "text/plain; charset=utf-8", []byte(renderText(doc)), nil
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return "", nil, fmt.Errorf("failed to marshal report: %w", err)
		}
		return "application/json", data, nil
	case FormatCSV:
		data, err := renderCSV(doc)
		if err != nil {
			return "", nil, err
		}
		return "text/csv", data, nil
	default:
		return "", nil, ErrUnknownFormat
	}
}

func renderText(doc *Document) string {
	var b strings.Builder

	title := map[Type]string{
		TypeSummary:    "Academic Summary",
		TypeSemesters:  "Semester Report",
		TypeSubjects:   "Subject Analysis",
		TypeTranscript: "Complete Transcript",
	}[doc.Type]

	fmt.Fprintf(&b, "%s\n%s\n\n", title, strings.Repeat("=", len(title)))
	fmt.Fprintf(&b, "Student: %s\n", doc.StudentName)
	fmt.Fprintf(&b, "Generated: %s\n\n", doc.GeneratedAt.Format("2006-01-02 15:04"))

	switch doc.Type {
	case TypeSummary:
		s := doc.Summary
		fmt.Fprintf(&b, "Semesters Completed: %d\n", s.TotalSemesters)
		fmt.Fprintf(&b, "Subjects Taken: %d\n\n", s.TotalSubjects)
		fmt.Fprintf(&b, "Average SGPA: %.2f\n", s.AverageSGPA)
		fmt.Fprintf(&b, "CGPA: %.2f\n\n", s.CGPA)
		fmt.Fprintf(&b, "Best Semester: %d (SGPA %.2f)\n", s.BestSemester, s.BestSGPA)
		fmt.Fprintf(&b, "Worst Semester: %d (SGPA %.2f)\n", s.WorstSemester, s.WorstSGPA)

	case TypeSemesters:
		for _, sem := range doc.Semesters {
			fmt.Fprintf(&b, "Semester %d: SGPA %.2f\n", sem.SemesterIndex, sem.SGPA)
			fmt.Fprintf(&b, "- Subjects: %d\n", sem.SubjectCount)
			fmt.Fprintf(&b, "- Average CA: %.2f\n", sem.MeanCA)
			fmt.Fprintf(&b, "- Average ESE: %.2f\n", sem.MeanESE)
			fmt.Fprintf(&b, "- Average Total: %.2f\n\n", sem.MeanTotal)
		}

	case TypeSubjects:
		for _, line := range doc.Subjects {
			fmt.Fprintf(&b, "%s:\n", line.SubjectName)
			fmt.Fprintf(&b, "- Average CA: %.2f\n", line.MeanCA)
			fmt.Fprintf(&b, "- Average ESE: %.2f\n", line.MeanESE)
			fmt.Fprintf(&b, "- Average Total: %.2f\n", line.MeanTotal)
			fmt.Fprintf(&b, "- Best Total: %.2f\n\n", line.BestTotal)
		}

	case TypeTranscript:
		for _, sem := range doc.Transcript {
			fmt.Fprintf(&b, "Semester %d (SGPA %.2f)\n", sem.SemesterIndex, sem.SGPA)
			for _, sub := range sem.Subjects {
				fmt.Fprintf(&b, "- %s: CA %.2f, ESE %.2f, Lab %.2f, Total %.2f\n",
					sub.SubjectName,
					sub.ContinuousAssessmentMarks,
					sub.EndSemesterMarks,
					sub.LabMarks,
					sub.TotalMarks,
				)
			}
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "CGPA: %.2f\n", doc.CGPA)
	}

	return b.String()
}

func renderCSV(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	var err error
	switch doc.Type {
	case TypeSummary:
		s := doc.Summary
		rows := [][]string{
			{"field", "value"},
			{"student", doc.StudentName},
			{"total_semesters", fmt.Sprintf("%d", s.TotalSemesters)},
			{"total_subjects", fmt.Sprintf("%d", s.TotalSubjects)},
			{"average_sgpa", fmt.Sprintf("%.2f", s.AverageSGPA)},
			{"cgpa", fmt.Sprintf("%.2f", s.CGPA)},
			{"best_semester", fmt.Sprintf("%d", s.BestSemester)},
			{"best_sgpa", fmt.Sprintf("%.2f", s.BestSGPA)},
			{"worst_semester", fmt.Sprintf("%d", s.WorstSemester)},
			{"worst_sgpa", fmt.Sprintf("%.2f", s.WorstSGPA)},
		}
		err = w.WriteAll(rows)

	case TypeSemesters:
		rows := [][]string{{"semester_index", "subject_count", "mean_ca", "mean_ese", "mean_total", "sgpa"}}
		for _, sem := range doc.Semesters {
			rows = append(rows, []string{
				fmt.Sprintf("%d", sem.SemesterIndex),
				fmt.Sprintf("%d", sem.SubjectCount),
				fmt.Sprintf("%.2f", sem.MeanCA),
				fmt.Sprintf("%.2f", sem.MeanESE),
				fmt.Sprintf("%.2f", sem.MeanTotal),
				fmt.Sprintf("%.2f", sem.SGPA),
			})
		}
		err = w.WriteAll(rows)

	case TypeSubjects:
		rows := [][]string{{"subject", "mean_ca", "mean_ese", "mean_total", "best_total", "appearances"}}
		for _, line := range doc.Subjects {
			rows = append(rows, []string{
				line.SubjectName,
				fmt.Sprintf("%.2f", line.MeanCA),
				fmt.Sprintf("%.2f", line.MeanESE),
				fmt.Sprintf("%.2f", line.MeanTotal),
				fmt.Sprintf("%.2f", line.BestTotal),
				fmt.Sprintf("%d", line.Appearances),
			})
		}
		err = w.WriteAll(rows)

	case TypeTranscript:
		rows := [][]string{{"semester_index", "subject", "ca_marks", "ese_marks", "lab_marks", "total_marks", "sgpa"}}
		for _, sem := range doc.Transcript {
			for _, sub := range sem.Subjects {
				rows = append(rows, []string{
					fmt.Sprintf("%d", sem.SemesterIndex),
					sub.SubjectName,
					fmt.Sprintf("%.2f", sub.ContinuousAssessmentMarks),
					fmt.Sprintf("%.2f", sub.EndSemesterMarks),
					fmt.Sprintf("%.2f", sub.LabMarks),
					fmt.Sprintf("%.2f", sub.TotalMarks),
					fmt.Sprintf("%.2f", sem.SGPA),
				})
			}
		}
		err = w.WriteAll(rows)

	default:
		return nil, ErrUnknownType
	}

	if err != nil {
		return nil, fmt.Errorf("failed to write CSV report: %w", err)
	}

	return buf.Bytes(), nil
}

// ParseType validates the query-string report type, defaulting to summary.
func ParseType(s string) (Type, error) {
	switch s {
	case "", string(TypeSummary):
		return TypeSummary, nil
	case string(TypeSemesters):
		return TypeSemesters, nil
	case string(TypeSubjects):
		return TypeSubjects, nil
	case string(TypeTranscript):
		return TypeTranscript, nil
	default:
		return "", ErrUnknownType
	}
}

// ParseFormat validates the query-string format, defaulting to text.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", string(FormatText):
		return FormatText, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatCSV):
		return FormatCSV, nil
	default:
		return "", ErrUnknownFormat
	}
}
