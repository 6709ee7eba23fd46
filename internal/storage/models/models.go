package models

import "time"

// SubjectRecord is one subject's marks within a semester. Totals are taken
// as supplied by the marksheet and never re-derived from the components.
type SubjectRecord struct {
	SubjectName               string  `json:"subject_name"`
	ContinuousAssessmentMarks float64 `json:"continuous_assessment_marks"`
	EndSemesterMarks          float64 `json:"end_semester_marks"`
	LabMarks                  float64 `json:"lab_marks"`
	TotalMarks                float64 `json:"total_marks"`
}

// SemesterRecord groups the subjects of one semester. SemesterIndex is the
// authoritative chronological key; it is unique within a history and the
// stored order of semesters carries no meaning.
type SemesterRecord struct {
	SemesterIndex int             `json:"semester_index"`
	SGPA          float64         `json:"sgpa"`
	Subjects      []SubjectRecord `json:"subjects"`
	UploadedAt    time.Time       `json:"uploaded_at,omitempty"`
}

// StudentHistory is the unit of input to the analytics engine. The engine
// treats it as an immutable snapshot.
type StudentHistory struct {
	StudentID string           `json:"student_id"`
	Semesters []SemesterRecord `json:"semesters"`
}

// TotalSubjects counts subject rows across all semesters.
func (h StudentHistory) TotalSubjects() int {
	n := 0
	for _, sem := range h.Semesters {
		n += len(sem.Subjects)
	}
	return n
}

type User struct {
	ID           string
	Username     string
	PasswordHash string
	FullName     string
	Email        string
	CreatedAt    time.Time
	LastLogin    *time.Time
}

type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// AnalysisRun records one computed report for auditing and latency tracking.
// The report body itself lives in the cache; runs only keep the content hash.
type AnalysisRun struct {
	ID          string
	UserID      string
	ContentHash string
	Cached      bool
	LatencyMS   int64
	CreatedAt   time.Time
}
