package analytics

import "time"

// Reason codes attached to sections that could not be computed. Insufficient
// data is an expected condition, reported per section, never an error.
const (
	ReasonNoSemesters        = "no_semesters"
	ReasonNoSubjects         = "no_subjects"
	ReasonTooFewPoints       = "too_few_points"
	ReasonTooFewRows         = "too_few_rows"
	ReasonZeroVariance       = "zero_variance"
	ReasonDegenerateFeatures = "degenerate_features"
)

const (
	CategoryHigh   = "High"
	CategoryMedium = "Medium"
	CategoryLow    = "Low"
)

const (
	DirectionImproving = "improving"
	DirectionDeclining = "declining"
	DirectionStable    = "stable"
)

type Metrics struct {
	Available      bool    `json:"available"`
	Reason         string  `json:"reason,omitempty"`
	AverageSGPA    float64 `json:"average_sgpa"`
	CGPA           float64 `json:"cgpa"`
	TotalSemesters int     `json:"total_semesters"`
	TotalSubjects  int     `json:"total_subjects"`
}

type TrendPoint struct {
	SemesterIndex int     `json:"semester_index"`
	SGPA          float64 `json:"sgpa"`
}

type TrendDelta struct {
	FromSemester int     `json:"from_semester"`
	ToSemester   int     `json:"to_semester"`
	Change       float64 `json:"change"`
}

type Trend struct {
	Available        bool         `json:"available"`
	Reason           string       `json:"reason,omitempty"`
	Points           []TrendPoint `json:"points,omitempty"`
	Deltas           []TrendDelta `json:"deltas,omitempty"`
	BestSemester     TrendPoint   `json:"best_semester"`
	WorstSemester    TrendPoint   `json:"worst_semester"`
	RecentDirection  string       `json:"recent_direction,omitempty"`
	OverallDirection string       `json:"overall_direction,omitempty"`
}

type SubjectStanding struct {
	SubjectName    string  `json:"subject_name"`
	MeanTotalMarks float64 `json:"mean_total_marks"`
	Category       string  `json:"category"`
}

type Classification struct {
	Available     bool              `json:"available"`
	Reason        string            `json:"reason,omitempty"`
	Subjects      []SubjectStanding `json:"subjects,omitempty"`
	LowThreshold  float64           `json:"low_threshold"`
	HighThreshold float64           `json:"high_threshold"`
}

type Correlation struct {
	Available   bool    `json:"available"`
	Reason      string  `json:"reason,omitempty"`
	Coefficient float64 `json:"coefficient"`
	Slope       float64 `json:"slope"`
	Intercept   float64 `json:"intercept"`
	SampleSize  int     `json:"sample_size"`
}

type ClusterAssignment struct {
	SubjectName   string `json:"subject_name"`
	SemesterIndex int    `json:"semester_index"`
	Cluster       int    `json:"cluster"`
}

type Clustering struct {
	Available   bool                `json:"available"`
	Reason      string              `json:"reason,omitempty"`
	Assignments []ClusterAssignment `json:"assignments,omitempty"`
	Centroids   [][]float64         `json:"centroids,omitempty"`
}

type ProjectedPoint struct {
	SubjectName   string  `json:"subject_name"`
	SemesterIndex int     `json:"semester_index"`
	PC1           float64 `json:"pc1"`
	PC2           float64 `json:"pc2"`
}

type Projection struct {
	Available         bool             `json:"available"`
	Reason            string           `json:"reason,omitempty"`
	Points            []ProjectedPoint `json:"points,omitempty"`
	ExplainedVariance float64          `json:"explained_variance"`
}

type PredictedPoint struct {
	SemesterIndex int     `json:"semester_index"`
	SGPA          float64 `json:"sgpa"`
}

type Prediction struct {
	Available bool             `json:"available"`
	Reason    string           `json:"reason,omitempty"`
	Points    []PredictedPoint `json:"points,omitempty"`
	Slope     float64          `json:"slope"`
	Intercept float64          `json:"intercept"`
	RSquared  float64          `json:"r_squared"`
}

type SemesterSummary struct {
	SemesterIndex int     `json:"semester_index"`
	SubjectCount  int     `json:"subject_count"`
	MeanCA        float64 `json:"mean_ca"`
	MeanESE       float64 `json:"mean_ese"`
	MeanTotal     float64 `json:"mean_total"`
	SGPA          float64 `json:"sgpa"`
}

type MarkStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	P25    float64 `json:"p25"`
	Median float64 `json:"median"`
	P75    float64 `json:"p75"`
	Max    float64 `json:"max"`
}

type Statistics struct {
	Available bool        `json:"available"`
	Reason    string      `json:"reason,omitempty"`
	Columns   []MarkStats `json:"columns,omitempty"`
}

type Patterns struct {
	Available   bool   `json:"available"`
	Reason      string `json:"reason,omitempty"`
	Assessment  string `json:"assessment,omitempty"`
	Consistency string `json:"consistency,omitempty"`
	Trend       string `json:"trend,omitempty"`
}

// Report is the composed output of one Analyze call. Sections are
// independent: each carries its own availability flag so an unavailable
// section never hides the others.
type Report struct {
	StudentID         string            `json:"student_id"`
	GeneratedAt       time.Time         `json:"generated_at,omitempty"`
	Metrics           Metrics           `json:"metrics"`
	Trend             Trend             `json:"trend"`
	Classification    Classification    `json:"subject_classification"`
	Correlation       Correlation       `json:"correlation"`
	Clusters          Clustering        `json:"clusters"`
	Projection        Projection        `json:"projection"`
	Prediction        Prediction        `json:"prediction"`
	SemesterSummaries []SemesterSummary `json:"semester_summaries,omitempty"`
	Statistics        Statistics        `json:"statistics"`
	Patterns          Patterns          `json:"patterns"`
	Suggestions       []string          `json:"suggestions,omitempty"`
}
