package analytics

import (
	"errors"
	"fmt"

	"github.com/student-insight/backend/internal/storage/models"
)

// ErrInvalidConfig marks a caller configuration error, as opposed to the
// per-section insufficiency reasons which describe the student's data.
var ErrInvalidConfig = errors.New("invalid analytics configuration")

type Config struct {
	ClusterCount      int     `json:"cluster_count"`
	PredictionHorizon int     `json:"prediction_horizon"`
	LowPercentile     float64 `json:"low_percentile"`
	HighPercentile    float64 `json:"high_percentile"`
}

func DefaultConfig() Config {
	return Config{
		ClusterCount:      3,
		PredictionHorizon: 1,
		LowPercentile:     33,
		HighPercentile:    67,
	}
}

func (c Config) validate() error {
	if c.ClusterCount <= 0 {
		return fmt.Errorf("%w: cluster count must be positive, got %d", ErrInvalidConfig, c.ClusterCount)
	}
	if c.PredictionHorizon <= 0 {
		return fmt.Errorf("%w: prediction horizon must be positive, got %d", ErrInvalidConfig, c.PredictionHorizon)
	}
	if c.LowPercentile <= 0 || c.HighPercentile >= 100 || c.LowPercentile >= c.HighPercentile {
		return fmt.Errorf("%w: percentiles must satisfy 0 < low < high < 100, got %.1f/%.1f",
			ErrInvalidConfig, c.LowPercentile, c.HighPercentile)
	}
	return nil
}

// Engine fans a single immutable history out to every analyzer and composes
// the report. Analyzers are independent pure functions; one section running
// short on data never blocks another, and the whole computation is
// deterministic regardless of execution order.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) Analyze(history models.StudentHistory) Report {
	return Report{
		StudentID:         history.StudentID,
		Metrics:           ComputeMetrics(history),
		Trend:             AnalyzeTrend(history),
		Classification:    ClassifySubjects(history, e.cfg.LowPercentile, e.cfg.HighPercentile),
		Correlation:       AnalyzeCorrelation(history),
		Clusters:          ClusterSubjects(history, e.cfg.ClusterCount),
		Projection:        ProjectSubjects(history),
		Prediction:        PredictSGPA(history, e.cfg.PredictionHorizon),
		SemesterSummaries: SummarizeSemesters(history),
		Statistics:        DescribeMarks(history),
		Patterns:          AnalyzePatterns(history),
		Suggestions:       SuggestImprovements(history),
	}
}
