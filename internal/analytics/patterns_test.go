package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/student-insight/backend/internal/storage/models"
)

func TestAnalyzePatterns_AssessmentComparison(t *testing.T) {
	// CA well ahead of ESE
	h := history(semester(1, 7.0,
		subject("A", 40, 30, 5, 75),
		subject("B", 38, 28, 5, 71),
	))
	p := AnalyzePatterns(h)
	require.True(t, p.Available)
	assert.Equal(t, "Strong in continuous assessment", p.Assessment)

	// ESE well ahead of CA
	h = history(semester(1, 7.0,
		subject("A", 30, 40, 5, 75),
		subject("B", 28, 38, 5, 71),
	))
	assert.Equal(t, "Better at end-semester exams", AnalyzePatterns(h).Assessment)

	// within the 10% band either way
	h = history(semester(1, 7.0,
		subject("A", 35, 36, 5, 76),
		subject("B", 36, 35, 5, 76),
	))
	assert.Equal(t, "Balanced performance", AnalyzePatterns(h).Assessment)
}

func TestAnalyzePatterns_Consistency(t *testing.T) {
	// tight totals
	h := history(semester(1, 7.0,
		subject("A", 30, 40, 8, 78),
		subject("B", 31, 40, 8, 79),
		subject("C", 30, 41, 8, 80),
	))
	assert.Equal(t, "Very consistent performance", AnalyzePatterns(h).Consistency)

	// widely spread totals
	h = history(semester(1, 7.0,
		subject("A", 36, 46, 9, 95),
		subject("B", 24, 31, 6, 60),
		subject("C", 13, 17, 3, 30),
	))
	assert.Equal(t, "Variable performance across subjects", AnalyzePatterns(h).Consistency)
}

func trendHistory(sgpas ...float64) models.StudentHistory {
	semesters := make([]models.SemesterRecord, len(sgpas))
	for i, sgpa := range sgpas {
		semesters[i] = semester(i+1, sgpa, subject("A", 30, 40, 8, 78))
	}
	return history(semesters...)
}

func TestAnalyzePatterns_TrendBands(t *testing.T) {
	assert.Equal(t, "Improving over time", AnalyzePatterns(trendHistory(6.0, 6.5, 7.0)).Trend)
	assert.Equal(t, "Declining trend", AnalyzePatterns(trendHistory(8.0, 7.5, 7.0)).Trend)
	// slope 0.05 sits inside the stable band
	assert.Equal(t, "Stable performance", AnalyzePatterns(trendHistory(7.0, 7.05, 7.1)).Trend)
}

func TestAnalyzePatterns_SingleSemesterSkipsTrend(t *testing.T) {
	p := AnalyzePatterns(trendHistory(7.0))
	require.True(t, p.Available)
	assert.Empty(t, p.Trend)
}

func TestAnalyzePatterns_NoSubjects(t *testing.T) {
	p := AnalyzePatterns(history(semester(1, 7.0)))
	assert.False(t, p.Available)
	assert.Equal(t, ReasonNoSubjects, p.Reason)
}
