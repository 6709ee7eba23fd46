package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, input string) *ParsedSemester {
	t.Helper()

	result, err := NewParser(0).ParseCSV(strings.NewReader(input))
	require.NoError(t, err)

	return result
}

func TestParseCSV_FullHeader(t *testing.T) {
	result := parse(t, `Subject,CA_Marks,ESE_Marks,Lab_Marks,Total,SGPA
Algorithms,32,40,8,80,7.5
Databases,28,36,6,70,7.5
`)

	require.Len(t, result.Subjects, 2)
	assert.Equal(t, "Algorithms", result.Subjects[0].SubjectName)
	assert.InDelta(t, 32.0, result.Subjects[0].ContinuousAssessmentMarks, 1e-9)
	assert.InDelta(t, 40.0, result.Subjects[0].EndSemesterMarks, 1e-9)
	assert.InDelta(t, 8.0, result.Subjects[0].LabMarks, 1e-9)
	assert.InDelta(t, 80.0, result.Subjects[0].TotalMarks, 1e-9)
	assert.InDelta(t, 7.5, result.SGPA, 1e-9)
	assert.Zero(t, result.Skipped)
}

func TestParseCSV_OptionalColumnsDefaultToZero(t *testing.T) {
	result := parse(t, `Subject,Total
Algorithms,80
`)

	require.Len(t, result.Subjects, 1)
	assert.Zero(t, result.Subjects[0].ContinuousAssessmentMarks)
	assert.Zero(t, result.Subjects[0].EndSemesterMarks)
	assert.Zero(t, result.Subjects[0].LabMarks)
	assert.InDelta(t, 80.0, result.Subjects[0].TotalMarks, 1e-9)
	assert.Zero(t, result.SGPA)
}

func TestParseCSV_MissingSubjectColumn(t *testing.T) {
	_, err := NewParser(0).ParseCSV(strings.NewReader("CA_Marks,Total\n32,80\n"))
	assert.ErrorIs(t, err, ErrMissingSubjectColumn)
}

func TestParseCSV_NonNumericCellsCoerceToZero(t *testing.T) {
	result := parse(t, `Subject,CA_Marks,Total
Algorithms,absent,80
Databases,28,n/a
`)

	require.Len(t, result.Subjects, 2)
	assert.Zero(t, result.Subjects[0].ContinuousAssessmentMarks)
	assert.InDelta(t, 80.0, result.Subjects[0].TotalMarks, 1e-9)
	assert.InDelta(t, 28.0, result.Subjects[1].ContinuousAssessmentMarks, 1e-9)
	assert.Zero(t, result.Subjects[1].TotalMarks)
}

func TestParseCSV_DropsBlankSubjectRows(t *testing.T) {
	result := parse(t, `Subject,Total
Algorithms,80
,70
   ,60
Databases,75
`)

	require.Len(t, result.Subjects, 2)
	assert.Equal(t, "Algorithms", result.Subjects[0].SubjectName)
	assert.Equal(t, "Databases", result.Subjects[1].SubjectName)
	assert.Equal(t, 2, result.Skipped)
}

func TestParseCSV_TrimsHeaderNames(t *testing.T) {
	result := parse(t, "Subject , Total \nAlgorithms,80\n")

	require.Len(t, result.Subjects, 1)
	assert.InDelta(t, 80.0, result.Subjects[0].TotalMarks, 1e-9)
}

func TestParseCSV_FirstNonZeroSGPAWins(t *testing.T) {
	result := parse(t, `Subject,Total,SGPA
Algorithms,80,0
Databases,70,8.5
Networks,75,9.0
`)

	assert.InDelta(t, 8.5, result.SGPA, 1e-9)
}

func TestParseCSV_ShortRowsReadAsZero(t *testing.T) {
	result := parse(t, `Subject,CA_Marks,Total
Algorithms,32
`)

	require.Len(t, result.Subjects, 1)
	assert.InDelta(t, 32.0, result.Subjects[0].ContinuousAssessmentMarks, 1e-9)
	assert.Zero(t, result.Subjects[0].TotalMarks)
}

func TestParseCSV_EmptyInput(t *testing.T) {
	_, err := NewParser(0).ParseCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoSubjectRows)
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	_, err := NewParser(0).ParseCSV(strings.NewReader("Subject,Total\n"))
	assert.ErrorIs(t, err, ErrNoSubjectRows)
}

func TestParseCSV_EnforcesSubjectCap(t *testing.T) {
	_, err := NewParser(2).ParseCSV(strings.NewReader(`Subject,Total
A,80
B,70
C,60
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many subject rows")
}
