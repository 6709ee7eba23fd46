package analytics

import (
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/student-insight/backend/internal/storage/models"
)

const featureCount = 4

type rowKey struct {
	subject  string
	semester int
}

// sortedSemesters returns a copy ordered by semester index. Input order is
// never trusted; the index alone defines chronology.
func sortedSemesters(h models.StudentHistory) []models.SemesterRecord {
	out := make([]models.SemesterRecord, len(h.Semesters))
	copy(out, h.Semesters)
	sort.Slice(out, func(i, j int) bool {
		return out[i].SemesterIndex < out[j].SemesterIndex
	})
	return out
}

// featureRows flattens every subject record into one row of
// {CA, ESE, Lab, Total}, ordered by semester index then subject position so
// the row layout is identical on every run.
func featureRows(h models.StudentHistory) ([]rowKey, *mat.Dense) {
	var keys []rowKey
	var data []float64
	for _, sem := range sortedSemesters(h) {
		for _, sub := range sem.Subjects {
			keys = append(keys, rowKey{subject: sub.SubjectName, semester: sem.SemesterIndex})
			data = append(data,
				sub.ContinuousAssessmentMarks,
				sub.EndSemesterMarks,
				sub.LabMarks,
				sub.TotalMarks,
			)
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}
	return keys, mat.NewDense(len(keys), featureCount, data)
}

// standardizeColumns rescales each column to zero mean and unit variance in
// place. Columns without spread are centered only, never divided. Returns
// how many columns carry variance.
func standardizeColumns(m *mat.Dense) int {
	rows, cols := m.Dims()
	varying := 0
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, m)
		mean := stat.Mean(col, nil)
		sd := stat.StdDev(col, nil)
		if sd > 0 {
			varying++
			for i := range col {
				col[i] = (col[i] - mean) / sd
			}
		} else {
			for i := range col {
				col[i] -= mean
			}
		}
		m.SetCol(j, col)
	}
	return varying
}

func constant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}
