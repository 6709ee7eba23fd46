package analytics

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/student-insight/backend/internal/storage/models"
)

// ProjectSubjects maps the standardized subject rows onto their top two
// principal components for plotting, reporting the fraction of variance the
// plane captures. Needs at least two rows and two feature columns with
// spread; anything less returns a reason code instead of a projection.
func ProjectSubjects(h models.StudentHistory) Projection {
	keys, m := featureRows(h)
	if len(keys) < 2 {
		return Projection{Reason: ReasonTooFewRows}
	}
	if standardizeColumns(m) < 2 {
		return Projection{Reason: ReasonDegenerateFeatures}
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(m, nil); !ok {
		return Projection{Reason: ReasonDegenerateFeatures}
	}

	vars := pc.VarsTo(nil)
	var vec mat.Dense
	pc.VectorsTo(&vec)

	_, dims := m.Dims()
	var proj mat.Dense
	proj.Mul(m, vec.Slice(0, dims, 0, 2))

	points := make([]ProjectedPoint, len(keys))
	for i, key := range keys {
		points[i] = ProjectedPoint{
			SubjectName:   key.subject,
			SemesterIndex: key.semester,
			PC1:           proj.At(i, 0),
			PC2:           proj.At(i, 1),
		}
	}

	var total float64
	for _, v := range vars {
		total += v
	}
	captured := 0.0
	if total > 0 {
		captured = (vars[0] + vars[1]) / total
	}

	return Projection{
		Available:         true,
		Points:            points,
		ExplainedVariance: captured,
	}
}
