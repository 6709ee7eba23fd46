package analytics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/student-insight/backend/internal/storage/models"
)

const kmeansMaxIter = 100

// ClusterSubjects partitions the standardized subject rows into k groups
// with Lloyd's algorithm. Initialization is deterministic (farthest-point
// seeding from the first row), so identical histories always cluster
// identically; the UI depends on stable groupings across renders. Fewer
// rows than k is an insufficiency, never a silent k reduction.
func ClusterSubjects(h models.StudentHistory, k int) Clustering {
	keys, m := featureRows(h)
	if len(keys) < k {
		return Clustering{Reason: ReasonTooFewRows}
	}

	standardizeColumns(m)
	centroids, labels := kmeans(m, k)

	assignments := make([]ClusterAssignment, len(keys))
	for i, key := range keys {
		assignments[i] = ClusterAssignment{
			SubjectName:   key.subject,
			SemesterIndex: key.semester,
			Cluster:       labels[i],
		}
	}

	return Clustering{
		Available:   true,
		Assignments: assignments,
		Centroids:   centroids,
	}
}

func kmeans(m *mat.Dense, k int) ([][]float64, []int) {
	n, dims := m.Dims()
	centroids := initialCentroids(m, k)

	labels := make([]int, n)
	for iter := 0; iter < kmeansMaxIter; iter++ {
		changed := false
		for i := 0; i < n; i++ {
			best := nearestCentroid(m.RawRowView(i), centroids)
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i := 0; i < n; i++ {
			row := m.RawRowView(i)
			counts[labels[i]]++
			for j, v := range row {
				sums[labels[i]][j] += v
			}
		}
		for c := range centroids {
			// a cluster that lost every row keeps its previous centroid
			if counts[c] == 0 {
				continue
			}
			for j := range centroids[c] {
				centroids[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}

	return centroids, labels
}

// initialCentroids seeds with the first row, then repeatedly takes the row
// farthest from its nearest already-chosen seed. Ties resolve to the lowest
// row index.
func initialCentroids(m *mat.Dense, k int) [][]float64 {
	n, _ := m.Dims()

	chosen := make([]int, 1, k)
	minDist := make([]float64, n)
	for i := range minDist {
		minDist[i] = sqDist(m.RawRowView(i), m.RawRowView(0))
	}

	for len(chosen) < k {
		next, farthest := 0, -1.0
		for i := 0; i < n; i++ {
			if minDist[i] > farthest {
				farthest = minDist[i]
				next = i
			}
		}
		chosen = append(chosen, next)
		for i := 0; i < n; i++ {
			if d := sqDist(m.RawRowView(i), m.RawRowView(next)); d < minDist[i] {
				minDist[i] = d
			}
		}
	}

	centroids := make([][]float64, k)
	for i, idx := range chosen {
		centroids[i] = append([]float64(nil), m.RawRowView(idx)...)
	}
	return centroids
}

func nearestCentroid(row []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.MaxFloat64
	for c, centroid := range centroids {
		// strict comparison keeps the lowest cluster index on ties
		if d := sqDist(row, centroid); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	var d float64
	for j, v := range a {
		diff := v - b[j]
		d += diff * diff
	}
	return d
}
