package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/student-insight/backend/internal/storage/models"
)

// nine rows in three well-separated mark bands
func clusteringHistory() models.StudentHistory {
	return history(
		semester(1, 7.0,
			subject("Algorithms", 36, 46, 9, 91),
			subject("Networks", 35, 44, 9, 88),
			subject("Compilers", 37, 47, 9, 93),
		),
		semester(2, 6.5,
			subject("Databases", 24, 31, 6, 61),
			subject("Graphics", 25, 32, 6, 63),
			subject("Security", 23, 30, 6, 59),
		),
		semester(3, 5.5,
			subject("Economics", 13, 17, 3, 33),
			subject("Philosophy", 12, 16, 3, 31),
			subject("History", 14, 18, 3, 35),
		),
	)
}

func TestClusterSubjects_Deterministic(t *testing.T) {
	h := clusteringHistory()

	first := ClusterSubjects(h, 3)
	second := ClusterSubjects(h, 3)

	require.True(t, first.Available)
	assert.Equal(t, first.Assignments, second.Assignments)
	assert.Equal(t, first.Centroids, second.Centroids)
}

func TestClusterSubjects_SeparatesBands(t *testing.T) {
	c := ClusterSubjects(clusteringHistory(), 3)
	require.True(t, c.Available)
	require.Len(t, c.Assignments, 9)
	require.Len(t, c.Centroids, 3)

	// rows within one band share a label, rows across bands differ
	labelOf := make(map[string]int, 9)
	for _, a := range c.Assignments {
		labelOf[a.SubjectName] = a.Cluster
		assert.GreaterOrEqual(t, a.Cluster, 0)
		assert.Less(t, a.Cluster, 3)
	}
	assert.Equal(t, labelOf["Algorithms"], labelOf["Networks"])
	assert.Equal(t, labelOf["Algorithms"], labelOf["Compilers"])
	assert.Equal(t, labelOf["Databases"], labelOf["Graphics"])
	assert.Equal(t, labelOf["Economics"], labelOf["Philosophy"])
	assert.NotEqual(t, labelOf["Algorithms"], labelOf["Economics"])
	assert.NotEqual(t, labelOf["Algorithms"], labelOf["Databases"])
}

func TestClusterSubjects_FewerRowsThanK(t *testing.T) {
	h := history(semester(1, 7.0,
		subject("A", 30, 40, 8, 78),
		subject("B", 20, 30, 6, 56),
	))

	c := ClusterSubjects(h, 3)
	assert.False(t, c.Available)
	assert.Equal(t, ReasonTooFewRows, c.Reason)
	assert.Empty(t, c.Assignments)
	assert.Empty(t, c.Centroids)
}

func TestClusterSubjects_EmptyHistory(t *testing.T) {
	c := ClusterSubjects(history(), 3)
	assert.False(t, c.Available)
	assert.Equal(t, ReasonTooFewRows, c.Reason)
}

func TestClusterSubjects_RowsEqualK(t *testing.T) {
	h := history(semester(1, 7.0,
		subject("A", 36, 46, 9, 91),
		subject("B", 24, 31, 6, 61),
		subject("C", 13, 17, 3, 33),
	))

	c := ClusterSubjects(h, 3)
	require.True(t, c.Available)

	// every row its own cluster
	seen := make(map[int]bool, 3)
	for _, a := range c.Assignments {
		seen[a.Cluster] = true
	}
	assert.Len(t, seen, 3)
}

func TestClusterSubjects_ZeroVarianceColumnHandled(t *testing.T) {
	// identical lab marks everywhere: that column must not poison the rest
	h := history(semester(1, 7.0,
		subject("A", 36, 46, 5, 91),
		subject("B", 24, 31, 5, 61),
		subject("C", 13, 17, 5, 33),
	))

	c := ClusterSubjects(h, 2)
	require.True(t, c.Available)
	require.Len(t, c.Assignments, 3)
	for _, centroid := range c.Centroids {
		require.Len(t, centroid, 4)
		for _, v := range centroid {
			assert.False(t, v != v, "centroid coordinate must not be NaN")
		}
	}
}
