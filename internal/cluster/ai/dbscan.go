package ai

// ClusterPort assigns a cluster label to each item. Implementations are
// density-based with a minimum cluster size of one, so every item gets a
// label and noise is impossible.
type ClusterPort interface {
	// ClusterDistances clusters over a precomputed symmetric distance
	// matrix with zero diagonal.
	ClusterDistances(distances [][]float64, eps float64) []int
	// ClusterVectors clusters raw vectors under cosine distance.
	ClusterVectors(vectors [][]float64, eps float64) []int
}

// DBSCAN is the default ClusterPort. With a minimum cluster size of one,
// density clustering reduces to connected components of the graph whose
// edges join items within eps of each other.
type DBSCAN struct{}

// ClusterDistances labels the connected components of the eps-graph.
// Labels are assigned in first-encounter order starting at zero.
func (DBSCAN) ClusterDistances(distances [][]float64, eps float64) []int {
	n := len(distances)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	next := 0
	queue := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if labels[i] != -1 {
			continue
		}
		labels[i] = next
		queue = append(queue[:0], i)
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for j := 0; j < n; j++ {
				if labels[j] == -1 && distances[cur][j] <= eps {
					labels[j] = next
					queue = append(queue, j)
				}
			}
		}
		next++
	}
	return labels
}

// ClusterVectors clusters raw vectors by cosine distance.
func (d DBSCAN) ClusterVectors(vectors [][]float64, eps float64) []int {
	return d.ClusterDistances(cosineMatrix(vectors), eps)
}
