package ai

import (
	"gonum.org/v1/gonum/floats"
)

// feature is one dimension of the weighted distance: the template
// embedding or one variable position's embedding, with a per-group
// active mask. Inactive positions are excluded from the distance for any
// pair involving that group.
type feature struct {
	weight  float64
	vectors [][]float64
	active  []bool
}

// weightedMatrix computes the pairwise distance matrix over a set of
// groups described by their features. For each pair only the features
// active in both groups contribute; their weights are renormalized to
// sum to one over that pair's active set. A zero active weight sum falls
// back to the unweighted mean of the active distances.
func weightedMatrix(n int, features []feature) [][]float64 {
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var weightSum, weighted, unweighted float64
			var activeCount int
			for _, f := range features {
				if !f.active[i] || !f.active[j] {
					continue
				}
				dist := cosineDistance(f.vectors[i], f.vectors[j])
				weightSum += f.weight
				weighted += f.weight * dist
				unweighted += dist
				activeCount++
			}

			var dist float64
			switch {
			case activeCount == 0:
				dist = 0
			case weightSum > 0:
				dist = weighted / weightSum
			default:
				dist = unweighted / float64(activeCount)
			}
			d[i][j] = dist
			d[j][i] = dist
		}
	}
	return d
}

// cosineMatrix is the plain pairwise cosine distance matrix.
func cosineMatrix(vectors [][]float64) [][]float64 {
	n := len(vectors)
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dist := cosineDistance(vectors[i], vectors[j])
			d[i][j] = dist
			d[j][i] = dist
		}
	}
	return d
}

// cosineDistance is 1 - cosine similarity, clamped to [0, 2]. Two zero
// vectors are identical (distance 0); a single zero vector has no
// direction to compare, so the distance is the neutral 1.
func cosineDistance(a, b []float64) float64 {
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		if na == 0 && nb == 0 {
			return 0
		}
		return 1
	}
	dist := 1 - floats.Dot(a, b)/(na*nb)
	if dist < 0 {
		return 0
	}
	if dist > 2 {
		return 2
	}
	return dist
}
