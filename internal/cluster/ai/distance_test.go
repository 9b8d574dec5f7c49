package ai

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineDistance(t *testing.T) {
	assert.InDelta(t, 0, cosineDistance([]float64{1, 0}, []float64{1, 0}), 1e-12)
	assert.InDelta(t, 1, cosineDistance([]float64{1, 0}, []float64{0, 1}), 1e-12)
	assert.InDelta(t, 2, cosineDistance([]float64{1, 0}, []float64{-1, 0}), 1e-12)
	assert.InDelta(t, 0, cosineDistance([]float64{1, 2}, []float64{2, 4}), 1e-12)
}

func TestCosineDistance_ZeroVectors(t *testing.T) {
	assert.Equal(t, 0.0, cosineDistance([]float64{0, 0}, []float64{0, 0}))
	assert.Equal(t, 1.0, cosineDistance([]float64{0, 0}, []float64{1, 0}))
	assert.Equal(t, 1.0, cosineDistance([]float64{1, 0}, []float64{0, 0}))
}

func TestCosineMatrix_SymmetricZeroDiagonal(t *testing.T) {
	vectors := [][]float64{{1, 0}, {0, 1}, {1, 1}, {-1, 0.5}}
	d := cosineMatrix(vectors)
	for i := range d {
		assert.Equal(t, 0.0, d[i][i])
		for j := range d {
			assert.Equal(t, d[i][j], d[j][i])
			assert.GreaterOrEqual(t, d[i][j], 0.0)
			assert.LessOrEqual(t, d[i][j], 2.0)
		}
	}
}

func TestWeightedMatrix_SymmetricZeroDiagonal(t *testing.T) {
	features := []feature{
		{
			weight:  0.3,
			vectors: [][]float64{{1, 0}, {0, 1}, {1, 1}},
			active:  []bool{true, true, true},
		},
		{
			weight:  0.7,
			vectors: [][]float64{{1, 1}, {1, 0}, {0, 0}},
			active:  []bool{true, true, false},
		},
	}
	d := weightedMatrix(3, features)
	for i := 0; i < 3; i++ {
		assert.Equal(t, 0.0, d[i][i])
		for j := 0; j < 3; j++ {
			assert.Equal(t, d[i][j], d[j][i])
		}
	}
}

func TestWeightedMatrix_PerPairRenormalization(t *testing.T) {
	// Template distance is identical for every pair; the variable is only
	// active for groups 0 and 1. Pair (0,1) blends template and variable
	// distances; pairs involving group 2 use the template alone, with its
	// weight renormalized to 1 rather than kept at 0.3.
	template := feature{
		weight:  0.3,
		vectors: [][]float64{{1, 0}, {0, 1}, {0, 1}},
		active:  []bool{true, true, true},
	}
	variable := feature{
		weight:  0.7,
		vectors: [][]float64{{1, 0}, {1, 0}, {0, 0}},
		active:  []bool{true, true, false},
	}
	d := weightedMatrix(3, []feature{template, variable})

	// Pair (0,1): template dist 1, variable dist 0 -> 0.3*1 + 0.7*0 = 0.3.
	assert.InDelta(t, 0.3, d[0][1], 1e-12)
	// Pair (0,2): only the template is shared; its distance of 1 must
	// come through at full weight, not scaled down by 0.3.
	assert.InDelta(t, 1.0, d[0][2], 1e-12)
	// Pair (1,2): identical templates, nothing else shared.
	assert.InDelta(t, 0.0, d[1][2], 1e-12)
}

func TestWeightedMatrix_ZeroWeightsFallBackToMean(t *testing.T) {
	features := []feature{
		{
			weight:  0,
			vectors: [][]float64{{1, 0}, {0, 1}},
			active:  []bool{true, true},
		},
		{
			weight:  0,
			vectors: [][]float64{{1, 0}, {1, 0}},
			active:  []bool{true, true},
		},
	}
	d := weightedMatrix(2, features)
	// Arithmetic mean of distances 1 and 0.
	assert.InDelta(t, 0.5, d[0][1], 1e-12)
}

func TestWeightedMatrix_NoSharedFeatures(t *testing.T) {
	features := []feature{
		{
			weight:  1,
			vectors: [][]float64{{1, 0}, {0, 1}},
			active:  []bool{true, false},
		},
	}
	d := weightedMatrix(2, features)
	assert.Equal(t, 0.0, d[0][1])
}

func TestWeightedMatrix_ClampsToRange(t *testing.T) {
	features := []feature{
		{
			weight:  1,
			vectors: [][]float64{{1, 0}, {-1, 0}},
			active:  []bool{true, true},
		},
	}
	d := weightedMatrix(2, features)
	assert.False(t, math.IsNaN(d[0][1]))
	require.LessOrEqual(t, d[0][1], 2.0)
}
