package linalg

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestEigenvaluesDiagonal(t *testing.T) {
	eigs := Eigenvalues(Matrix{{4, 0}, {0, 2}})
	require.Len(t, eigs, 2)
	assert.InDelta(t, 4.0, eigs[0], 1e-3)
	assert.InDelta(t, 2.0, eigs[1], 1e-3)
	assert.InDelta(t, 2.0, ConditionNumber(eigs), 1e-3)
}

func TestEigenvaluesOffDiagonal(t *testing.T) {
	// [[4,1],[1,2]] has eigenvalues 3 +/- sqrt(2).
	eigs := Eigenvalues(Matrix{{4, 1}, {1, 2}})
	require.Len(t, eigs, 2)
	assert.InDelta(t, 3+math.Sqrt2, eigs[0], 1e-3)
	assert.InDelta(t, 3-math.Sqrt2, eigs[1], 1e-3)
}

func TestEigenvaluesIndefinite(t *testing.T) {
	// Saddle-point Hessian: sorted by magnitude, the negative one comes last.
	eigs := Eigenvalues(Matrix{{2, 0}, {0, -1}})
	require.Len(t, eigs, 2)
	assert.InDelta(t, 2.0, eigs[0], 1e-3)
	assert.InDelta(t, -1.0, eigs[1], 1e-3)
}

func TestEigenvalues3x3Diagonal(t *testing.T) {
	eigs := Eigenvalues(Matrix{{5, 0, 0}, {0, 3, 0}, {0, 0, 1}})
	require.Len(t, eigs, 3)
	assert.InDelta(t, 5.0, eigs[0], 1e-3)
	assert.InDelta(t, 3.0, eigs[1], 1e-3)
	assert.InDelta(t, 1.0, eigs[2], 1e-3)
}

// TestEigenvaluesMatchGonum compares power iteration with deflation against
// gonum's symmetric eigensolver on a representative logistic Hessian.
func TestEigenvaluesMatchGonum(t *testing.T) {
	data := []float64{2, 0.5, 0.3, 0.5, 2, 0.2, 0.3, 0.2, 1}
	eigs := Eigenvalues(Matrix{
		{2, 0.5, 0.3},
		{0.5, 2, 0.2},
		{0.3, 0.2, 1},
	})

	var es mat.EigenSym
	ok := es.Factorize(mat.NewSymDense(3, data), false)
	require.True(t, ok)
	want := es.Values(nil)
	sort.Slice(want, func(i, j int) bool {
		return math.Abs(want[i]) > math.Abs(want[j])
	})

	require.Len(t, eigs, 3)
	for i := range want {
		assert.InDelta(t, want[i], eigs[i], 1e-3, "eigenvalue %d", i)
	}
}

func TestConditionNumber(t *testing.T) {
	assert.InDelta(t, 100.0, ConditionNumber([]float64{200, 2}), 1e-12)
	assert.True(t, math.IsInf(ConditionNumber([]float64{1, 0}), 1))
	assert.True(t, math.IsNaN(ConditionNumber(nil)))
}
