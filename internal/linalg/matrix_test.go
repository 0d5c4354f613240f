package linalg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestInvert2x2(t *testing.T) {
	m := Matrix{{4, 7}, {2, 6}}
	inv, ok := m.Invert()
	require.True(t, ok)

	// det = 10, inverse = [[0.6, -0.7], [-0.2, 0.4]]
	assert.InDelta(t, 0.6, inv[0][0], 1e-12)
	assert.InDelta(t, -0.7, inv[0][1], 1e-12)
	assert.InDelta(t, -0.2, inv[1][0], 1e-12)
	assert.InDelta(t, 0.4, inv[1][1], 1e-12)
}

func TestInvertSingular(t *testing.T) {
	m := Matrix{{1, 2}, {2, 4}}
	_, ok := m.Invert()
	assert.False(t, ok, "rank-deficient matrix must report singular")
}

func TestInvertNearSingularPivot(t *testing.T) {
	m := Matrix{{1e-12, 0}, {0, 1}}
	_, ok := m.Invert()
	assert.False(t, ok, "pivot below threshold must report singular")
}

// TestInvertMatchesGonum cross-checks the Gauss-Jordan path against
// gonum's LU-based inverse on a typical logistic Hessian.
func TestInvertMatchesGonum(t *testing.T) {
	m := Matrix{
		{2, 0.5, 0.3},
		{0.5, 2, 0.2},
		{0.3, 0.2, 1},
	}
	inv, ok := m.Invert()
	require.True(t, ok)

	var ref mat.Dense
	err := ref.Inverse(mat.NewDense(3, 3, []float64{2, 0.5, 0.3, 0.5, 2, 0.2, 0.3, 0.2, 1}))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, ref.At(i, j), inv[i][j], 1e-10, "entry (%d,%d)", i, j)
		}
	}
}

func TestInvertRoundTrip(t *testing.T) {
	m := Matrix{
		{3, 1, 0},
		{1, 4, 1},
		{0, 1, 2},
	}
	inv, ok := m.Invert()
	require.True(t, ok)

	// m * inv should be identity.
	for i := 0; i < 3; i++ {
		row := m.MulVec([]float64{inv[0][i], inv[1][i], inv[2][i]})
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			assert.InDelta(t, want, row[j], 1e-10)
		}
	}
}

func TestAddDiag(t *testing.T) {
	m := Matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	damped := m.AddDiag(0.5, 0, 1)
	assert.Equal(t, 1.5, damped[0][0])
	assert.Equal(t, 1.5, damped[1][1])
	assert.Equal(t, 1.0, damped[2][2], "bias entry must stay untouched")
	assert.Equal(t, 1.0, m[0][0], "AddDiag must not mutate the receiver")
}

func TestMulVec(t *testing.T) {
	m := Matrix{{1, 2}, {3, 4}}
	assert.Equal(t, []float64{5, 11}, m.MulVec([]float64{1, 2}))
}
