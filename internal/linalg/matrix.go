package linalg

import "math"

// pivotThreshold is the magnitude below which a pivot is treated as zero
// and the matrix reported singular.
const pivotThreshold = 1e-10

// Matrix is a small dense square matrix stored as rows.
// All algorithms here target the handful-of-parameters scale (n <= 3 in
// practice); nothing is optimized for large n.
type Matrix [][]float64

// NewMatrix returns an n-by-n zero matrix.
func NewMatrix(n int) Matrix {
	m := make(Matrix, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

// Identity returns the n-by-n identity matrix.
func Identity(n int) Matrix {
	m := NewMatrix(n)
	for i := 0; i < n; i++ {
		m[i][i] = 1
	}
	return m
}

// Dim returns the matrix dimension.
func (m Matrix) Dim() int {
	return len(m)
}

// Clone returns a deep copy of m.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
	}
	return out
}

// AddDiag returns a copy of m with s added to diagonal entry (i,i) for every
// index in idx. Used for Levenberg-Marquardt style damping and for the
// regularization terms that only touch the weight coordinates.
func (m Matrix) AddDiag(s float64, idx ...int) Matrix {
	out := m.Clone()
	for _, i := range idx {
		out[i][i] += s
	}
	return out
}

// MulVec returns m*v as a new vector.
func (m Matrix) MulVec(v []float64) []float64 {
	out := make([]float64, len(m))
	for i, row := range m {
		out[i] = Dot(row, v)
	}
	return out
}

// Invert computes the inverse of m via Gauss-Jordan elimination with partial
// pivoting. The second return value is false if any pivot magnitude falls
// below the numerical threshold after row selection; callers must treat that
// as a recoverable condition (fall back to another direction), not an error.
func (m Matrix) Invert() (Matrix, bool) {
	n := len(m)

	// Augment [m | I] and reduce in place.
	aug := make([][]float64, n)
	for i := 0; i < n; i++ {
		aug[i] = make([]float64, 2*n)
		copy(aug[i], m[i])
		aug[i][n+i] = 1
	}

	for col := 0; col < n; col++ {
		// Partial pivoting: pick the row with the largest magnitude in this column.
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(aug[r][col]) > math.Abs(aug[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(aug[pivot][col]) < pivotThreshold {
			return nil, false
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		// Normalize the pivot row.
		p := aug[col][col]
		for j := 0; j < 2*n; j++ {
			aug[col][j] /= p
		}

		// Eliminate the column everywhere else.
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			f := aug[r][col]
			if f == 0 {
				continue
			}
			for j := 0; j < 2*n; j++ {
				aug[r][j] -= f * aug[col][j]
			}
		}
	}

	inv := NewMatrix(n)
	for i := 0; i < n; i++ {
		copy(inv[i], aug[i][n:])
	}
	return inv, true
}
