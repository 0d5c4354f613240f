package linalg

import (
	"math"
	"sort"
)

// powerIterations is the fixed number of power-iteration steps per
// eigenvalue. Plenty for well-separated spectra at the 3x3 diagnostic scale.
const powerIterations = 50

// Eigenvalues extracts the eigenvalues of a symmetric matrix one at a time:
// power iteration finds the dominant eigenpair of the current deflated
// matrix, then the matrix is deflated (A <- A - lambda*v*v^T) and the next
// one is extracted. Returned values are sorted by descending magnitude.
//
// This is a diagnostic-grade approximation, not a general eigensolver: it
// assumes the matrix is symmetric (or near-symmetric) and has no
// repeated-magnitude eigenvalues that would stall power iteration. A Jacobi
// sweep would be more accurate without changing the contract, but at n<=3
// this is adequate.
func Eigenvalues(m Matrix) []float64 {
	n := len(m)
	work := m.Clone()
	eigs := make([]float64, 0, n)

	for k := 0; k < n; k++ {
		lambda, vec, ok := dominantEigenpair(work)
		if !ok {
			// Deflated matrix is numerically zero; remaining eigenvalues are 0.
			for len(eigs) < n {
				eigs = append(eigs, 0)
			}
			break
		}
		eigs = append(eigs, lambda)

		// Deflate: work <- work - lambda * v * v^T.
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				work[i][j] -= lambda * vec[i] * vec[j]
			}
		}
	}

	sort.Slice(eigs, func(i, j int) bool {
		return math.Abs(eigs[i]) > math.Abs(eigs[j])
	})
	return eigs
}

// dominantEigenpair runs power iteration from an all-ones start vector and
// returns the dominant eigenvalue and its unit eigenvector. ok is false when
// the iterate collapses to (numerically) zero.
func dominantEigenpair(m Matrix) (float64, []float64, bool) {
	n := len(m)
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}

	for iter := 0; iter < powerIterations; iter++ {
		next := m.MulVec(v)
		nrm := Norm(next)
		if nrm < 1e-12 {
			return 0, nil, false
		}
		v = Scale(1/nrm, next)
	}

	// Rayleigh quotient recovers the signed eigenvalue.
	lambda := Dot(v, m.MulVec(v)) / Dot(v, v)
	return lambda, v, true
}

// ConditionNumber returns |lambda_max| / |lambda_min| for eigenvalues sorted
// by descending magnitude. Returns +Inf when the smallest magnitude is
// numerically zero.
func ConditionNumber(eigs []float64) float64 {
	if len(eigs) == 0 {
		return math.NaN()
	}
	maxMag := math.Abs(eigs[0])
	minMag := math.Abs(eigs[len(eigs)-1])
	if minMag < 1e-15 {
		return math.Inf(1)
	}
	return maxMag / minMag
}
