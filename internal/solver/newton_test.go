package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optviz/gradlab/internal/linalg"
	"github.com/optviz/gradlab/internal/objective"
)

func TestNewtonOneStepOnQuadratic(t *testing.T) {
	obj := objective.Quadratic{}
	opts := Options{MaxIterations: 10, Tolerance: 1e-10}

	records := Newton(obj, []float64{1, 1}, opts)

	// On a strictly convex quadratic the full Newton step lands exactly on
	// the minimizer, so the trace has a single iteration.
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, 1.0, rec.Alpha)
	assert.InDelta(t, 0.0, rec.WNew[0], 1e-12)
	assert.InDelta(t, 0.0, rec.WNew[1], 1e-12)
	assert.InDelta(t, 0.0, rec.NewLoss, 1e-12)

	sum := Summarize(obj, []float64{1, 1}, records, opts)
	assert.True(t, sum.Converged)
}

func TestNewtonDiagnostics(t *testing.T) {
	obj := objective.IllConditionedQuadratic{}
	records := Newton(obj, []float64{1, 1}, Options{MaxIterations: 5})

	require.NotEmpty(t, records)
	diag := records[0].Newton
	require.NotNil(t, diag)

	// Hessian diag(2, 200): eigenvalues descending by magnitude, condition
	// number 100.
	assert.InDelta(t, 200.0, diag.Eigenvalues[0], 1e-3)
	assert.InDelta(t, 2.0, diag.Eigenvalues[1], 1e-3)
	assert.InDelta(t, 100.0, diag.ConditionNumber, 1e-1)
	assert.Equal(t, 200.0, diag.Hessian[1][1])
	assert.False(t, diag.FellBack)
	assert.Nil(t, records[0].LBFGS, "newton records carry no L-BFGS payload")
}

// singularHessian is a fixture whose Hessian is rank deficient everywhere.
type singularHessian struct {
	objective.Quadratic
}

func (singularHessian) Name() string { return "singular-fixture" }

func (singularHessian) Hessian(w []float64) linalg.Matrix {
	return linalg.Matrix{{1, 1}, {1, 1}}
}

func TestNewtonSingularFallsBackToSteepestDescent(t *testing.T) {
	records := Newton(singularHessian{}, []float64{1, 1}, Options{MaxIterations: 1})

	require.Len(t, records, 1)
	rec := records[0]
	require.NotNil(t, rec.Newton)
	assert.True(t, rec.Newton.FellBack)

	// Fallback direction is -g; the run continues instead of failing.
	assert.Equal(t, linalg.Scale(-1, rec.Gradient), rec.Direction)
}

func TestNewtonDampingShiftsDirection(t *testing.T) {
	obj := objective.NonConvexSaddle{}
	w0 := []float64{1, 1}

	plain := Newton(obj, w0, Options{MaxIterations: 1})
	damped := Newton(obj, w0, Options{MaxIterations: 1, Damping: 4})

	require.Len(t, plain, 1)
	require.Len(t, damped, 1)

	// Undamped Newton inverts diag(2,-2) and pushes toward the saddle in
	// the w1 coordinate; damping with 4 makes the Hessian diag(6,2)
	// positive definite, so the damped step ascends out of it.
	assert.Negative(t, plain[0].Direction[1])
	assert.Positive(t, damped[0].Direction[1])

	// The recorded Hessian stays the raw one in both cases.
	assert.Equal(t, damped[0].Newton.Hessian, plain[0].Newton.Hessian)
}

func TestNewtonHessianSnapshotIsIndependent(t *testing.T) {
	obj := objective.Quadratic{}
	records := Newton(obj, []float64{3, -2}, Options{MaxIterations: 3})

	for _, rec := range records {
		require.NotNil(t, rec.Newton)
		h := rec.Newton.Hessian
		require.Equal(t, 2, h.Dim())
		// Mutating the recorded Hessian must not corrupt anything shared.
		h[0][0] = -1
	}
}
