package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optviz/gradlab/internal/dataset"
	"github.com/optviz/gradlab/internal/linalg"
	"github.com/optviz/gradlab/internal/objective"
)

// assertUpdateConsistency checks wNew = w + alpha*direction on every record.
func assertUpdateConsistency(t *testing.T, records []Record) {
	t.Helper()
	for _, rec := range records {
		want := linalg.AddScaled(rec.W, rec.Alpha, rec.Direction)
		for j := range want {
			assert.InDelta(t, want[j], rec.WNew[j], 1e-9, "record %d component %d", rec.Index, j)
		}
	}
}

func TestGDFixedConvergesOnQuadratic(t *testing.T) {
	obj := objective.Quadratic{}
	opts := Options{MaxIterations: 100, Tolerance: 1e-6, Alpha: 0.1}

	records := GradientDescentFixed(obj, []float64{1, 1}, opts)

	// Each step contracts w by 0.8, so the gradient norm 2*sqrt(2)*0.8^n
	// crosses 1e-6 well before the budget.
	require.NotEmpty(t, records)
	assert.Less(t, len(records), 100)
	assertUpdateConsistency(t, records)

	sum := Summarize(obj, []float64{1, 1}, records, opts)
	assert.True(t, sum.Converged)
	assert.Less(t, sum.FinalGradientNorm, 1e-6)
	assert.Equal(t, len(records), sum.Iterations)
}

func TestGDFixedRecordsConstantAlpha(t *testing.T) {
	records := GradientDescentFixed(objective.Quadratic{}, []float64{1, 1}, Options{MaxIterations: 5, Alpha: 0.05})
	require.Len(t, records, 5)
	for _, rec := range records {
		assert.Equal(t, 0.05, rec.Alpha)
		assert.Empty(t, rec.Trials, "fixed-step variant runs no line search")
		assert.Equal(t, linalg.Scale(-1, rec.Gradient), rec.Direction)
	}
}

func TestGDFixedExhaustsBudgetOnSaddle(t *testing.T) {
	// The saddle is unbounded below: the run must use the whole budget
	// without blowing up the loop.
	records := GradientDescentFixed(objective.NonConvexSaddle{}, []float64{1, 1}, Options{MaxIterations: 100, Alpha: 0.1})
	assert.Len(t, records, 100)
}

func TestGDLineSearchExactStepOnQuadratic(t *testing.T) {
	obj := objective.Quadratic{}
	records := GradientDescentLineSearch(obj, []float64{1, 1}, Options{MaxIterations: 50})

	// alpha=0.5 along -g jumps straight to the origin.
	require.Len(t, records, 1)
	assert.Equal(t, 0.5, records[0].Alpha)
	assert.InDelta(t, 0.0, records[0].NewLoss, 1e-12)
	assertUpdateConsistency(t, records)
}

func TestRecordsSnapshotsAreIndependent(t *testing.T) {
	obj := objective.Quadratic{}
	records := GradientDescentFixed(obj, []float64{1, 1}, Options{MaxIterations: 3, Alpha: 0.1})
	require.Len(t, records, 3)

	// Each record owns its vectors: consecutive records must not share
	// backing arrays.
	records[0].WNew[0] = 12345
	assert.NotEqual(t, 12345.0, records[1].W[0])
}

func TestTerminationBound(t *testing.T) {
	clusters := dataset.TwoClusters(40, 0.4, 42)
	obj := objective.NewLogisticRegression(clusters, 1e-4)
	opts := Options{MaxIterations: 25, Tolerance: 1e-6, Alpha: 0.1}

	for _, alg := range []string{AlgGDFixed, AlgGDLineSearch, AlgNewton, AlgLBFGS} {
		records, err := Run(alg, obj, []float64{0.1, 0.1, 0}, opts)
		require.NoError(t, err, alg)
		assert.LessOrEqual(t, len(records), 25, alg)

		if len(records) < 25 {
			sum := Summarize(obj, []float64{0.1, 0.1, 0}, records, opts)
			assert.Less(t, sum.FinalGradientNorm, opts.Tolerance,
				"%s stopped early so the tolerance must be met", alg)
		}
	}
}

// TestExampleScenario mirrors the canonical configuration: two separated
// clusters, w0 = [0.1, 0.1, 0], lambda = 1e-4, fixed alpha = 0.1.
func TestExampleScenario(t *testing.T) {
	clusters := dataset.TwoClusters(50, 0.5, 7)
	obj := objective.NewLogisticRegression(clusters, 1e-4)
	w0 := []float64{0.1, 0.1, 0}
	opts := Options{MaxIterations: 100, Tolerance: 1e-6, Alpha: 0.1, C1: 1e-4}

	records := GradientDescentFixed(obj, w0, opts)
	require.NotEmpty(t, records)

	// Loss decreases monotonically across the whole trace.
	for i, rec := range records {
		assert.Less(t, rec.NewLoss, rec.Loss, "iteration %d must decrease the loss", i)
		if i > 0 {
			assert.Equal(t, records[i-1].WNew, rec.W, "trace must chain iterates")
		}
	}

	sum := Summarize(obj, w0, records, opts)
	assert.Less(t, sum.FinalLoss, records[0].Loss)
	assert.Less(t, sum.FinalGradientNorm, records[0].GradientNorm)
}

// TestExampleScenarioNewton runs the same scenario with Newton, which should
// reach a tight gradient norm within the budget.
func TestExampleScenarioNewton(t *testing.T) {
	clusters := dataset.TwoClusters(50, 0.5, 7)
	obj := objective.NewLogisticRegression(clusters, 1e-4)
	w0 := []float64{0.1, 0.1, 0}
	opts := Options{MaxIterations: 50, Tolerance: 1e-3}

	records := Newton(obj, w0, opts)
	sum := Summarize(obj, w0, records, opts)

	assert.True(t, sum.Converged, "newton should drive the gradient below 1e-3")
	assert.Less(t, sum.FinalGradientNorm, 1e-3)
	assertUpdateConsistency(t, records)
}

func TestRunUnknownAlgorithm(t *testing.T) {
	_, err := Run("sgd", objective.Quadratic{}, []float64{0, 0}, Options{})
	assert.Error(t, err)
}

func TestRunNewtonNeedsHessian(t *testing.T) {
	clusters := dataset.TwoClusters(10, 0.3, 1)
	obj := objective.NewSoftMarginSVM(clusters, 0.01)

	_, err := Run(AlgNewton, obj, []float64{0, 0, 0}, Options{})
	assert.Error(t, err, "hinge loss has no Hessian")
}

func TestSummarizeEmptyTrace(t *testing.T) {
	obj := objective.Quadratic{}
	sum := Summarize(obj, []float64{0, 0}, nil, Options{Tolerance: 1e-6})
	assert.True(t, sum.Converged)
	assert.Equal(t, 0, sum.Iterations)
	assert.Equal(t, []float64{0, 0}, sum.FinalW)
}
