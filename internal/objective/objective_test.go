package objective

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optviz/gradlab/internal/dataset"
)

// numericalGradient approximates the gradient by central differences, the
// standard cross-check for the analytic formulas.
func numericalGradient(obj Objective, w []float64) []float64 {
	const h = 1e-6
	grad := make([]float64, len(w))
	for i := range w {
		plus := append([]float64{}, w...)
		minus := append([]float64{}, w...)
		plus[i] += h
		minus[i] -= h
		grad[i] = (obj.Loss(plus) - obj.Loss(minus)) / (2 * h)
	}
	return grad
}

func testSet() *dataset.Set {
	return &dataset.Set{Points: []dataset.Point{
		{X1: -2.1, X2: -1.9, Y: 0},
		{X1: -1.8, X2: -2.2, Y: 0},
		{X1: 2.0, X2: 1.8, Y: 1},
		{X1: 1.9, X2: 2.1, Y: 1},
	}}
}

func TestLogisticLossAtZero(t *testing.T) {
	obj := NewLogisticRegression(testSet(), 0)
	// sigma(0) = 0.5 for every point, so the mean log-loss is ln 2.
	assert.InDelta(t, math.Log(2), obj.Loss([]float64{0, 0, 0}), 1e-12)
}

func TestLogisticGradientMatchesNumerical(t *testing.T) {
	obj := NewLogisticRegression(testSet(), 0.01)
	w := []float64{0.3, -0.2, 0.1}

	got := obj.Gradient(w)
	want := numericalGradient(obj, w)
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "gradient component %d", i)
	}
}

func TestLogisticBiasUnregularized(t *testing.T) {
	data := testSet()
	w := []float64{0, 0, 2}

	plain := NewLogisticRegression(data, 0)
	reg := NewLogisticRegression(data, 10)

	// Only w2 is nonzero, so the L2 term contributes nothing.
	assert.InDelta(t, plain.Loss(w), reg.Loss(w), 1e-12)
	assert.InDelta(t, plain.Gradient(w)[2], reg.Gradient(w)[2], 1e-12)
}

func TestLogisticHessianSymmetricAndRegularized(t *testing.T) {
	obj := NewLogisticRegression(testSet(), 0.5)
	h := obj.Hessian([]float64{0.1, 0.1, 0})

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, h[j][i], h[i][j], 1e-12, "Hessian must be symmetric")
		}
	}

	noReg := NewLogisticRegression(testSet(), 0).Hessian([]float64{0.1, 0.1, 0})
	assert.InDelta(t, noReg[0][0]+0.5, h[0][0], 1e-12)
	assert.InDelta(t, noReg[1][1]+0.5, h[1][1], 1e-12)
	assert.InDelta(t, noReg[2][2], h[2][2], 1e-12, "bias diagonal must not be regularized")
}

func TestLogisticExtremeWeightsStayFinite(t *testing.T) {
	obj := NewLogisticRegression(testSet(), 0)
	// Confident-and-wrong weights drive sigma to the clipped extremes; the
	// loss must stay finite thanks to the probability clamp.
	loss := obj.Loss([]float64{-1000, -1000, 0})
	assert.False(t, math.IsInf(loss, 0))
	assert.False(t, math.IsNaN(loss))
}

func TestPureProblemGradients(t *testing.T) {
	w := []float64{0.7, -1.3}
	for _, obj := range []Objective{Quadratic{}, IllConditionedQuadratic{}, Rosenbrock{}, NonConvexSaddle{}} {
		got := obj.Gradient(w)
		want := numericalGradient(obj, w)
		for i := range want {
			assert.InDelta(t, want[i], got[i], 1e-3, "%s gradient component %d", obj.Name(), i)
		}
	}
}

func TestRosenbrockMinimum(t *testing.T) {
	obj := Rosenbrock{}
	assert.InDelta(t, 0.0, obj.Loss([]float64{1, 1}), 1e-12)
	g := obj.Gradient([]float64{1, 1})
	assert.InDelta(t, 0.0, g[0], 1e-12)
	assert.InDelta(t, 0.0, g[1], 1e-12)
}

func TestSquaredHingeGradientMatchesNumerical(t *testing.T) {
	obj := NewSquaredHingeSVM(testSet(), 0.01)
	w := []float64{0.2, 0.1, -0.05}

	got := obj.Gradient(w)
	want := numericalGradient(obj, w)
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "gradient component %d", i)
	}
}

func TestPerceptronZeroAtSolution(t *testing.T) {
	// A separating hyperplane with no regularization has zero perceptron loss.
	obj := NewPerceptronSVM(testSet(), 0)
	assert.Equal(t, 0.0, obj.Loss([]float64{1, 1, 0}))
}

func TestByName(t *testing.T) {
	data := testSet()

	cases := []struct {
		problem string
		variant string
		want    string
	}{
		{"quadratic", "", "quadratic"},
		{"ill-conditioned-quadratic", "", "ill-conditioned-quadratic"},
		{"rosenbrock", "", "rosenbrock"},
		{"non-convex-saddle", "", "non-convex-saddle"},
		{"logistic-regression", "", "logistic-regression"},
		{"separating-hyperplane", "soft-margin", "separating-hyperplane/soft-margin"},
		{"separating-hyperplane", "perceptron", "separating-hyperplane/perceptron"},
		{"separating-hyperplane", "squared-hinge", "separating-hyperplane/squared-hinge"},
	}
	for _, tc := range cases {
		obj, err := ByName(tc.problem, tc.variant, data, 0.01)
		require.NoError(t, err, tc.want)
		assert.Equal(t, tc.want, obj.Name())
	}

	_, err := ByName("nope", "", nil, 0)
	assert.Error(t, err)

	_, err = ByName("logistic-regression", "", nil, 0)
	assert.Error(t, err, "data-based problem without dataset must fail")

	_, err = ByName("separating-hyperplane", "bogus", data, 0)
	assert.Error(t, err)
}
