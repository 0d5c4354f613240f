package objective

import "github.com/optviz/gradlab/internal/linalg"

// The pure 2-D problems below have analytic gradients and Hessians. They are
// the standard fixtures for exercising the solvers without a dataset.

// Quadratic is the well-conditioned bowl f(w) = w0^2 + w1^2.
type Quadratic struct{}

func (Quadratic) Name() string { return "quadratic" }
func (Quadratic) Dim() int     { return 2 }

func (Quadratic) Loss(w []float64) float64 {
	return w[0]*w[0] + w[1]*w[1]
}

func (Quadratic) Gradient(w []float64) []float64 {
	return []float64{2 * w[0], 2 * w[1]}
}

func (Quadratic) Hessian(w []float64) linalg.Matrix {
	return linalg.Matrix{{2, 0}, {0, 2}}
}

// IllConditionedQuadratic is f(w) = w0^2 + 100*w1^2, condition number 100.
type IllConditionedQuadratic struct{}

func (IllConditionedQuadratic) Name() string { return "ill-conditioned-quadratic" }
func (IllConditionedQuadratic) Dim() int     { return 2 }

func (IllConditionedQuadratic) Loss(w []float64) float64 {
	return w[0]*w[0] + 100*w[1]*w[1]
}

func (IllConditionedQuadratic) Gradient(w []float64) []float64 {
	return []float64{2 * w[0], 200 * w[1]}
}

func (IllConditionedQuadratic) Hessian(w []float64) linalg.Matrix {
	return linalg.Matrix{{2, 0}, {0, 200}}
}

// Rosenbrock is the banana function f(w) = (1-w0)^2 + 100*(w1-w0^2)^2.
type Rosenbrock struct{}

func (Rosenbrock) Name() string { return "rosenbrock" }
func (Rosenbrock) Dim() int     { return 2 }

func (Rosenbrock) Loss(w []float64) float64 {
	a := 1 - w[0]
	b := w[1] - w[0]*w[0]
	return a*a + 100*b*b
}

func (Rosenbrock) Gradient(w []float64) []float64 {
	return []float64{
		-2*(1-w[0]) - 400*w[0]*(w[1]-w[0]*w[0]),
		200 * (w[1] - w[0]*w[0]),
	}
}

func (Rosenbrock) Hessian(w []float64) linalg.Matrix {
	h00 := 2 - 400*(w[1]-w[0]*w[0]) + 800*w[0]*w[0]
	h01 := -400 * w[0]
	return linalg.Matrix{{h00, h01}, {h01, 200}}
}

// NonConvexSaddle is f(w) = w0^2 - w1^2, unbounded below. Useful for
// exercising the indefinite-Hessian paths.
type NonConvexSaddle struct{}

func (NonConvexSaddle) Name() string { return "non-convex-saddle" }
func (NonConvexSaddle) Dim() int     { return 2 }

func (NonConvexSaddle) Loss(w []float64) float64 {
	return w[0]*w[0] - w[1]*w[1]
}

func (NonConvexSaddle) Gradient(w []float64) []float64 {
	return []float64{2 * w[0], -2 * w[1]}
}

func (NonConvexSaddle) Hessian(w []float64) linalg.Matrix {
	return linalg.Matrix{{2, 0}, {0, -2}}
}
