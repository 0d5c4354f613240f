package objective

import (
	"fmt"

	"github.com/optviz/gradlab/internal/dataset"
	"github.com/optviz/gradlab/internal/linalg"
)

// Objective is a smooth (or at least subdifferentiable) function to
// minimize. Loss and Gradient are pure functions of w with no side effects,
// so concurrent evaluation from separate solver runs is safe.
type Objective interface {
	// Name identifies the objective in logs and run metadata.
	Name() string
	// Dim is the length of the parameter vector.
	Dim() int
	// Loss evaluates the objective at w.
	Loss(w []float64) float64
	// Gradient evaluates the gradient at w.
	Gradient(w []float64) []float64
}

// HessianObjective is implemented by objectives with second-order
// information. Newton's method requires it.
type HessianObjective interface {
	Objective
	// Hessian evaluates the Hessian (or a Gauss-Newton surrogate) at w.
	Hessian(w []float64) linalg.Matrix
}

// ByName builds an objective from the CLI-facing problem and variant names.
// Data-based problems require a dataset; pure 2-D problems ignore data and
// lambda.
func ByName(problem, variant string, data *dataset.Set, lambda float64) (Objective, error) {
	switch problem {
	case "quadratic":
		return Quadratic{}, nil
	case "ill-conditioned-quadratic":
		return IllConditionedQuadratic{}, nil
	case "rosenbrock":
		return Rosenbrock{}, nil
	case "non-convex-saddle":
		return NonConvexSaddle{}, nil
	case "logistic-regression":
		if data == nil {
			return nil, fmt.Errorf("problem %q requires a dataset", problem)
		}
		return NewLogisticRegression(data, lambda), nil
	case "separating-hyperplane":
		if data == nil {
			return nil, fmt.Errorf("problem %q requires a dataset", problem)
		}
		switch variant {
		case "soft-margin":
			return NewSoftMarginSVM(data, lambda), nil
		case "perceptron":
			return NewPerceptronSVM(data, lambda), nil
		case "squared-hinge":
			return NewSquaredHingeSVM(data, lambda), nil
		default:
			return nil, fmt.Errorf("unknown separating-hyperplane variant: %q", variant)
		}
	default:
		return nil, fmt.Errorf("unknown problem: %q", problem)
	}
}
