package objective

import (
	"github.com/optviz/gradlab/internal/dataset"
	"github.com/optviz/gradlab/internal/linalg"
)

// The separating-hyperplane variants operate on signed labels in {-1, +1}.
// Their lambda conventions differ on purpose: the soft-margin and
// squared-hinge forms weight the data term, while the perceptron weights the
// regularizer. The bias w2 never enters a regularizer.

// SoftMarginSVM is ||w||^2/2 + lambda*sum(max(0, 1-y*z)). The hinge makes it
// non-smooth; Gradient returns a subgradient, and there is no Hessian.
type SoftMarginSVM struct {
	data   *dataset.Set
	lambda float64
}

// NewSoftMarginSVM builds the hinge-loss objective.
func NewSoftMarginSVM(data *dataset.Set, lambda float64) *SoftMarginSVM {
	return &SoftMarginSVM{data: data, lambda: lambda}
}

func (s *SoftMarginSVM) Name() string { return "separating-hyperplane/soft-margin" }
func (s *SoftMarginSVM) Dim() int     { return 3 }

func (s *SoftMarginSVM) Loss(w []float64) float64 {
	var hinge float64
	for _, p := range s.data.Points {
		margin := 1 - p.SignedLabel()*linalg.Dot(w, p.Features())
		if margin > 0 {
			hinge += margin
		}
	}
	return 0.5*(w[0]*w[0]+w[1]*w[1]) + s.lambda*hinge
}

func (s *SoftMarginSVM) Gradient(w []float64) []float64 {
	grad := []float64{w[0], w[1], 0}
	for _, p := range s.data.Points {
		x := p.Features()
		y := p.SignedLabel()
		if 1-y*linalg.Dot(w, x) > 0 {
			for j := range grad {
				grad[j] -= s.lambda * y * x[j]
			}
		}
	}
	return grad
}

// PerceptronSVM is sum(max(0, -y*z)) + (lambda/2)*||w||^2.
type PerceptronSVM struct {
	data   *dataset.Set
	lambda float64
}

// NewPerceptronSVM builds the perceptron objective.
func NewPerceptronSVM(data *dataset.Set, lambda float64) *PerceptronSVM {
	return &PerceptronSVM{data: data, lambda: lambda}
}

func (s *PerceptronSVM) Name() string { return "separating-hyperplane/perceptron" }
func (s *PerceptronSVM) Dim() int     { return 3 }

func (s *PerceptronSVM) Loss(w []float64) float64 {
	var sum float64
	for _, p := range s.data.Points {
		v := -p.SignedLabel() * linalg.Dot(w, p.Features())
		if v > 0 {
			sum += v
		}
	}
	return sum + (s.lambda/2)*(w[0]*w[0]+w[1]*w[1])
}

func (s *PerceptronSVM) Gradient(w []float64) []float64 {
	grad := []float64{s.lambda * w[0], s.lambda * w[1], 0}
	for _, p := range s.data.Points {
		x := p.Features()
		y := p.SignedLabel()
		if y*linalg.Dot(w, x) < 0 { // misclassified
			for j := range grad {
				grad[j] -= y * x[j]
			}
		}
	}
	return grad
}

// SquaredHingeSVM is ||w||^2/2 + lambda*sum(max(0, 1-y*z)^2), the smooth SVM
// variant. Smoothness buys it a well-defined Hessian, so Newton applies.
type SquaredHingeSVM struct {
	data   *dataset.Set
	lambda float64
}

// NewSquaredHingeSVM builds the squared-hinge objective.
func NewSquaredHingeSVM(data *dataset.Set, lambda float64) *SquaredHingeSVM {
	return &SquaredHingeSVM{data: data, lambda: lambda}
}

func (s *SquaredHingeSVM) Name() string { return "separating-hyperplane/squared-hinge" }
func (s *SquaredHingeSVM) Dim() int     { return 3 }

func (s *SquaredHingeSVM) Loss(w []float64) float64 {
	var sum float64
	for _, p := range s.data.Points {
		margin := 1 - p.SignedLabel()*linalg.Dot(w, p.Features())
		if margin > 0 {
			sum += margin * margin
		}
	}
	return 0.5*(w[0]*w[0]+w[1]*w[1]) + s.lambda*sum
}

func (s *SquaredHingeSVM) Gradient(w []float64) []float64 {
	grad := []float64{w[0], w[1], 0}
	for _, p := range s.data.Points {
		x := p.Features()
		y := p.SignedLabel()
		margin := 1 - y*linalg.Dot(w, x)
		if margin > 0 {
			for j := range grad {
				grad[j] -= 2 * s.lambda * margin * y * x[j]
			}
		}
	}
	return grad
}

// Hessian is diag(1,1,0) from the regularizer plus 2*lambda*x*x^T over the
// margin-violating points.
func (s *SquaredHingeSVM) Hessian(w []float64) linalg.Matrix {
	h := linalg.Matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 0}}
	for _, p := range s.data.Points {
		x := p.Features()
		if 1-p.SignedLabel()*linalg.Dot(w, x) > 0 {
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					h[i][j] += 2 * s.lambda * x[i] * x[j]
				}
			}
		}
	}
	return h
}
