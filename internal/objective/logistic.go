package objective

import (
	"math"

	"github.com/optviz/gradlab/internal/dataset"
	"github.com/optviz/gradlab/internal/linalg"
)

const (
	// sigmoidClamp bounds the sigmoid input so exp never overflows.
	sigmoidClamp = 500
	// probEps keeps predicted probabilities away from exactly 0 and 1 so the
	// log-loss stays finite even on perfectly confident predictions.
	probEps = 1e-15
)

// sigmoid evaluates 1/(1+exp(-z)) with the input clamped to [-500, 500].
func sigmoid(z float64) float64 {
	if z > sigmoidClamp {
		z = sigmoidClamp
	} else if z < -sigmoidClamp {
		z = -sigmoidClamp
	}
	return 1 / (1 + math.Exp(-z))
}

// LogisticRegression is the mean negative log-likelihood of the sigmoid
// model sigma(w0*x1 + w1*x2 + w2) over a 2-D dataset, plus an L2 penalty
// (lambda/2)*(w0^2+w1^2). The bias w2 is never regularized.
type LogisticRegression struct {
	data   *dataset.Set
	lambda float64
}

// NewLogisticRegression builds the objective for the given dataset and
// regularization coefficient (lambda >= 0).
func NewLogisticRegression(data *dataset.Set, lambda float64) *LogisticRegression {
	return &LogisticRegression{data: data, lambda: lambda}
}

func (l *LogisticRegression) Name() string { return "logistic-regression" }

func (l *LogisticRegression) Dim() int { return 3 }

// Loss evaluates the regularized cross-entropy at w.
func (l *LogisticRegression) Loss(w []float64) float64 {
	n := float64(len(l.data.Points))

	var sum float64
	for _, p := range l.data.Points {
		prob := sigmoid(linalg.Dot(w, p.Features()))
		if prob < probEps {
			prob = probEps
		} else if prob > 1-probEps {
			prob = 1 - probEps
		}
		if p.Y == 1 {
			sum -= math.Log(prob)
		} else {
			sum -= math.Log(1 - prob)
		}
	}

	reg := (l.lambda / 2) * (w[0]*w[0] + w[1]*w[1])
	return sum/n + reg
}

// Gradient evaluates mean (sigma(w^T x) - y)*x plus lambda*[w0, w1, 0].
func (l *LogisticRegression) Gradient(w []float64) []float64 {
	n := float64(len(l.data.Points))

	grad := make([]float64, 3)
	for _, p := range l.data.Points {
		x := p.Features()
		err := sigmoid(linalg.Dot(w, x)) - float64(p.Y)
		for j := range grad {
			grad[j] += err * x[j]
		}
	}
	for j := range grad {
		grad[j] /= n
	}

	grad[0] += l.lambda * w[0]
	grad[1] += l.lambda * w[1]
	return grad
}

// Hessian evaluates the Gauss-Newton form mean sigma*(1-sigma)*x*x^T, with
// lambda added to the (0,0) and (1,1) diagonal entries only. This form is
// positive semidefinite for logistic loss.
func (l *LogisticRegression) Hessian(w []float64) linalg.Matrix {
	n := float64(len(l.data.Points))

	h := linalg.NewMatrix(3)
	for _, p := range l.data.Points {
		x := p.Features()
		s := sigmoid(linalg.Dot(w, x))
		d := s * (1 - s)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				h[i][j] += d * x[i] * x[j]
			}
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			h[i][j] /= n
		}
	}

	h[0][0] += l.lambda
	h[1][1] += l.lambda
	return h
}
