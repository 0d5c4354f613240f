package solver

import (
	"github.com/optviz/gradlab/internal/linalg"
	"github.com/optviz/gradlab/internal/objective"
)

// searchResult is the outcome of a backtracking line search.
type searchResult struct {
	Alpha     float64
	Loss      float64
	Trials    []Trial
	Exhausted bool
}

// backtrack runs an Armijo backtracking line search along p from w.
//
// Starting at alpha = 1, each trial evaluates f(w + alpha*p) against the
// sufficient-decrease bound f0 + c1*alpha*(g^T p); failures shrink alpha by
// the contraction factor. Every trial lands in the log. If the trial budget
// runs out, the last (smallest) alpha is accepted anyway so the solver makes
// progress instead of stalling; Exhausted flags that case so callers relying
// on strict descent can detect it.
func backtrack(obj objective.Objective, w []float64, f0 float64, g, p []float64, opts Options) searchResult {
	slope := linalg.Dot(g, p)
	alpha := 1.0

	trials := make([]Trial, 0, opts.MaxTrials)
	var lastLoss float64

	for i := 0; i < opts.MaxTrials; i++ {
		loss := obj.Loss(linalg.AddScaled(w, alpha, p))
		rhs := f0 + opts.C1*alpha*slope
		ok := loss <= rhs

		trials = append(trials, Trial{
			Alpha:     alpha,
			Loss:      loss,
			ArmijoRHS: rhs,
			Satisfied: ok,
		})

		if ok {
			return searchResult{Alpha: alpha, Loss: loss, Trials: trials}
		}

		lastLoss = loss
		if i < opts.MaxTrials-1 {
			alpha *= opts.Contraction
		}
	}

	return searchResult{Alpha: alpha, Loss: lastLoss, Trials: trials, Exhausted: true}
}
