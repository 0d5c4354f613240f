package solver

import (
	"log/slog"

	"github.com/optviz/gradlab/internal/linalg"
	"github.com/optviz/gradlab/internal/objective"
)

// newtonDir solves H p = -g each iteration, with optional
// Levenberg-Marquardt damping of the Hessian before inversion.
type newtonDir struct {
	obj     objective.HessianObjective
	damping float64
}

func (n *newtonDir) direction(w, g []float64, rec *Record) []float64 {
	hess := n.obj.Hessian(w)

	// Diagnostics describe the raw landscape; damping only affects the step.
	eigs := linalg.Eigenvalues(hess)
	diag := &NewtonDiag{
		Hessian:         hess.Clone(),
		Eigenvalues:     eigs,
		ConditionNumber: linalg.ConditionNumber(eigs),
	}
	rec.Newton = diag

	toInvert := hess
	if n.damping > 0 {
		all := make([]int, hess.Dim())
		for i := range all {
			all[i] = i
		}
		toInvert = hess.AddDiag(n.damping, all...)
	}

	inv, ok := toInvert.Invert()
	if !ok {
		// Singular Hessian: degrade to steepest descent for this step only.
		diag.FellBack = true
		slog.Debug("Singular Hessian, falling back to steepest descent", "iteration", rec.Index)
		return linalg.Scale(-1, g)
	}
	return linalg.Scale(-1, inv.MulVec(g))
}

func (*newtonDir) observe(_, _, _ []float64) {}

// Newton runs the (optionally damped) Newton's method with backtracking line
// search. Each record carries the Hessian, its eigenvalues sorted by
// descending magnitude, and the condition number |l_max|/|l_min|.
func Newton(obj objective.HessianObjective, w0 []float64, opts Options) []Record {
	opts = opts.withDefaults()
	slog.Info("Starting newton", "objective", obj.Name(), "damping", opts.Damping, "max_iterations", opts.MaxIterations)

	dir := &newtonDir{obj: obj, damping: opts.Damping}
	records := run(obj, w0, opts, dir, backtrackStep{opts: opts})

	slog.Info("newton complete", "objective", obj.Name(), "iterations", len(records))
	return records
}
