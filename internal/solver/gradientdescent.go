package solver

import (
	"log/slog"

	"github.com/optviz/gradlab/internal/linalg"
	"github.com/optviz/gradlab/internal/objective"
)

// steepest always points down the gradient and keeps no state.
type steepest struct{}

func (steepest) direction(_, g []float64, _ *Record) []float64 {
	return linalg.Scale(-1, g)
}

func (steepest) observe(_, _, _ []float64) {}

// GradientDescentFixed iterates w <- w - alpha*g with the constant step size
// from opts.Alpha. No line search runs; a diverging configuration diverges.
func GradientDescentFixed(obj objective.Objective, w0 []float64, opts Options) []Record {
	opts = opts.withDefaults()
	slog.Info("Starting gd-fixed", "objective", obj.Name(), "alpha", opts.Alpha, "max_iterations", opts.MaxIterations)

	records := run(obj, w0, opts, steepest{}, fixedStep{alpha: opts.Alpha})

	slog.Info("gd-fixed complete", "objective", obj.Name(), "iterations", len(records))
	return records
}

// GradientDescentLineSearch iterates along p = -g with the step size chosen
// by backtracking line search each iteration.
func GradientDescentLineSearch(obj objective.Objective, w0 []float64, opts Options) []Record {
	opts = opts.withDefaults()
	slog.Info("Starting gd-linesearch", "objective", obj.Name(), "c1", opts.C1, "max_iterations", opts.MaxIterations)

	records := run(obj, w0, opts, steepest{}, backtrackStep{opts: opts})

	slog.Info("gd-linesearch complete", "objective", obj.Name(), "iterations", len(records))
	return records
}
