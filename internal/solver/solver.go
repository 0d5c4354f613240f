// Package solver implements four step-recorded optimization algorithms:
// fixed-step gradient descent, gradient descent with backtracking line
// search, damped Newton's method, and limited-memory BFGS.
//
// Every entry point returns the full, ordered trace of iteration records so
// a caller can reconstruct and replay the run step by step. The algorithms
// are synchronous, allocation-per-call, and share no state: concurrent runs
// with different hyperparameters are safe.
package solver

import (
	"fmt"
	"log/slog"

	"github.com/optviz/gradlab/internal/linalg"
	"github.com/optviz/gradlab/internal/objective"
)

// Options holds the shared and per-algorithm hyperparameters. Zero values
// are replaced by defaults; see withDefaults.
type Options struct {
	MaxIterations int     // iteration budget (default 100)
	Tolerance     float64 // gradient-norm stopping threshold (default 1e-6)
	Alpha         float64 // constant step size for gd-fixed (default 0.1)
	C1            float64 // Armijo sufficient-decrease constant (default 1e-4)
	Contraction   float64 // line-search step shrink factor (default 0.5)
	MaxTrials     int     // line-search trial budget (default 20)
	Memory        int     // L-BFGS history size M (default 10)
	Damping       float64 // Levenberg-Marquardt damping lambda (default 0)

	// OnRecord, when set, is called synchronously with each completed
	// iteration record before the next iteration starts. Callers use it to
	// stream traces; it must not mutate the record.
	OnRecord func(Record)
}

func (o Options) withDefaults() Options {
	if o.MaxIterations <= 0 {
		o.MaxIterations = 100
	}
	if o.Tolerance <= 0 {
		o.Tolerance = 1e-6
	}
	if o.Alpha <= 0 {
		o.Alpha = 0.1
	}
	if o.C1 <= 0 {
		o.C1 = 1e-4
	}
	if o.Contraction <= 0 || o.Contraction >= 1 {
		o.Contraction = 0.5
	}
	if o.MaxTrials <= 0 {
		o.MaxTrials = 20
	}
	if o.Memory <= 0 {
		o.Memory = 10
	}
	return o
}

// directioner computes the search direction for the current iterate and
// writes any algorithm-specific diagnostics onto the record. observe runs
// after the step is accepted so stateful strategies can update themselves.
type directioner interface {
	direction(w, g []float64, rec *Record) []float64
	observe(w, wNew, g []float64)
}

// stepSizer selects the step length along the chosen direction, logging
// line-search trials onto the record when a search actually runs.
type stepSizer interface {
	step(obj objective.Objective, w []float64, f0 float64, g, p []float64, rec *Record) (alpha, newLoss float64)
}

// fixedStep applies a caller-supplied constant step size. Divergence is not
// auto-corrected; that is the fixed-step contract.
type fixedStep struct {
	alpha float64
}

func (f fixedStep) step(obj objective.Objective, w []float64, _ float64, _, p []float64, _ *Record) (float64, float64) {
	return f.alpha, obj.Loss(linalg.AddScaled(w, f.alpha, p))
}

// backtrackStep runs the Armijo backtracking search of linesearch.go.
type backtrackStep struct {
	opts Options
}

func (b backtrackStep) step(obj objective.Objective, w []float64, f0 float64, g, p []float64, rec *Record) (float64, float64) {
	res := backtrack(obj, w, f0, g, p, b.opts)
	rec.Trials = res.Trials
	rec.Exhausted = res.Exhausted
	return res.Alpha, res.Loss
}

// run is the loop shared by all four algorithms: gradient, direction, step
// size, update, record. It stops once the gradient norm drops below the
// tolerance or the budget is exhausted, whichever comes first.
func run(obj objective.Objective, w0 []float64, opts Options, dir directioner, sizer stepSizer) []Record {
	w := linalg.Clone(w0)
	records := make([]Record, 0, opts.MaxIterations)

	for i := 0; i < opts.MaxIterations; i++ {
		g := obj.Gradient(w)
		gNorm := linalg.Norm(g)
		if gNorm < opts.Tolerance {
			slog.Debug("Gradient tolerance reached", "objective", obj.Name(), "iteration", i, "grad_norm", gNorm)
			break
		}

		f0 := obj.Loss(w)
		rec := Record{
			Index:        i,
			W:            linalg.Clone(w),
			Loss:         f0,
			Gradient:     linalg.Clone(g),
			GradientNorm: gNorm,
		}

		p := dir.direction(w, g, &rec)
		alpha, newLoss := sizer.step(obj, w, f0, g, p, &rec)
		wNew := linalg.AddScaled(w, alpha, p)

		rec.Direction = linalg.Clone(p)
		rec.Alpha = alpha
		rec.WNew = linalg.Clone(wNew)
		rec.NewLoss = newLoss
		records = append(records, rec)
		if opts.OnRecord != nil {
			opts.OnRecord(rec)
		}

		dir.observe(w, wNew, g)
		w = wNew
	}

	return records
}

// Summary condenses a trace for status displays and run metadata.
type Summary struct {
	Iterations        int       `json:"iterations"`
	Converged         bool      `json:"converged"`
	FinalLoss         float64   `json:"finalLoss"`
	FinalW            []float64 `json:"finalW"`
	FinalGradientNorm float64   `json:"finalGradientNorm"`
}

// Summarize evaluates the post-run state. FinalW is the last accepted
// iterate (or w0 when the trace is empty, e.g. when w0 already satisfies
// the tolerance).
func Summarize(obj objective.Objective, w0 []float64, records []Record, opts Options) Summary {
	opts = opts.withDefaults()

	finalW := linalg.Clone(w0)
	if len(records) > 0 {
		finalW = linalg.Clone(records[len(records)-1].WNew)
	}
	gradNorm := linalg.Norm(obj.Gradient(finalW))

	return Summary{
		Iterations:        len(records),
		Converged:         gradNorm < opts.Tolerance,
		FinalLoss:         obj.Loss(finalW),
		FinalW:            finalW,
		FinalGradientNorm: gradNorm,
	}
}

// Algorithm names accepted by Run, matching the CLI contract.
const (
	AlgGDFixed      = "gd-fixed"
	AlgGDLineSearch = "gd-linesearch"
	AlgNewton       = "newton"
	AlgLBFGS        = "lbfgs"
)

// Run dispatches by algorithm name. Newton requires an objective with
// second-order information and fails otherwise.
func Run(algorithm string, obj objective.Objective, w0 []float64, opts Options) ([]Record, error) {
	switch algorithm {
	case AlgGDFixed:
		return GradientDescentFixed(obj, w0, opts), nil
	case AlgGDLineSearch:
		return GradientDescentLineSearch(obj, w0, opts), nil
	case AlgNewton:
		hobj, ok := obj.(objective.HessianObjective)
		if !ok {
			return nil, fmt.Errorf("objective %q has no Hessian; newton is not applicable", obj.Name())
		}
		return Newton(hobj, w0, opts), nil
	case AlgLBFGS:
		return LBFGS(obj, w0, opts), nil
	default:
		return nil, fmt.Errorf("unknown algorithm: %q", algorithm)
	}
}
