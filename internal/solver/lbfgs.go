package solver

import (
	"log/slog"

	"github.com/optviz/gradlab/internal/linalg"
	"github.com/optviz/gradlab/internal/objective"
)

// curvatureEps is the minimum s^T y for a pair to enter the memory. Pairs
// below it would break positive-definiteness of the implicit approximation
// and are skipped silently; that is expected behavior, not an error.
const curvatureEps = 1e-10

// lbfgsDir holds the bounded curvature-pair memory and applies the implicit
// inverse Hessian via the two-loop recursion.
type lbfgsDir struct {
	obj     objective.Objective
	m       int
	damping float64
	memory  []MemoryPair
}

func (l *lbfgsDir) direction(_, g []float64, rec *Record) []float64 {
	diag := &LBFGSDiag{Memory: cloneMemory(l.memory)}
	rec.LBFGS = diag

	if len(l.memory) == 0 {
		// Nothing learned yet: steepest descent.
		return linalg.Scale(-1, g)
	}

	n := len(l.memory)
	alphas := make([]float64, n)

	// First loop, newest to oldest: peel off each pair's contribution.
	q := linalg.Clone(g)
	diag.FirstLoop = make([]FirstLoopRow, 0, n)
	for i := n - 1; i >= 0; i-- {
		pair := l.memory[i]
		sDotQ := linalg.Dot(pair.S, q)
		alphas[i] = pair.Rho * sDotQ
		q = linalg.AddScaled(q, -alphas[i], pair.Y)

		diag.FirstLoop = append(diag.FirstLoop, FirstLoopRow{
			Pair:  i,
			Rho:   pair.Rho,
			SDotQ: sDotQ,
			Alpha: alphas[i],
			Q:     linalg.Clone(q),
		})
	}

	// Initial scaling from the most recent pair, optionally damped.
	last := l.memory[n-1]
	gamma := linalg.Dot(last.S, last.Y) / linalg.Dot(last.Y, last.Y)
	if l.damping > 0 {
		gamma = gamma / (1 + l.damping*gamma)
	}
	diag.Gamma = gamma
	r := linalg.Scale(gamma, q)

	// Second loop, oldest to newest: reapply the corrections.
	diag.SecondLoop = make([]SecondLoopRow, 0, n)
	for i := 0; i < n; i++ {
		pair := l.memory[i]
		yDotR := linalg.Dot(pair.Y, r)
		beta := pair.Rho * yDotR
		r = linalg.AddScaled(r, alphas[i]-beta, pair.S)

		diag.SecondLoop = append(diag.SecondLoop, SecondLoopRow{
			Pair:       i,
			YDotR:      yDotR,
			Beta:       beta,
			Correction: alphas[i] - beta,
			R:          linalg.Clone(r),
		})
	}

	// r now holds H^{-1}g implicitly; descend against it.
	return linalg.Scale(-1, r)
}

func (l *lbfgsDir) observe(w, wNew, g []float64) {
	s := linalg.Sub(wNew, w)
	y := linalg.Sub(l.obj.Gradient(wNew), g)

	sDotY := linalg.Dot(s, y)
	if sDotY <= curvatureEps {
		slog.Debug("Skipping curvature pair", "s_dot_y", sDotY)
		return
	}

	l.memory = append(l.memory, MemoryPair{S: s, Y: y, Rho: 1 / sDotY})
	if len(l.memory) > l.m {
		l.memory = l.memory[1:]
	}
}

// LBFGS runs limited-memory BFGS with backtracking line search. Each record
// carries the memory snapshot used for its step (oldest pair first) and the
// per-pair two-loop diagnostics when the recursion ran.
func LBFGS(obj objective.Objective, w0 []float64, opts Options) []Record {
	opts = opts.withDefaults()
	slog.Info("Starting lbfgs", "objective", obj.Name(), "memory", opts.Memory, "damping", opts.Damping, "max_iterations", opts.MaxIterations)

	dir := &lbfgsDir{obj: obj, m: opts.Memory, damping: opts.Damping}
	records := run(obj, w0, opts, dir, backtrackStep{opts: opts})

	slog.Info("lbfgs complete", "objective", obj.Name(), "iterations", len(records))
	return records
}
