package solver

import "github.com/optviz/gradlab/internal/linalg"

// Trial is one backtracking line-search evaluation. Every trial is logged,
// accepted or not, so a consumer can replay the search step by step.
type Trial struct {
	Alpha     float64 `json:"alpha"`
	Loss      float64 `json:"loss"`
	ArmijoRHS float64 `json:"armijoRHS"`
	Satisfied bool    `json:"satisfied"`
}

// MemoryPair is one L-BFGS curvature pair: s is the parameter change of an
// accepted step, y the corresponding gradient change, rho = 1/(s^T y).
type MemoryPair struct {
	S   []float64 `json:"s"`
	Y   []float64 `json:"y"`
	Rho float64   `json:"rho"`
}

// FirstLoopRow records one backward-pass step of the two-loop recursion
// (newest pair first). Q is the working vector after the update.
type FirstLoopRow struct {
	Pair  int       `json:"pair"`
	Rho   float64   `json:"rho"`
	SDotQ float64   `json:"sDotQ"`
	Alpha float64   `json:"alpha"`
	Q     []float64 `json:"q"`
}

// SecondLoopRow records one forward-pass step of the two-loop recursion
// (oldest pair first). R is the working vector after the correction.
type SecondLoopRow struct {
	Pair       int       `json:"pair"`
	YDotR      float64   `json:"yDotR"`
	Beta       float64   `json:"beta"`
	Correction float64   `json:"correction"`
	R          []float64 `json:"r"`
}

// NewtonDiag carries the per-iteration second-order diagnostics.
type NewtonDiag struct {
	Hessian         linalg.Matrix `json:"hessian"`
	Eigenvalues     []float64     `json:"eigenvalues"` // descending by magnitude
	ConditionNumber float64       `json:"conditionNumber"`
	// FellBack is true when the Hessian was singular and the step degraded
	// to steepest descent for this iteration only.
	FellBack bool `json:"fellBack,omitempty"`
}

// LBFGSDiag carries the memory snapshot used for this step (oldest first)
// and, when the two-loop recursion ran, its per-pair diagnostics.
type LBFGSDiag struct {
	Memory     []MemoryPair    `json:"memory"`
	Gamma      float64         `json:"gamma,omitempty"`
	FirstLoop  []FirstLoopRow  `json:"firstLoop,omitempty"`
	SecondLoop []SecondLoopRow `json:"secondLoop,omitempty"`
}

// Record is one completed iteration. All vectors are snapshots owned by the
// record; the solver loop never aliases its mutable state into history.
// Invariant: WNew = W + Alpha*Direction, componentwise.
type Record struct {
	Index        int       `json:"index"`
	W            []float64 `json:"w"`
	Loss         float64   `json:"loss"`
	Gradient     []float64 `json:"gradient"`
	GradientNorm float64   `json:"gradientNorm"`
	Direction    []float64 `json:"direction"`
	Alpha        float64   `json:"alpha"`
	WNew         []float64 `json:"wNew"`
	NewLoss      float64   `json:"newLoss"`

	// Trials is the ordered line-search log; empty for the fixed-step
	// variant. Exhausted marks the accept-last fallback, where the smallest
	// tried alpha was taken without satisfying the Armijo condition.
	Trials    []Trial `json:"lineSearchTrials,omitempty"`
	Exhausted bool    `json:"exhausted,omitempty"`

	// At most one of the following is set, depending on the algorithm.
	Newton *NewtonDiag `json:"newton,omitempty"`
	LBFGS  *LBFGSDiag  `json:"lbfgs,omitempty"`
}

func cloneMemory(memory []MemoryPair) []MemoryPair {
	out := make([]MemoryPair, len(memory))
	for i, pair := range memory {
		out[i] = MemoryPair{
			S:   linalg.Clone(pair.S),
			Y:   linalg.Clone(pair.Y),
			Rho: pair.Rho,
		}
	}
	return out
}
