package store

import (
	"time"

	"github.com/optviz/gradlab/internal/solver"
)

// RunConfig holds the configuration of an optimization run. It lives here
// rather than in the server package so that persisted runs do not depend on
// HTTP types.
type RunConfig struct {
	Problem   string    `json:"problem"`
	Variant   string    `json:"variant,omitempty"`
	Algorithm string    `json:"algorithm"`
	Dataset   string    `json:"dataset,omitempty"`
	InitialW  []float64 `json:"initialW"`

	MaxIterations int     `json:"maxIterations"`
	Tolerance     float64 `json:"tolerance"`
	Alpha         float64 `json:"alpha,omitempty"`
	C1            float64 `json:"c1,omitempty"`
	Memory        int     `json:"memory,omitempty"`
	Damping       float64 `json:"damping,omitempty"`
	Lambda        float64 `json:"lambda,omitempty"`
	Seed          int64   `json:"seed,omitempty"`
}

// Options converts the persisted configuration into solver options.
func (c RunConfig) Options() solver.Options {
	return solver.Options{
		MaxIterations: c.MaxIterations,
		Tolerance:     c.Tolerance,
		Alpha:         c.Alpha,
		C1:            c.C1,
		Memory:        c.Memory,
		Damping:       c.Damping,
	}
}

// RunRecord is the persisted metadata of a run: its configuration plus the
// outcome once the run has finished. The per-iteration trace is stored
// separately as JSONL so it can be streamed without loading run.json.
type RunRecord struct {
	// ID is the unique identifier of the run.
	ID string `json:"id"`

	// Config is the full configuration the run was started with.
	Config RunConfig `json:"config"`

	// Summary holds the outcome and is nil while the run is in progress.
	Summary *solver.Summary `json:"summary,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// RunInfo is the listing view of a run: enough to render a table without
// loading iterate vectors.
type RunInfo struct {
	ID        string    `json:"id"`
	Problem   string    `json:"problem"`
	Algorithm string    `json:"algorithm"`
	CreatedAt time.Time `json:"createdAt"`

	// Outcome fields are zero while the run is still in progress.
	Iterations int     `json:"iterations"`
	Converged  bool    `json:"converged"`
	FinalLoss  float64 `json:"finalLoss"`
}

// NewRunRecord creates the initial metadata for a freshly started run.
func NewRunRecord(id string, config RunConfig) *RunRecord {
	return &RunRecord{
		ID:        id,
		Config:    config,
		CreatedAt: time.Now(),
	}
}

// Complete attaches the outcome and stamps the completion time.
func (r *RunRecord) Complete(summary solver.Summary) {
	now := time.Now()
	r.Summary = &summary
	r.CompletedAt = &now
}

// ToInfo converts a full RunRecord to its listing view.
func (r *RunRecord) ToInfo() RunInfo {
	info := RunInfo{
		ID:        r.ID,
		Problem:   r.Config.Problem,
		Algorithm: r.Config.Algorithm,
		CreatedAt: r.CreatedAt,
	}
	if r.Summary != nil {
		info.Iterations = r.Summary.Iterations
		info.Converged = r.Summary.Converged
		info.FinalLoss = r.Summary.FinalLoss
	}
	return info
}

// Validate checks that the record can be persisted and later replayed.
func (r *RunRecord) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "ID", Reason: "cannot be empty"}
	}
	if r.Config.Problem == "" {
		return &ValidationError{Field: "Config.Problem", Reason: "cannot be empty"}
	}
	if r.Config.Algorithm == "" {
		return &ValidationError{Field: "Config.Algorithm", Reason: "cannot be empty"}
	}
	if len(r.Config.InitialW) == 0 {
		return &ValidationError{Field: "Config.InitialW", Reason: "cannot be empty"}
	}
	if r.Config.MaxIterations <= 0 {
		return &ValidationError{Field: "Config.MaxIterations", Reason: "must be positive"}
	}
	if r.Config.Tolerance < 0 {
		return &ValidationError{Field: "Config.Tolerance", Reason: "cannot be negative"}
	}
	if r.CreatedAt.IsZero() {
		return &ValidationError{Field: "CreatedAt", Reason: "cannot be zero"}
	}
	return nil
}

// ValidationError reports an invalid field on a run record.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
