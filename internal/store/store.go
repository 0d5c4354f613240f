package store

// Store defines the interface for run persistence.
// Implementations must be safe for concurrent use.
//
// Error handling conventions:
//   - Return nil error on success
//   - Return ErrNotFound if the run doesn't exist (for Load/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveRun atomically persists run metadata. An existing run.json for
	// the same ID is overwritten, which is how a finished run gets its
	// summary attached.
	SaveRun(run *RunRecord) error

	// LoadRun retrieves the metadata for the given run.
	// Returns ErrNotFound if no run exists for this ID.
	LoadRun(runID string) (*RunRecord, error)

	// ListRuns returns listing metadata for all persisted runs.
	// The returned slice may be empty.
	ListRuns() ([]RunInfo, error)

	// DeleteRun removes the run directory and everything in it, including
	// run.json and trace.jsonl.
	// Returns ErrNotFound if no run exists for this ID.
	DeleteRun(runID string) error
}

// ErrNotFound is returned when a requested run does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing run error.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "run not found: " + e.RunID
	}
	return "run not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
