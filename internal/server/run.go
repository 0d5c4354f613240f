package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/optviz/gradlab/internal/solver"
	"github.com/optviz/gradlab/internal/store"
)

// RunState represents the current state of a run
type RunState string

const (
	StatePending   RunState = "pending"
	StateRunning   RunState = "running"
	StateCompleted RunState = "completed"
	StateFailed    RunState = "failed"
	StateCancelled RunState = "cancelled"
)

// RunConfig is an alias to avoid duplication with store.RunConfig
type RunConfig = store.RunConfig

// Run represents an optimization run tracked by the server. Progress fields
// mirror the latest iteration record while the run is in flight.
type Run struct {
	ID           string          `json:"id"`
	State        RunState        `json:"state"`
	Config       RunConfig       `json:"config"`
	Iterations   int             `json:"iterations"`
	Loss         float64         `json:"loss"`
	GradientNorm float64         `json:"gradientNorm"`
	Summary      *solver.Summary `json:"summary,omitempty"`
	StartTime    time.Time       `json:"startTime"`
	EndTime      *time.Time      `json:"endTime,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// RunManager manages the lifecycle of runs. Accessors return snapshot
// copies so callers can read run state without holding the manager lock
// while the worker keeps updating the tracked run.
type RunManager struct {
	mu          sync.RWMutex
	runs        map[string]*Run
	broadcaster *EventBroadcaster
}

// snapshot copies a run for use outside the lock. The pointer fields
// (Summary, EndTime) are written exactly once, under the lock, and never
// mutated afterwards, so sharing them across copies is safe.
func snapshot(run *Run) *Run {
	c := *run
	return &c
}

// NewRunManager creates a new RunManager
func NewRunManager() *RunManager {
	return &RunManager{
		runs:        make(map[string]*Run),
		broadcaster: NewEventBroadcaster(),
	}
}

// CreateRun registers a new pending run with the given configuration
func (rm *RunManager) CreateRun(config RunConfig) *Run {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	run := &Run{
		ID:        uuid.New().String(),
		State:     StatePending,
		Config:    config,
		StartTime: time.Now(),
	}

	rm.runs[run.ID] = run
	return snapshot(run)
}

// GetRun retrieves a snapshot of a run by ID
func (rm *RunManager) GetRun(id string) (*Run, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	run, exists := rm.runs[id]
	if !exists {
		return nil, false
	}
	return snapshot(run), true
}

// ListRuns returns snapshots of all tracked runs
func (rm *RunManager) ListRuns() []*Run {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	runs := make([]*Run, 0, len(rm.runs))
	for _, run := range rm.runs {
		runs = append(runs, snapshot(run))
	}
	return runs
}

// UpdateRun atomically updates a run using the provided function
func (rm *RunManager) UpdateRun(id string, updateFn func(*Run)) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	run, exists := rm.runs[id]
	if !exists {
		return fmt.Errorf("run not found: %s", id)
	}

	updateFn(run)
	return nil
}

// RemoveRun drops a run from the in-memory registry
func (rm *RunManager) RemoveRun(id string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	delete(rm.runs, id)
}

// GetActiveRuns returns snapshots of all runs currently in the running state
func (rm *RunManager) GetActiveRuns() []*Run {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	active := make([]*Run, 0)
	for _, run := range rm.runs {
		if run.State == StateRunning {
			active = append(active, snapshot(run))
		}
	}
	return active
}
