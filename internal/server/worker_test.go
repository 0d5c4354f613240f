package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optviz/gradlab/internal/solver"
	"github.com/optviz/gradlab/internal/store"
)

func newTestStore(t *testing.T) *store.FSStore {
	t.Helper()
	st, err := store.NewFSStore(t.TempDir())
	require.NoError(t, err)
	return st
}

func quadraticConfig() RunConfig {
	return RunConfig{
		Problem:       "quadratic",
		Algorithm:     solver.AlgGDFixed,
		InitialW:      []float64{1, 1},
		MaxIterations: 100,
		Tolerance:     1e-6,
		Alpha:         0.1,
	}
}

func TestExecuteRunCompletes(t *testing.T) {
	rm := NewRunManager()
	st := newTestStore(t)

	run := rm.CreateRun(quadraticConfig())
	require.NoError(t, executeRun(context.Background(), rm, st, run.ID))

	got, exists := rm.GetRun(run.ID)
	require.True(t, exists)
	assert.Equal(t, StateCompleted, got.State)
	require.NotNil(t, got.Summary)
	assert.True(t, got.Summary.Converged)
	assert.NotNil(t, got.EndTime)

	// The persisted record carries the same outcome.
	record, err := st.LoadRun(run.ID)
	require.NoError(t, err)
	require.NotNil(t, record.Summary)
	assert.Equal(t, got.Summary.Iterations, record.Summary.Iterations)

	// The trace on disk matches the iteration count.
	tr, err := store.NewTraceReader(st.BaseDir(), run.ID)
	require.NoError(t, err)
	defer tr.Close()

	records, err := tr.ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, got.Summary.Iterations)
	for i, rec := range records {
		assert.Equal(t, i, rec.Index)
	}
}

func TestExecuteRunGeneratesDefaultDataset(t *testing.T) {
	rm := NewRunManager()
	st := newTestStore(t)

	config := RunConfig{
		Problem:       "logistic-regression",
		Algorithm:     solver.AlgNewton,
		InitialW:      []float64{0.1, 0.1, 0},
		MaxIterations: 50,
		Tolerance:     1e-3,
		Lambda:        1e-4,
	}
	run := rm.CreateRun(config)
	require.NoError(t, executeRun(context.Background(), rm, st, run.ID))

	got, _ := rm.GetRun(run.ID)
	assert.Equal(t, StateCompleted, got.State)
	require.NotNil(t, got.Summary)
	assert.True(t, got.Summary.Converged)
}

func TestExecuteRunFailsOnUnknownProblem(t *testing.T) {
	rm := NewRunManager()
	st := newTestStore(t)

	config := quadraticConfig()
	config.Problem = "warp-drive"
	run := rm.CreateRun(config)

	err := executeRun(context.Background(), rm, st, run.ID)
	require.Error(t, err)

	got, _ := rm.GetRun(run.ID)
	assert.Equal(t, StateFailed, got.State)
	assert.NotEmpty(t, got.Error)
	assert.NotNil(t, got.EndTime)
}

func TestExecuteRunFailsOnNewtonWithoutHessian(t *testing.T) {
	rm := NewRunManager()
	st := newTestStore(t)

	config := RunConfig{
		Problem:       "separating-hyperplane",
		Variant:       "soft-margin",
		Algorithm:     solver.AlgNewton,
		InitialW:      []float64{0, 0, 0},
		MaxIterations: 10,
		Tolerance:     1e-6,
		Lambda:        0.01,
	}
	run := rm.CreateRun(config)

	err := executeRun(context.Background(), rm, st, run.ID)
	require.Error(t, err)

	got, _ := rm.GetRun(run.ID)
	assert.Equal(t, StateFailed, got.State)
}

func TestExecuteRunUnknownID(t *testing.T) {
	rm := NewRunManager()
	st := newTestStore(t)

	err := executeRun(context.Background(), rm, st, "ghost")
	assert.Error(t, err)
}

func TestExecuteRunRespectsCancelledContext(t *testing.T) {
	rm := NewRunManager()
	st := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run := rm.CreateRun(quadraticConfig())
	err := executeRun(ctx, rm, st, run.ID)
	require.ErrorIs(t, err, context.Canceled)

	got, _ := rm.GetRun(run.ID)
	assert.Equal(t, StateCancelled, got.State)
}

func TestExecuteRunStreamsProgress(t *testing.T) {
	rm := NewRunManager()
	st := newTestStore(t)

	run := rm.CreateRun(quadraticConfig())
	ch := rm.broadcaster.Subscribe(run.ID)
	defer rm.broadcaster.Unsubscribe(run.ID, ch)

	// Drain concurrently: the worker broadcasts while it runs and drops
	// events when nobody listens.
	done := make(chan []ProgressEvent, 1)
	go func() {
		var events []ProgressEvent
		for ev := range ch {
			events = append(events, ev)
			if ev.State == StateCompleted {
				break
			}
		}
		done <- events
	}()

	require.NoError(t, executeRun(context.Background(), rm, st, run.ID))

	select {
	case events := <-done:
		require.NotEmpty(t, events)
		assert.Equal(t, StateCompleted, events[len(events)-1].State)
		assert.Equal(t, 1, events[0].Iteration)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for completion event")
	}
}

func TestBuildObjectiveMissingDatasetFile(t *testing.T) {
	config := quadraticConfig()
	config.Problem = "logistic-regression"
	config.Dataset = t.TempDir() + "/missing.json"

	_, err := buildObjective(config)
	assert.Error(t, err, "a named dataset path must exist")
}
