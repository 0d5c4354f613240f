package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/optviz/gradlab/internal/dataset"
	"github.com/optviz/gradlab/internal/objective"
	"github.com/optviz/gradlab/internal/solver"
	"github.com/optviz/gradlab/internal/store"
)

// defaultClusterSize is the per-class sample count when a data-driven
// problem is started without a dataset path.
const defaultClusterSize = 100

// buildObjective resolves the run configuration into an objective, loading
// the dataset from disk or generating the default two-cluster set when the
// problem needs data and no path was given.
func buildObjective(config RunConfig) (objective.Objective, error) {
	var data *dataset.Set

	switch config.Problem {
	case "logistic-regression", "separating-hyperplane":
		if config.Dataset != "" {
			var err error
			data, err = dataset.Load(config.Dataset)
			if err != nil {
				return nil, fmt.Errorf("failed to load dataset: %w", err)
			}
		} else {
			seed := config.Seed
			if seed == 0 {
				seed = 42
			}
			data = dataset.TwoClusters(defaultClusterSize, 0.5, seed)
			slog.Debug("Generated default dataset", "points", len(data.Points), "seed", seed)
		}
	}

	return objective.ByName(config.Problem, config.Variant, data, config.Lambda)
}

// executeRun drives one optimization run to completion: it streams every
// iteration record to trace.jsonl and to SSE subscribers, then persists the
// final summary next to the trace.
func executeRun(ctx context.Context, rm *RunManager, st *store.FSStore, runID string) error {
	run, exists := rm.GetRun(runID)
	if !exists {
		return fmt.Errorf("run not found: %s", runID)
	}

	if err := rm.UpdateRun(runID, func(r *Run) {
		r.State = StateRunning
	}); err != nil {
		return err
	}

	slog.Info("Starting run", "run_id", runID, "problem", run.Config.Problem, "algorithm", run.Config.Algorithm)

	obj, err := buildObjective(run.Config)
	if err != nil {
		markRunFailed(rm, runID, err)
		return err
	}

	record := store.NewRunRecord(runID, run.Config)
	if err := st.SaveRun(record); err != nil {
		markRunFailed(rm, runID, err)
		return err
	}

	tw, err := store.NewTraceWriter(st.BaseDir(), runID)
	if err != nil {
		markRunFailed(rm, runID, err)
		return err
	}

	// Bail out early if the client cancelled before we got going.
	select {
	case <-ctx.Done():
		tw.Close()
		markRunCancelled(rm, runID)
		return ctx.Err()
	default:
	}

	opts := run.Config.Options()
	opts.OnRecord = func(rec solver.Record) {
		if werr := tw.Write(rec); werr != nil {
			slog.Error("Failed to write trace record", "run_id", runID, "error", werr)
		}

		rm.UpdateRun(runID, func(r *Run) {
			r.Iterations = rec.Index + 1
			r.Loss = rec.NewLoss
			r.GradientNorm = rec.GradientNorm
		})

		rm.broadcaster.Broadcast(ProgressEvent{
			RunID:        runID,
			State:        StateRunning,
			Iteration:    rec.Index + 1,
			Loss:         rec.NewLoss,
			GradientNorm: rec.GradientNorm,
			Timestamp:    time.Now(),
		})
	}

	start := time.Now()
	records, err := solver.Run(run.Config.Algorithm, obj, run.Config.InitialW, opts)
	if err != nil {
		tw.Close()
		markRunFailed(rm, runID, err)
		return err
	}

	if err := tw.Close(); err != nil {
		markRunFailed(rm, runID, err)
		return err
	}

	summary := solver.Summarize(obj, run.Config.InitialW, records, opts)

	record.Complete(summary)
	if err := st.SaveRun(record); err != nil {
		markRunFailed(rm, runID, err)
		return err
	}

	endTime := time.Now()
	if err := rm.UpdateRun(runID, func(r *Run) {
		r.State = StateCompleted
		r.Iterations = summary.Iterations
		r.Loss = summary.FinalLoss
		r.GradientNorm = summary.FinalGradientNorm
		r.Summary = &summary
		r.EndTime = &endTime
	}); err != nil {
		return err
	}

	slog.Info("Run completed",
		"run_id", runID,
		"elapsed", time.Since(start),
		"iterations", summary.Iterations,
		"converged", summary.Converged,
		"final_loss", summary.FinalLoss,
	)

	rm.broadcaster.Broadcast(ProgressEvent{
		RunID:        runID,
		State:        StateCompleted,
		Iteration:    summary.Iterations,
		Loss:         summary.FinalLoss,
		GradientNorm: summary.FinalGradientNorm,
		Timestamp:    time.Now(),
	})

	return nil
}

// markRunFailed marks a run as failed with an error message
func markRunFailed(rm *RunManager, runID string, err error) {
	endTime := time.Now()
	rm.UpdateRun(runID, func(r *Run) {
		r.State = StateFailed
		r.Error = err.Error()
		r.EndTime = &endTime
	})
	slog.Error("Run failed", "run_id", runID, "error", err)
}

// markRunCancelled marks a run as cancelled
func markRunCancelled(rm *RunManager, runID string) {
	endTime := time.Now()
	rm.UpdateRun(runID, func(r *Run) {
		r.State = StateCancelled
		r.EndTime = &endTime
	})
	slog.Info("Run cancelled", "run_id", runID)
}
