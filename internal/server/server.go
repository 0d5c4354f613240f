package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/optviz/gradlab/internal/solver"
	"github.com/optviz/gradlab/internal/store"
)

// Server exposes run management and trace playback over HTTP.
type Server struct {
	runManager *RunManager
	store      *store.FSStore
	addr       string
	server     *http.Server
}

// NewServer creates a new HTTP server persisting runs through st.
func NewServer(addr string, st *store.FSStore) *Server {
	return &Server{
		runManager: NewRunManager(),
		store:      st,
		addr:       addr,
	}
}

// Handler builds the routed and middleware-wrapped handler. Exposed
// separately from Start for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/runs", s.handleRuns)
	mux.HandleFunc("/api/v1/runs/", s.handleRunsWithID)

	return s.loggingMiddleware(s.corsMiddleware(mux))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	slog.Info("Starting HTTP server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleRuns handles /api/v1/runs
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateRun(w, r)
	case http.MethodGet:
		s.handleListRuns(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleRunsWithID handles /api/v1/runs/:id/*
func (s *Server) handleRunsWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/runs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Run ID required", http.StatusBadRequest)
		return
	}

	runID := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleGetRunStatus(w, r, runID)
		case http.MethodDelete:
			s.handleDeleteRun(w, r, runID)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch parts[1] {
	case "status":
		s.handleGetRunStatus(w, r, runID)
	case "trace":
		s.handleGetRunTrace(w, r, runID)
	case "events":
		s.handleRunStream(w, r, runID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleCreateRun handles POST /api/v1/runs
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var config RunConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	if config.Problem == "" {
		http.Error(w, "problem is required", http.StatusBadRequest)
		return
	}
	if config.Algorithm == "" {
		config.Algorithm = solver.AlgGDFixed
	}
	if len(config.InitialW) == 0 {
		http.Error(w, "initialW is required", http.StatusBadRequest)
		return
	}
	if config.MaxIterations <= 0 {
		config.MaxIterations = 100
	}
	if config.Tolerance <= 0 {
		config.Tolerance = 1e-6
	}

	// Reject unknown names before spawning a worker.
	if _, err := buildObjective(config); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	switch config.Algorithm {
	case solver.AlgGDFixed, solver.AlgGDLineSearch, solver.AlgNewton, solver.AlgLBFGS:
	default:
		http.Error(w, fmt.Sprintf("unknown algorithm: %q", config.Algorithm), http.StatusBadRequest)
		return
	}

	run := s.runManager.CreateRun(config)

	go executeRun(context.Background(), s.runManager, s.store, run.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(run)
}

// handleListRuns handles GET /api/v1/runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs := s.runManager.ListRuns()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

// handleGetRunStatus handles GET /api/v1/runs/:id/status
func (s *Server) handleGetRunStatus(w http.ResponseWriter, r *http.Request, runID string) {
	run, exists := s.runManager.GetRun(runID)
	if !exists {
		// Fall back to persisted runs from earlier server sessions.
		record, err := s.store.LoadRun(runID)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(record)
		return
	}

	var elapsed time.Duration
	if run.EndTime != nil {
		elapsed = run.EndTime.Sub(run.StartTime)
	} else {
		elapsed = time.Since(run.StartTime)
	}

	response := map[string]interface{}{
		"id":           run.ID,
		"state":        run.State,
		"config":       run.Config,
		"iterations":   run.Iterations,
		"loss":         run.Loss,
		"gradientNorm": run.GradientNorm,
		"summary":      run.Summary,
		"elapsed":      elapsed.Seconds(),
		"startTime":    run.StartTime,
		"endTime":      run.EndTime,
		"error":        run.Error,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleGetRunTrace handles GET /api/v1/runs/:id/trace
func (s *Server) handleGetRunTrace(w http.ResponseWriter, r *http.Request, runID string) {
	tr, err := store.NewTraceReader(s.store.BaseDir(), runID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Trace not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer tr.Close()

	records, err := tr.ReadAll()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []solver.Record{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// handleDeleteRun handles DELETE /api/v1/runs/:id
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request, runID string) {
	if run, exists := s.runManager.GetRun(runID); exists && run.State == StateRunning {
		http.Error(w, "Run is still in progress", http.StatusConflict)
		return
	}

	err := s.store.DeleteRun(runID)
	if errors.Is(err, store.ErrNotFound) {
		// In-memory only (e.g. failed before first save): still remove it.
		if _, exists := s.runManager.GetRun(runID); !exists {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
	} else if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.runManager.RemoveRun(runID)
	s.runManager.broadcaster.CleanupRun(runID)
	w.WriteHeader(http.StatusNoContent)
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
