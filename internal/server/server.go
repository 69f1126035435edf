package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cwbudde/boxtune/internal/objective"
	"github.com/cwbudde/boxtune/internal/opt"
)

// Server represents the HTTP server
type Server struct {
	jobManager *JobManager
	addr       string
	server     *http.Server

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewServer creates a new HTTP server
func NewServer(addr string) *Server {
	return &Server{
		jobManager: NewJobManager(),
		addr:       addr,
		cancels:    make(map[string]context.CancelFunc),
	}
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

	s.mu.Lock()
	for _, cancel := range s.cancels {
		cancel()
	}
	s.mu.Unlock()

	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Handler returns the configured HTTP handler without starting a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Register API routes
	mux.HandleFunc("/api/v1/solvers", s.handleSolvers)
	mux.HandleFunc("/api/v1/objectives", s.handleObjectives)
	mux.HandleFunc("/api/v1/jobs", s.handleJobs)
	mux.HandleFunc("/api/v1/jobs/", s.handleJobsWithID)

	// Wrap with middleware
	return s.loggingMiddleware(s.corsMiddleware(mux))
}

// handleSolvers handles GET /api/v1/solvers
func (s *Server) handleSolvers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"solvers": opt.Names()})
}

// handleObjectives handles GET /api/v1/objectives
func (s *Server) handleObjectives(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"objectives": objective.BenchmarkNames()})
}

// handleJobs handles /api/v1/jobs
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateJob(w, r)
	case http.MethodGet:
		s.handleListJobs(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleJobsWithID handles /api/v1/jobs/:id/*
func (s *Server) handleJobsWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Job ID required", http.StatusBadRequest)
		return
	}
	jobID := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleJobStatus(w, r, jobID)
		case http.MethodDelete:
			s.handleCancelJob(w, r, jobID)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch parts[1] {
	case "status":
		s.handleJobStatus(w, r, jobID)
	case "result":
		s.handleJobResult(w, r, jobID)
	case "events":
		s.handleJobEvents(w, r, jobID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleCreateJob handles POST /api/v1/jobs
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var config JobConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid job config: %w", err))
		return
	}

	if _, err := objective.GetBenchmark(config.Objective); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if config.NumEvals < 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("negative evaluation budget %d", config.NumEvals))
		return
	}

	job := s.jobManager.CreateJob(config)

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancels[job.ID] = cancel
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.cancels, job.ID)
			s.mu.Unlock()
			cancel()
		}()
		runJob(ctx, s.jobManager, job.ID)
	}()

	writeJSON(w, http.StatusCreated, job)
}

// handleListJobs handles GET /api/v1/jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.jobManager.ListJobs())
}

// handleJobStatus handles GET /api/v1/jobs/:id/status
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		writeError(w, http.StatusNotFound, fmt.Errorf("job not found: %s", jobID))
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleJobResult handles GET /api/v1/jobs/:id/result
func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		writeError(w, http.StatusNotFound, fmt.Errorf("job not found: %s", jobID))
		return
	}
	if job.State != StateCompleted {
		writeError(w, http.StatusConflict, fmt.Errorf("job %s is %s, not completed", jobID, job.State))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":       job.ID,
		"solution": job.BestPoint,
		"optimum":  job.Optimum,
		"numEvals": job.NumEvals,
	})
}

// handleCancelJob handles DELETE /api/v1/jobs/:id
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request, jobID string) {
	if _, exists := s.jobManager.GetJob(jobID); !exists {
		writeError(w, http.StatusNotFound, fmt.Errorf("job not found: %s", jobID))
		return
	}

	s.mu.Lock()
	cancel, running := s.cancels[jobID]
	s.mu.Unlock()
	if running {
		cancel()
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"id": jobID, "cancelling": running})
}

// handleJobEvents handles GET /api/v1/jobs/:id/events (SSE)
func (s *Server) handleJobEvents(w http.ResponseWriter, r *http.Request, jobID string) {
	if _, exists := s.jobManager.GetJob(jobID); !exists {
		writeError(w, http.StatusNotFound, fmt.Errorf("job not found: %s", jobID))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.jobManager.broadcaster.Subscribe(jobID)
	defer s.jobManager.broadcaster.Unsubscribe(jobID, ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-ch:
			if !open {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				slog.Warn("Failed to marshal progress event", "jobID", jobID, "error", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()

			if event.State == StateCompleted || event.State == StateFailed || event.State == StateCancelled {
				return
			}
		}
	}
}

// loggingMiddleware logs request method, path and duration.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Handled request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// corsMiddleware sets permissive CORS headers.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
