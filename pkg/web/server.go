package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/ritzau/pipe-analyzer/pkg/analysis"
	"github.com/ritzau/pipe-analyzer/pkg/logging"
	"github.com/ritzau/pipe-analyzer/pkg/metrics"
	"github.com/ritzau/pipe-analyzer/pkg/model"
	"github.com/ritzau/pipe-analyzer/pkg/network"
	"github.com/ritzau/pipe-analyzer/pkg/profile"
	"github.com/ritzau/pipe-analyzer/pkg/pubsub"
)

// Snapshot is one completed analysis as served by the API. A snapshot is
// never modified after it is handed to SetSnapshot.
type Snapshot struct {
	RunID      string
	AnalyzedAt time.Time
	Topology   *network.Topology
	Result     *analysis.Result
	Profiles   []profile.Profile
}

// PipeDetail is the response of /api/pipes/{id}.
type PipeDetail struct {
	Pipe     model.Pipe      `json:"pipe"`
	Row      model.ResultRow `json:"row"`
	State    model.PipeState `json:"state"`
	Children []string        `json:"children"`
	Path     []string        `json:"path"`
}

// Server represents the web server
type Server struct {
	router    *mux.Router
	publisher *pubsub.SSEPublisher
	metrics   *metrics.Registry

	mu   sync.RWMutex
	snap *Snapshot
}

// NewServer creates a new web server
func NewServer(publisher *pubsub.SSEPublisher, reg *metrics.Registry) *Server {
	if reg == nil {
		reg = metrics.DefaultRegistry()
	}
	s := &Server{
		router:    mux.NewRouter(),
		publisher: publisher,
		metrics:   reg,
	}
	s.setupRoutes()
	return s
}

// SetSnapshot swaps in the latest analysis.
func (s *Server) SetSnapshot(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

// Snapshot returns the analysis currently served, or nil.
func (s *Server) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Handler returns the router wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

func (s *Server) setupRoutes() {
	s.router.Use(s.instrument)

	// SSE subscription endpoints
	s.router.HandleFunc("/api/subscribe/{topic:analysis_status|summary}", s.handleSubscribe).Methods("GET")

	s.router.HandleFunc("/api/results", s.handleResults).Methods("GET")
	s.router.HandleFunc("/api/summary", s.handleSummary).Methods("GET")
	s.router.HandleFunc("/api/warnings", s.handleWarnings).Methods("GET")
	s.router.HandleFunc("/api/terminals", s.handleTerminals).Methods("GET")
	s.router.HandleFunc("/api/pipes/{id}", s.handlePipe).Methods("GET")
	s.router.HandleFunc("/api/pipes/{id}/path", s.handlePipePath).Methods("GET")
	s.router.HandleFunc("/api/profiles", s.handleProfiles).Methods("GET")
	s.router.HandleFunc("/api/topology.dot", s.handleTopologyDOT).Methods("GET")

	s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
}

// instrument records request counts and latency per route template.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}

		rec := &logging.StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.metrics.RecordHTTPRequest(r.Method, path, strconv.Itoa(rec.Status), time.Since(start))
	})
}

// current returns the snapshot or answers 503 when none exists yet.
func (s *Server) current(w http.ResponseWriter) (*Snapshot, bool) {
	snap := s.Snapshot()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no analysis available yet")
		return nil, false
	}
	return snap, true
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]

	sub, err := s.publisher.Subscribe(r.Context(), topic)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// Initial comment establishes the stream before the first event
	fmt.Fprintf(w, ": connected\n\n")
	flush(w)

	for event := range sub.Events() {
		if err := pubsub.WriteSSE(w, event); err != nil {
			logging.WarnContext(r.Context(), "Error writing SSE event", "topic", topic, "error", err)
			return
		}
		flush(w)
	}
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.Result)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":      snap.RunID,
		"analyzed_at": snap.AnalyzedAt,
		"summary":     snap.Result.Summary,
		"params":      snap.Result.Params,
	})
}

func (s *Server) handleWarnings(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	warnings := snap.Result.Warnings
	if warnings == nil {
		warnings = []network.Warning{}
	}
	writeJSON(w, http.StatusOK, warnings)
}

func (s *Server) handleTerminals(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	paths, err := snap.Topology.BranchPaths()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, paths)
}

func (s *Server) handlePipe(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	pipe, found := snap.Topology.Pipe(id)
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown pipe %q", id))
		return
	}

	row, _ := snap.Result.Row(id)
	children, _ := snap.Topology.Children(id)
	path, err := snap.Topology.PathTo(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if children == nil {
		children = []string{}
	}

	writeJSON(w, http.StatusOK, PipeDetail{
		Pipe:     pipe,
		Row:      row,
		State:    snap.Result.States[id],
		Children: children,
		Path:     path,
	})
}

func (s *Server) handlePipePath(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	path, err := snap.Topology.PathTo(id)
	if errors.Is(err, network.ErrUnknownPipe) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown pipe %q", id))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, path)
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.Profiles)
}

func (s *Server) handleTopologyDOT(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	dot, err := snap.Topology.DOT("network")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = w.Write(dot)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func flush(w http.ResponseWriter) {
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Start serves on the given port until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("Starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// SSE streams end when the publisher closes
	_ = s.publisher.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logging.Info("Web server stopped")
	return nil
}
