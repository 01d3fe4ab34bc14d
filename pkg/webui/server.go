// Package webui exposes the HTTP surface: run streaming over SSE, the
// sandbox dispatch endpoint for the terminal UI, recent logs, and
// Prometheus metrics.
package webui

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"

	"workbench/pkg/contextmgr"
	"workbench/pkg/events"
	"workbench/pkg/llm"
	"workbench/pkg/llm/llmerrors"
	"workbench/pkg/logx"
	"workbench/pkg/metrics"
	"workbench/pkg/orchestrator"
	"workbench/pkg/prompts"
	"workbench/pkg/sandbox"
)

// Server wires the HTTP endpoints to the orchestrator and sandbox.
type Server struct {
	listenAddr   string
	passwordHash string

	client   llm.Client
	renderer *prompts.Renderer
	sandbox  *sandbox.Sandbox
	recorder *metrics.Recorder
	orchCfg  orchestrator.Config
	logger   *logx.Logger

	httpServer *http.Server
}

// NewServer creates the HTTP server. An empty passwordHash disables
// authentication; the recorder may be nil.
func NewServer(listenAddr, passwordHash string, client llm.Client, renderer *prompts.Renderer, sb *sandbox.Sandbox, recorder *metrics.Recorder, orchCfg orchestrator.Config) *Server {
	return &Server{
		listenAddr:   listenAddr,
		passwordHash: passwordHash,
		client:       client,
		renderer:     renderer,
		sandbox:      sb,
		recorder:     recorder,
		orchCfg:      orchCfg,
		logger:       logx.NewLogger("webui"),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/runs", s.requireAuth(s.handleRun))
	mux.HandleFunc("POST /api/sandbox", s.requireAuth(s.handleSandbox))
	mux.HandleFunc("GET /api/logs", s.requireAuth(s.handleLogs))
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// Start runs the HTTP server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()
	s.logger.Info("listening on %s", s.listenAddr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// requireAuth gates a handler behind basic auth when a password hash is
// configured. The username is ignored.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.passwordHash == "" {
			next(w, r)
			return
		}
		_, password, ok := r.BasicAuth()
		if !ok || bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)) != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="workbench"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// RunRequest is the POST /api/runs request body.
type RunRequest struct {
	Goal         string            `json:"goal"`
	ContextFiles []contextmgr.File `json:"context_files,omitempty"`
}

// handleRun validates the request, then streams the run's events over
// SSE. Validation failures are rejected synchronously before any stream
// opens; once streaming starts, failures arrive as error events.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Goal == "" {
		http.Error(w, "goal is required", http.StatusBadRequest)
		return
	}
	if s.client == nil {
		http.Error(w, "no chat backend configured", http.StatusBadRequest)
		return
	}

	sink, err := newSSEWriter(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	orch := orchestrator.New(req.Goal, req.ContextFiles, s.client, s.renderer, events.NewEmitter(sink), s.recorder, s.orchCfg)
	s.logger.Info("run %s started: %q", orch.Run().ID, req.Goal)

	// Client disconnect aborts the run cooperatively. The in-flight
	// model call is cut short by the request context itself.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-r.Context().Done():
			orch.Abort()
		case <-done:
		}
	}()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()
	go func() {
		for {
			select {
			case <-heartbeat.C:
				sink.heartbeat()
			case <-done:
				return
			}
		}
	}()

	if err := orch.Execute(r.Context()); err != nil {
		s.logger.Warn("run %s ended with %s error: %v", orch.Run().ID, llmerrors.Classify(err), err)
		return
	}
	s.logger.Info("run %s completed", orch.Run().ID)
}

// handleSandbox dispatches one executor command for the terminal UI.
func (s *Server) handleSandbox(w http.ResponseWriter, r *http.Request) {
	if s.sandbox == nil {
		http.Error(w, "sandbox is not configured", http.StatusBadRequest)
		return
	}
	var cmd sandbox.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	result := s.sandbox.Execute(r.Context(), cmd)
	writeJSON(w, result)
}

// handleLogs serves recent in-memory log entries, optionally filtered
// by component and RFC 3339 timestamp.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	component := r.URL.Query().Get("component")
	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "invalid since timestamp: "+err.Error(), http.StatusBadRequest)
			return
		}
		since = parsed
	}
	writeJSON(w, logx.RecentEntries(component, since))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
