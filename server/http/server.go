// Package http serves the chat agent and the clinic tool protocol over HTTP.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/KamdynS/petclinic-genai/agent/core"
	"github.com/KamdynS/petclinic-genai/clinic"
	"github.com/KamdynS/petclinic-genai/discovery"
	"github.com/KamdynS/petclinic-genai/mcp"
	obs "github.com/KamdynS/petclinic-genai/observability"
	"github.com/KamdynS/petclinic-genai/rest"
	"github.com/KamdynS/petclinic-genai/tools"
)

const maxRequestBytes = 1 << 20

// Server wraps an agent with HTTP endpoints
type Server struct {
	agent   core.Agent
	tools   tools.Registry
	metrics http.Handler
	logger  zerolog.Logger
	config  Config
	handler http.Handler
	server  *http.Server
}

// Config holds HTTP server configuration
type Config struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	EnableCORS      bool
}

// Option configures optional server dependencies
type Option func(*Server)

// WithTools exposes the registry through GET /tools and POST /tools/{name}/execute
func WithTools(reg tools.Registry) Option {
	return func(s *Server) { s.tools = reg }
}

// WithMetricsHandler mounts h at GET /metrics
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithLogger sets the logger used for access logs and errors
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a new HTTP server for an agent
func NewServer(agent core.Agent, config Config, opts ...Option) *Server {
	if config.Port == 0 {
		config.Port = 8080
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = 10 * time.Second
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = 60 * time.Second
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 5 * time.Second
	}

	s := &Server{
		agent:  agent,
		config: config,
		logger: zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	s.handler = s.routes()
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      s.handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
	return s
}

// Handler returns the root handler, e.g. for httptest
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.AccessHandler(s.accessLog))
	r.Use(chimw.Recoverer)
	if s.config.EnableCORS {
		r.Use(corsMiddleware)
	}

	r.Get("/health", s.healthHandler)
	r.Post("/chatclient", s.chatHandler)
	if s.tools != nil {
		r.Get("/tools", s.listToolsHandler)
		r.Post("/tools/{name}/execute", s.executeToolHandler)
	}
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

func (s *Server) accessLog(r *http.Request, status, size int, duration time.Duration) {
	route := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		route = rctx.RoutePattern()
	}
	labels := map[string]string{
		obs.LabelRoute:  route,
		obs.LabelMethod: r.Method,
		obs.LabelStatus: strconv.Itoa(status),
	}
	obs.MetricsImpl.IncrementRequests(labels)
	obs.MetricsImpl.RecordLatency(duration, labels)
	if status >= http.StatusInternalServerError {
		obs.MetricsImpl.RecordError("http_5xx", labels)
	}

	hlog.FromRequest(r).Info().
		Str("request_id", chimw.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("route", route).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}

// ChatRequest represents an incoming chat request
type ChatRequest struct {
	Message   string            `json:"message"`
	SessionID string            `json:"session_id,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// ChatResponse represents a chat response
type ChatResponse struct {
	Message   string            `json:"message"`
	SessionID string            `json:"session_id,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// healthHandler provides a health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// chatHandler runs one agent turn. A session id is generated when the
// client does not send one.
func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ChatResponse{Error: "Invalid JSON"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, ChatResponse{Error: "Message is required"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	input := core.Message{Role: "user", Content: req.Message, Meta: req.Meta}
	response, err := s.agent.Run(r.Context(), req.SessionID, input)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("session_id", req.SessionID).Msg("agent run failed")
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		} else if errors.Is(err, core.ErrBlocked) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, ChatResponse{SessionID: req.SessionID, Error: http.StatusText(status)})
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Message:   response.Content,
		SessionID: req.SessionID,
		Meta:      response.Meta,
	})
}

func (s *Server) listToolsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mcp.ListToolsResponse{Tools: mcp.Describe(s.tools)})
}

func (s *Server) executeToolHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, ok := s.tools.Get(name); !ok {
		writeJSON(w, http.StatusNotFound, mcp.ExecuteResponse{Error: fmt.Sprintf("tool %s not found", name)})
		return
	}
	var req mcp.ExecuteRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, mcp.ExecuteResponse{Error: "Invalid JSON"})
		return
	}

	result, err := s.tools.Execute(r.Context(), name, req.Input)
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("tool", name).Msg("tool execution failed")
		writeJSON(w, toolErrorStatus(err), mcp.ExecuteResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, mcp.ExecuteResponse{Result: result})
}

func toolErrorStatus(err error) int {
	var verrs clinic.ValidationErrors
	var herr *rest.HTTPError
	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, discovery.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &herr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe starts the HTTP server and shuts it down gracefully when ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().Int("port", s.config.Port).Msg("HTTP server starting")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
