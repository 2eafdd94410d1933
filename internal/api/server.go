package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/chatvolt/chatvolt-mcp/internal/journal"
	"github.com/chatvolt/chatvolt-mcp/internal/logbuf"
	"github.com/chatvolt/chatvolt-mcp/internal/tool"
	"github.com/chatvolt/chatvolt-mcp/pkg/protocol"
)

const maxCallBody = 1 << 20

// Dispatcher is what the API server needs from the operation registry.
type Dispatcher interface {
	List() []protocol.OperationDescriptor
	Descriptor(name string) (protocol.OperationDescriptor, bool)
	Dispatch(ctx context.Context, name string, args map[string]any) (protocol.CallResult, error)
}

// CallQuerier reads the call journal.
type CallQuerier interface {
	List(ctx context.Context, filter journal.Filter) ([]protocol.CallEntry, error)
	Count(ctx context.Context, filter journal.Filter) (int, error)
}

// LogQuerier abstracts log entry querying.
type LogQuerier interface {
	Query(q logbuf.Query) []logbuf.Entry
}

// Config holds API server configuration.
type Config struct {
	Host string
	Port int
	Key  string // API key for Bearer auth
}

// Server is the admin REST API.
type Server struct {
	ops     Dispatcher
	calls   CallQuerier
	logs    LogQuerier
	cfg     Config
	logger  *slog.Logger
	started time.Time
	srv     *http.Server
}

// NewServer creates a new API server. calls and logs may be nil.
func NewServer(ops Dispatcher, calls CallQuerier, logs LogQuerier, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		ops:     ops,
		calls:   calls,
		logs:    logs,
		cfg:     cfg,
		logger:  logger.With("component", "api"),
		started: time.Now(),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/operations", s.requireAuth(s.handleListOperations))
	mux.HandleFunc("GET /api/operations/{name}", s.requireAuth(s.handleGetOperation))
	mux.HandleFunc("POST /api/operations/{name}/call", s.requireAuth(s.handleCall))
	mux.HandleFunc("GET /api/calls", s.requireAuth(s.handleListCalls))
	mux.HandleFunc("GET /api/logs", s.requireAuth(s.handleGetLogs))

	s.srv = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.corsMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start begins listening. Blocks until context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.srv.Shutdown(shutCtx)
	}()

	s.logger.Info("api server starting", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Handler returns the underlying http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// --- Middleware ---

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Key == "" {
			next(w, r)
			return
		}
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.cfg.Key {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next(w, r)
	}
}

// --- Handlers ---

type healthResponse struct {
	Status        string `json:"status"`
	Operations    int    `json:"operations"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		Operations:    len(s.ops.List()),
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleListOperations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ops.List())
}

func (s *Server) handleGetOperation(w http.ResponseWriter, r *http.Request) {
	d, ok := s.ops.Descriptor(r.PathValue("name"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "operation not found"})
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleCall dispatches an operation with the request body as its
// arguments and answers with the call envelope. The HTTP status mirrors the
// error kind so scripts can branch without parsing the text.
func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCallBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read body: " + err.Error()})
		return
	}
	args := map[string]any{}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &args); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be a JSON object"})
			return
		}
	}

	result, err := s.ops.Dispatch(r.Context(), name, args)
	if err != nil {
		writeJSON(w, callStatus(err), tool.ErrorResult(err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func callStatus(err error) int {
	switch {
	case errors.Is(err, tool.ErrUnknownOperation):
		return http.StatusNotFound
	case errors.Is(err, tool.ErrMissingArgument), errors.Is(err, tool.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

type callsResponse struct {
	Total int                  `json:"total"`
	Calls []protocol.CallEntry `json:"calls"`
}

func (s *Server) handleListCalls(w http.ResponseWriter, r *http.Request) {
	if s.calls == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "call journal is disabled"})
		return
	}

	q := r.URL.Query()
	filter := journal.Filter{
		Operation: q.Get("operation"),
		Status:    q.Get("status"),
		Kind:      q.Get("kind"),
		Limit:     100,
	}
	if l := q.Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if since := q.Get("since"); since != "" {
		if ms, err := strconv.ParseInt(since, 10, 64); err == nil {
			filter.Since = time.UnixMilli(ms)
		}
	}

	calls, err := s.calls.List(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	total, err := s.calls.Count(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if calls == nil {
		calls = []protocol.CallEntry{}
	}
	writeJSON(w, http.StatusOK, callsResponse{Total: total, Calls: calls})
}

func (s *Server) handleGetLogs(w http.ResponseWriter, r *http.Request) {
	if s.logs == nil {
		writeJSON(w, http.StatusOK, []logbuf.Entry{})
		return
	}

	q := r.URL.Query()
	query := logbuf.Query{
		MinLevel:  slog.LevelDebug,
		Component: q.Get("component"),
		Operation: q.Get("operation"),
		Limit:     200,
	}
	if l := q.Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			query.Limit = n
		}
	}
	if lvl := q.Get("level"); lvl != "" {
		query.MinLevel = logbuf.ParseLevel(lvl)
	}
	if since := q.Get("since"); since != "" {
		if ms, err := strconv.ParseInt(since, 10, 64); err == nil {
			query.Since = time.UnixMilli(ms)
		}
	}

	entries := s.logs.Query(query)
	if entries == nil {
		entries = []logbuf.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
