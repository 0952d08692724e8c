// Package httpapi exposes the analysis service over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wagneradl/mc-v1/mission-analyzer/internal/analysis"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/config"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/llm"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/metrics"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/storage"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
	shutdownGrace  = 10 * time.Second
)

// Server routes HTTP requests to the analysis service.
type Server struct {
	cfg    config.ServerConfig
	svc    *analysis.Service
	mcp    http.Handler
	logger *zap.Logger
	mux    *http.ServeMux
}

// New builds a server. mcpHandler is mounted at /mcp when non-nil.
func New(cfg config.ServerConfig, svc *analysis.Service, mcpHandler http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		svc:    svc,
		mcp:    mcpHandler,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /analyze", s.handleAnalyze)
	s.mux.HandleFunc("POST /advanced_analyze", s.handleAdvanced)
	s.mux.HandleFunc("GET /history", s.handleHistory)
	s.mux.HandleFunc("GET /suggestions", s.handleSuggestions)
	s.mux.Handle("GET /metrics", metrics.Handler())
	if s.mcp != nil {
		s.mux.Handle("/mcp", s.mcp)
	}
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return loggingMiddleware(s.logger, s.mux)
}

// Serve listens on the configured address until ctx is cancelled, then
// drains in-flight requests.
func (s *Server) Serve(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("http server listening", zap.String("addr", s.cfg.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		s.logger.Info("http server shutting down")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// ── Handlers ────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	query := queryParam(r)
	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	result, err := s.svc.Analyze(r.Context(), query)
	if err != nil {
		s.logger.Error("analyze failed", zap.String("query", query), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAdvanced(w http.ResponseWriter, r *http.Request) {
	query := queryParam(r)
	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	answer, err := s.svc.Advanced(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": answer})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	perPage, err := intParam(r, "per_page", defaultPerPage)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	perPage = min(perPage, maxPerPage)

	entries, err := s.svc.History(r.Context(), page, perPage)
	switch {
	case errors.Is(err, storage.ErrInvalidPage):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.logger.Error("history failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		if total, err := s.svc.HistoryTotal(r.Context()); err == nil {
			w.Header().Set("X-Total-Count", strconv.Itoa(total))
		} else {
			s.logger.Warn("history count failed", zap.Error(err))
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"suggestions": llm.Suggestions()})
}

// ── Helpers ─────────────────────────────────────────────

// queryParam reads the query text from a form field named "query" or, for
// older clients, "mission". JSON bodies with the same keys are accepted too.
func queryParam(r *http.Request) string {
	if ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); ct == "application/json" {
		var body struct {
			Query   string `json:"query"`
			Mission string `json:"mission"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return ""
		}
		if body.Query != "" {
			return body.Query
		}
		return body.Mission
	}
	if q := r.FormValue("query"); q != "" {
		return q
	}
	return r.FormValue("mission")
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ── Logging middleware ───────────────────────────────────

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses (the MCP handler) working through the
// recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func loggingMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)))
	})
}
