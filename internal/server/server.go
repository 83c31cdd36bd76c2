// Package server implements the holgraph HTTP server.
//
// The server keeps one rendered graph in memory and swaps it atomically when
// the source tree changes (the serve command wires a filesystem watcher to
// Regenerate). Handlers read the current graph under a read lock, so a
// regeneration never blocks viewers on the old one.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/holgraph/holgraph/pkg/pipeline"
)

// Server serves the current dependency graph over HTTP.
type Server struct {
	runner *pipeline.Runner
	opts   pipeline.Options
	logger *log.Logger
	addr   string

	mu    sync.RWMutex
	dot   string
	svg   []byte
	stats Stats
}

// Stats is the payload of the /api/stats endpoint.
type Stats struct {
	Nodes       int       `json:"nodes"`
	Edges       int       `json:"edges"`
	Files       int       `json:"files"`
	Collisions  []string  `json:"collisions,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// New creates a server. Call Regenerate once before ListenAndServe so the
// first request has a graph to show.
func New(runner *pipeline.Runner, opts pipeline.Options, addr string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner: runner,
		opts:   opts,
		logger: logger,
		addr:   addr,
	}
}

// Regenerate runs the pipeline and swaps in the new graph. Safe to call
// concurrently; the last writer wins.
func (s *Server) Regenerate(ctx context.Context) error {
	start := time.Now()

	result, err := s.runner.Generate(ctx, s.opts)
	if err != nil {
		regenerationFailures.Inc()
		return fmt.Errorf("generate: %w", err)
	}
	artifacts, _, err := s.runner.Render(ctx, result.DOT, []string{pipeline.FormatSVG})
	if err != nil {
		regenerationFailures.Inc()
		return fmt.Errorf("render: %w", err)
	}

	s.mu.Lock()
	s.dot = result.DOT
	s.svg = artifacts[pipeline.FormatSVG]
	s.stats = Stats{
		Nodes:       result.Stats.NodeCount,
		Edges:       result.Stats.EdgeCount,
		Files:       result.Files,
		Collisions:  result.Collisions,
		GeneratedAt: time.Now(),
	}
	s.mu.Unlock()

	duration := time.Since(start)
	regenerationsTotal.Inc()
	regenerationDuration.Observe(duration.Seconds())
	s.logger.Info("regenerated graph",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"duration", duration.Round(time.Millisecond))
	return nil
}

// Handler returns the HTTP routing tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.requestLogger)

	r.Get("/", s.handleIndex)
	r.Get("/graph.svg", s.handleSVG)
	r.Get("/graph.dot", s.handleDOT)
	r.Get("/api/stats", s.handleStats)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// =============================================================================
// Middleware
// =============================================================================

// requestID tags every request with a UUID, echoed in the response and
// available to the request logger.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(withRequestID(r.Context(), id)))
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequests.WithLabelValues(r.URL.Path).Inc()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestIDFromContext(r.Context()),
			"duration", time.Since(start).Round(time.Microsecond))
	})
}

type ctxKey int

const requestIDKey ctxKey = 0

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func requestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// =============================================================================
// Handlers
// =============================================================================

const indexPage = `<!DOCTYPE html>
<html>
<head>
<title>holgraph</title>
<meta http-equiv="refresh" content="10">
<style>body{margin:0;font-family:sans-serif}header{padding:8px 16px;background:#1a1a2e;color:#eee}header a{color:#9ad;margin-left:12px}img{max-width:100%%}</style>
</head>
<body>
<header>holgraph · %d nodes · %d edges <a href="/graph.dot">dot</a> <a href="/api/stats">stats</a></header>
<img src="/graph.svg" alt="dependency graph">
</body>
</html>
`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	stats := s.stats
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, indexPage, stats.Nodes, stats.Edges)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	svg := s.svg
	s.mu.RUnlock()

	if len(svg) == 0 {
		http.Error(w, "graph not generated yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(svg)
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	dot := s.dot
	s.mu.RUnlock()

	if dot == "" {
		http.Error(w, "graph not generated yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = w.Write([]byte(dot))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	stats := s.stats
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}
