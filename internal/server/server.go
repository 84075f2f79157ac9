// Package server exposes the current analysis over a local HTTP
// API. All state for a run is swapped atomically, so a reload or
// upload never leaves a request observing half of two runs.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	gosync "sync"
	"time"

	"github.com/AyGoub/gramview/internal/analyze"
	"github.com/AyGoub/gramview/internal/archive"
	"github.com/AyGoub/gramview/internal/config"
	"github.com/AyGoub/gramview/internal/store"
)

// VersionInfo holds build-time version metadata.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

// Server serves the analysis REST API.
type Server struct {
	mu      gosync.RWMutex
	cfg     config.Config
	store   *store.Store
	result  *analyze.Result
	loadErr string // guidance when no analysis is available
	mux     *http.ServeMux
	httpSrv *http.Server
	version VersionInfo
}

// New creates a Server with no analysis loaded.
func New(
	cfg config.Config, st *store.Store, opts ...Option,
) *Server {
	s := &Server{
		cfg:     cfg,
		store:   st,
		mux:     http.NewServeMux(),
		loadErr: "no archive loaded",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the build-time version metadata.
func WithVersion(v VersionInfo) Option {
	return func(s *Server) { s.version = v }
}

func (s *Server) routes() {
	s.mux.Handle("GET /api/v1/summary", http.HandlerFunc(s.handleSummary))
	s.mux.Handle("GET /api/v1/analytics/hours", http.HandlerFunc(s.handleHours))
	s.mux.Handle("GET /api/v1/analytics/heatmap", http.HandlerFunc(s.handleHeatmap))
	s.mux.Handle("GET /api/v1/analytics/daily", http.HandlerFunc(s.handleDaily))
	s.mux.Handle("GET /api/v1/analytics/timeline", http.HandlerFunc(s.handleTimeline))
	s.mux.Handle("GET /api/v1/analytics/themes", http.HandlerFunc(s.handleThemes))
	s.mux.Handle("GET /api/v1/sessions", http.HandlerFunc(s.handleListSessions))
	s.mux.Handle("GET /api/v1/sessions/export", http.HandlerFunc(s.handleExportSessions))
	s.mux.Handle("GET /api/v1/events", http.HandlerFunc(s.handleListEvents))
	s.mux.Handle("GET /api/v1/categories", http.HandlerFunc(s.handleCategories))
	s.mux.Handle("GET /api/v1/topics", http.HandlerFunc(s.handleTopics))
	s.mux.Handle("POST /api/v1/upload", http.HandlerFunc(s.handleUpload))
	s.mux.Handle("GET /api/v1/stats", http.HandlerFunc(s.handleStats))
	s.mux.Handle("GET /api/v1/version", http.HandlerFunc(s.handleVersion))
}

// SetResult installs a fresh analysis and mirrors its stream
// into the event store.
func (s *Server) SetResult(
	ctx context.Context, result *analyze.Result,
) error {
	if err := s.store.Replace(ctx, result.Stream); err != nil {
		return fmt.Errorf("loading event store: %w", err)
	}
	s.mu.Lock()
	s.result = result
	s.loadErr = ""
	s.mu.Unlock()
	return nil
}

// SetLoadError records why no analysis is available; served as
// guidance, not as a failure.
func (s *Server) SetLoadError(reason string) {
	s.mu.Lock()
	s.loadErr = reason
	s.mu.Unlock()
}

// LoadArchive analyzes the archive at path and installs the
// result. On analysis failure the server keeps its previous
// state and records the reason.
func (s *Server) LoadArchive(ctx context.Context, path string) error {
	result, err := archive.Analyze(
		path, s.cfg.SessionOptions(), s.cfg.Tagger(),
	)
	if err != nil {
		s.SetLoadError(err.Error())
		return err
	}
	return s.SetResult(ctx, result)
}

// current returns the installed analysis, or the guidance text
// when none is available.
func (s *Server) current() (*analyze.Result, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result, s.loadErr
}

func (s *Server) handleVersion(
	w http.ResponseWriter, _ *http.Request,
) {
	writeJSON(w, http.StatusOK, s.version)
}

// Handler returns the http.Handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(logMiddleware(s.mux))
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}
	s.mu.Lock()
	s.httpSrv = srv
	s.mu.Unlock()
	log.Printf("Starting server at http://%s", addr)
	return srv.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.httpSrv
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// FindAvailablePort finds an available port starting from the
// given port, binding to the specified host.
func FindAvailablePort(host string, start int) int {
	for port := start; port < start+100; port++ {
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			ln.Close()
			return port
		}
	}
	return start
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set(
				"Access-Control-Allow-Methods", "GET, POST, OPTIONS",
			)
			w.Header().Set(
				"Access-Control-Allow-Headers", "Content-Type",
			)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			log.Printf("%s %s", r.Method, r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}
