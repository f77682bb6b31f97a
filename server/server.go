// Package server exposes the aggregation pipeline over HTTP: a JSON search
// API, CSV/XLSX downloads and a cached scheduled digest.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"newsbrief/pkg/domain"
	"newsbrief/pkg/pipeline"
)

// Runner executes the aggregation pipeline for a query.
type Runner interface {
	Run(ctx context.Context, query string, opts pipeline.Options) ([]domain.Item, error)
}

// ConfigProvider provides server configuration and pipeline defaults.
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
	PipelineDefaults() pipeline.Options
}

// Server represents the HTTP server instance.
type Server struct {
	config  ConfigProvider
	runner  Runner
	version string
	debug   bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle

	digestMu    sync.RWMutex
	digestItems []domain.Item
	digestQuery string
	digestAt    time.Time
}

// New initializes a new server instance.
func New(cfg ConfigProvider, runner Runner, version string, debug bool) *Server {
	s := &Server{
		config:  cfg,
		runner:  runner,
		version: version,
		debug:   debug,
		router:  routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	log.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:         listen,
		Handler:      s.router,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// Refresh re-runs the scheduled digest query and swaps the cache. Called by
// the cron schedule; the cache is in-memory only and dies with the process.
func (s *Server) Refresh(ctx context.Context, query string) error {
	items, err := s.runner.Run(ctx, query, s.config.PipelineDefaults())
	if err != nil {
		return fmt.Errorf("digest run: %w", err)
	}

	s.digestMu.Lock()
	s.digestItems = items
	s.digestQuery = query
	s.digestAt = time.Now()
	s.digestMu.Unlock()

	log.Printf("[INFO] digest refreshed for %q, %d items", query, len(items))
	return nil
}

// setupMiddleware configures standard middleware for the server.
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("newsbrief", "newsbrief", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes.
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /search", s.searchHandler)
		r.HandleFunc("GET /search.csv", s.searchCSVHandler)
		r.HandleFunc("GET /search.xlsx", s.searchXLSXHandler)
		r.HandleFunc("GET /digest", s.digestHandler)
	})
}

// statusHandler returns server status.
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}
	RenderJSON(w, r, http.StatusOK, status)
}

// RenderJSON sends JSON response.
func RenderJSON(w http.ResponseWriter, _ *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// RenderError sends error response as JSON.
func RenderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	RenderJSON(w, r, code, map[string]string{"error": errMsg})
}
