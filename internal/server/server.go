// Package server provides the HTTP server: health, the composited MJPEG
// stream, the telemetry websocket and the JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/pinchball/internal/game"
	"github.com/ayusman/pinchball/internal/server/api"
	"github.com/ayusman/pinchball/internal/store"
)

// Engine is the running playground as seen by the server.
type Engine interface {
	api.Controller
	api.Tuner
	Snapshot() game.Snapshot
	JPEG() ([]byte, uint64)
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Engine    Engine
}

// Server represents the HTTP server for the playground.
type Server struct {
	config    Config
	mux       *http.ServeMux
	start     time.Time
	telemetry *TelemetryHandler

	mu   sync.Mutex
	http *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		sessions := api.NewSessionsHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
	}

	if e := s.config.Engine; e != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(e))

		s.telemetry = NewTelemetryHandler(e)
		s.mux.Handle("/api/telemetry", s.telemetry)

		s.mux.Handle("/api/settings", api.NewSettingsHandler(e, s.config.Store))

		control := api.NewControlHandler(e)
		s.mux.Handle("/api/spawn", control)
		s.mux.Handle("/api/pause", control)
		s.mux.Handle("/api/resume", control)
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Engine != nil {
		snap := s.config.Engine.Snapshot()
		response["tick"] = snap.Tick
		response["paused"] = s.config.Engine.Paused()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address. It returns
// nil after Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.mu.Lock()
	s.http = &http.Server{Addr: addr, Handler: s}
	srv := s.http
	s.mu.Unlock()

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the telemetry broadcaster and gracefully stops the
// listener if one is running.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.telemetry != nil {
		s.telemetry.Close()
	}

	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
