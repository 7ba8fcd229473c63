// Package server provides the HTTP surface of the emoticon service:
// the analysis API, the live event stream, and the camera preview.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/emoticon-ai/emoticon/internal/analyzer"
	"github.com/emoticon-ai/emoticon/internal/capture"
	"github.com/emoticon-ai/emoticon/internal/server/api"
	"github.com/emoticon-ai/emoticon/internal/session"
	"github.com/emoticon-ai/emoticon/internal/store"
)

// Config holds the server configuration. Nil dependencies disable the
// routes that need them.
type Config struct {
	StaticDir string
	Store     *store.Store
	Camera    capture.Camera
	Session   *session.Session
	Analyzer  *analyzer.VideoAnalyzer

	// MaxUploadBytes caps video uploads; 0 uses the capture default.
	MaxUploadBytes int64
}

// Server is the HTTP server for the emoticon application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.mountAPI()
	s.mountUI()
	return s
}

func (s *Server) mountAPI() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if st := s.config.Store; st != nil {
		analyses := api.NewAnalysesHandler(st)
		s.mux.Handle("/api/analyses", analyses)
		s.mux.Handle("/api/analyses/", analyses)

		sessions := api.NewSessionsHandler(st)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)

		s.mux.Handle("/api/stats", api.NewStatsHandler(st))

		var tuner api.Tuner
		if s.config.Session != nil {
			tuner = s.config.Session
		}
		s.mux.Handle("/api/settings", api.NewSettingsHandler(st, tuner))
	}

	if s.config.Analyzer != nil {
		s.mux.Handle("/api/videos", api.NewVideosHandler(s.config.Analyzer, s.config.MaxUploadBytes))
	}
	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera))
	}
	if s.config.Session != nil {
		s.mux.Handle("/api/events", NewEventsHandler(s.config.Session.Events()))
	}
}

func (s *Server) mountUI() {
	if s.config.StaticDir == "" {
		return
	}
	s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}{
		Status: "ok",
		Uptime: time.Since(s.start).String(),
	})
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
