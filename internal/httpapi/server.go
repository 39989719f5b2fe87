// Package httpapi serves projection results over a local, read-only
// HTTP surface. The server never triggers computation; it only reads
// results a pipeline run has already published.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/halverson/pennantcast/internal/model"
	"github.com/halverson/pennantcast/internal/pipeline"
)

// Results is the read surface the server exposes.
type Results interface {
	Season(year int) (*pipeline.SeasonProjection, bool)
	Records(year int) ([]model.TeamRecord, bool)
}

// MemoryResults is an in-memory Results store safe for concurrent use.
type MemoryResults struct {
	mu      sync.RWMutex
	seasons map[int]*pipeline.SeasonProjection
	records map[int][]model.TeamRecord
}

// NewMemoryResults builds an empty results store.
func NewMemoryResults() *MemoryResults {
	return &MemoryResults{
		seasons: map[int]*pipeline.SeasonProjection{},
		records: map[int][]model.TeamRecord{},
	}
}

// PutSeason publishes one season's projection.
func (m *MemoryResults) PutSeason(proj *pipeline.SeasonProjection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seasons[proj.Year] = proj
}

// PutRecords publishes one season's calibrated records.
func (m *MemoryResults) PutRecords(year int, records []model.TeamRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[year] = records
}

// Season returns the published projection for a year.
func (m *MemoryResults) Season(year int) (*pipeline.SeasonProjection, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	proj, ok := m.seasons[year]
	return proj, ok
}

// Records returns the published records for a year.
func (m *MemoryResults) Records(year int) ([]model.TeamRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records, ok := m.records[year]
	return records, ok
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig binds to localhost only; HTTP_PORT overrides the
// port.
func DefaultServerConfig() ServerConfig {
	port := 8080
	if portStr := os.Getenv("HTTP_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}
	return ServerConfig{
		Host:         "127.0.0.1",
		Port:         port,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Server is the read-only HTTP server.
type Server struct {
	router  *mux.Router
	server  *http.Server
	results Results
	started time.Time
	config  ServerConfig
}

// NewServer builds a server over the given results store. A non-nil
// gatherer enables the /metrics endpoint.
func NewServer(cfg ServerConfig, results Results, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		results: results,
		started: time.Now(),
		config:  cfg,
	}
	s.setupRoutes(gatherer)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)

	if gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	api := s.router.PathPrefix("/").Subrouter()
	api.Use(jsonContentTypeMiddleware)
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/projections/{year:[0-9]+}", s.handleProjections).Methods("GET")
	api.HandleFunc("/standings/{year:[0-9]+}", s.handleStandings).Methods("GET")

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
}

// Router exposes the handler tree, mainly for tests.
func (s *Server) Router() http.Handler { return s.router }

// Start runs the server until it is shut down.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("http server starting")
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("http server shutting down")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.started).Truncate(time.Second).String(),
	})
}

func (s *Server) handleProjections(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	proj, ok := s.results.Season(year)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no projection for %d", year))
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	records, ok := s.results.Records(year)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no standings for %d", year))
		return
	}
	writeJSON(w, http.StatusOK, records)
}

type contextKey string

const requestIDKey contextKey = "request_id"

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()[:8]
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		requestID, _ := r.Context().Value(requestIDKey).(string)
		log.Debug().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.status).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}

func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, status, map[string]string{"error": msg})
}
