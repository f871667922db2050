// Package httpapi exposes the query pipeline over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driving"
	"github.com/clearpath-labs/clearpath/internal/logger"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("httpapi: retrieval service is required")

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	// Retrieval ranks chunks. Required.
	Retrieval driving.RetrievalService

	// Router classifies queries. Optional.
	Router driving.RouterService

	// Query answers questions. Optional; /query returns 503 without it.
	Query driving.QueryService

	// Index rebuilds the index. Optional; /index returns 503 without it.
	Index driving.IndexService
}

// Config holds the transport settings.
type Config struct {
	// Addr is the listen address.
	Addr string

	// RequestsPerSecond limits /query. Zero disables the limiter.
	RequestsPerSecond float64
}

// Server is the HTTP transport.
type Server struct {
	ports   *Ports
	addr    string
	limiter *rate.Limiter
	router  chi.Router
}

// NewServer creates a server and registers its routes.
func NewServer(ports *Ports, cfg Config) (*Server, error) {
	if ports == nil || ports.Retrieval == nil {
		return nil, ErrMissingRetrievalService
	}
	if cfg.Addr == "" {
		cfg.Addr = domain.DefaultServerAddr
	}

	s := &Server{ports: ports, addr: cfg.Addr}
	if cfg.RequestsPerSecond > 0 {
		burst := max(1, int(cfg.RequestsPerSecond))
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", s.handleHealth)
	r.With(s.rateLimit).Post("/query", s.handleQuery)
	r.With(s.rateLimit).Post("/retrieve", s.handleRetrieve)
	r.Post("/route", s.handleRoute)
	r.Post("/index", s.handleBuildIndex)
	r.Get("/index", s.handleIndexStatus)

	s.router = r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP server listening on %s", s.addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status     string `json:"status"`
	IndexReady bool   `json:"index_ready"`
}

type retrieveRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

type retrieveResponse struct {
	Results []domain.RetrievalResult `json:"results"`
}

type routeRequest struct {
	Query string `json:"query"`
}

type buildResponse struct {
	Skipped         bool     `json:"skipped"`
	Documents       int      `json:"documents"`
	FailedDocuments []string `json:"failed_documents,omitempty"`
	Chunks          int      `json:"chunks"`
	EmptyChunks     int      `json:"empty_chunks"`
	Fingerprint     string   `json:"fingerprint"`
	DurationMS      int64    `json:"duration_ms"`
}

type statusResponse struct {
	Exists             bool             `json:"exists"`
	Stale              bool             `json:"stale"`
	Loaded             bool             `json:"loaded"`
	CurrentFingerprint string           `json:"current_fingerprint"`
	Manifest           *domain.Manifest `json:"manifest,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", IndexReady: s.ports.Retrieval.Ready()})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if s.ports.Query == nil {
		writeError(w, domain.ErrLLMUnavailable)
		return
	}
	var q domain.Question
	if !decodeBody(w, r, &q) {
		return
	}
	if err := s.ports.Retrieval.EnsureLoaded(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	answer, err := s.ports.Query.Ask(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.ports.Retrieval.EnsureLoaded(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	results, err := s.ports.Retrieval.Retrieve(r.Context(), req.Query, req.TopK)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, retrieveResponse{Results: results})
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	if s.ports.Router == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "router not configured"})
		return
	}
	var req routeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.ports.Router.Route(req.Query))
}

func (s *Server) handleBuildIndex(w http.ResponseWriter, r *http.Request) {
	if s.ports.Index == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "indexing not configured"})
		return
	}
	force := false
	if raw := r.URL.Query().Get("force"); raw != "" {
		var err error
		if force, err = strconv.ParseBool(raw); err != nil {
			writeError(w, fmt.Errorf("%w: force=%q", domain.ErrInvalidInput, raw))
			return
		}
	}

	report, err := s.ports.Index.BuildIndex(r.Context(), force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildResponse{
		Skipped:         report.Skipped,
		Documents:       report.Documents,
		FailedDocuments: report.FailedDocuments,
		Chunks:          report.Chunks,
		EmptyChunks:     report.EmptyChunks,
		Fingerprint:     report.Fingerprint,
		DurationMS:      report.Duration.Milliseconds(),
	})
}

func (s *Server) handleIndexStatus(w http.ResponseWriter, r *http.Request) {
	if s.ports.Index == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "indexing not configured"})
		return
	}
	status, err := s.ports.Index.Status(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Exists:             status.Exists,
		Stale:              status.Stale,
		Loaded:             s.ports.Retrieval.Ready(),
		CurrentFingerprint: status.CurrentFingerprint,
		Manifest:           status.Manifest,
	})
}

// rateLimit rejects requests beyond the configured rate with 429.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debug("%s %s -> %d (%s)", r.Method, r.URL.Path, ww.Status(), time.Since(started).Round(time.Millisecond))
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	return true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrIndexUnavailable), errors.Is(err, domain.ErrLLMUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrBuildInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptyCorpus):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
