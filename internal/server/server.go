// Package server exposes the prediction service over HTTP: the JSON
// API, health and metrics endpoints and the live WebSocket stream.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"bigsmall-bot/internal/common"
	"bigsmall-bot/internal/predict"
)

// Predictor runs one prediction cycle per call.
type Predictor interface {
	Predict(ctx context.Context) (*predict.Payload, error)
}

// MetricsInterface defines the metrics the HTTP surface reports.
type MetricsInterface interface {
	HTTPDurationObserve(path string, seconds float64)
	WSClientsAdd(delta float64)
	WSBroadcastsInc()
}

var endpoints = []string{
	"GET /",
	"GET /api/predict",
	"GET /health",
	"GET /metrics",
	"GET /ws",
}

// Server serves the prediction API and the WebSocket stream.
type Server struct {
	predictor Predictor
	hub       *Hub
	server    *http.Server
	metrics   MetricsInterface
	logger    zerolog.Logger
	startedAt time.Time
}

// New builds the server with all routes registered on the given
// listen address.
func New(addr string, predictor Predictor) *Server {
	s := &Server{
		predictor: predictor,
		hub:       NewHub(),
		logger:    log.With().Str("component", "server").Logger(),
		startedAt: time.Now(),
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleRoot).Methods("GET")
	r.HandleFunc("/api/predict", s.handlePredict).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/ws", s.hub.Handle).Methods("GET")
	r.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	r.Use(s.requestLog)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// SetMetrics attaches the metrics sink to the server and the stream
// hub.
func (s *Server) SetMetrics(m MetricsInterface) {
	s.metrics = m
	s.hub.SetMetrics(m)
}

// Start begins serving HTTP requests. It blocks until the server
// stops.
func (s *Server) Start() error {
	s.hub.Start()
	s.logger.Info().Str("addr", s.server.Addr).Msg("starting HTTP server")
	return s.server.ListenAndServe()
}

// Stop closes the stream hub and gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.hub.Stop()
	return s.server.Shutdown(ctx)
}

type successEnvelope struct {
	Success         bool             `json:"success"`
	Data            *predict.Payload `json:"data"`
	ExecutionTimeMS int64            `json:"execution_time_ms"`
	Timestamp       string           `json:"timestamp"`
}

type errorEnvelope struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "online",
		"service":   common.ServiceName,
		"version":   common.Version,
		"endpoints": endpoints,
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	payload, err := s.predictor.Predict(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorEnvelope{
			Success:   false,
			Error:     err.Error(),
			Timestamp: timestamp(),
		})
		return
	}

	s.hub.Broadcast(payload)

	writeJSON(w, http.StatusOK, successEnvelope{
		Success:         true,
		Data:            payload,
		ExecutionTimeMS: time.Since(start).Milliseconds(),
		Timestamp:       timestamp(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"uptime_seconds": time.Since(s.startedAt).Seconds(),
		"goroutines":     runtime.NumGoroutine(),
		"memory": map[string]interface{}{
			"alloc_bytes":       mem.Alloc,
			"total_alloc_bytes": mem.TotalAlloc,
			"sys_bytes":         mem.Sys,
			"num_gc":            mem.NumGC,
		},
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]interface{}{
		"success":   false,
		"error":     fmt.Sprintf("endpoint %s not found", r.URL.Path),
		"endpoints": endpoints,
		"timestamp": timestamp(),
	})
}

// requestLog logs every matched request with a request id and feeds
// the duration histogram.
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		if s.metrics != nil {
			s.metrics.HTTPDurationObserve(path, elapsed.Seconds())
		}

		s.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", elapsed).
			Msg("request served")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack forwards to the wrapped writer so the stream upgrade works
// through the logging middleware.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return h.Hijack()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
