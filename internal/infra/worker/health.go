package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"daily-brief/internal/resilience/circuitbreaker"
)

// HealthServer serves liveness, readiness, and circuit status endpoints.
//
// Endpoints:
//   - GET /health:          liveness, always 200
//   - GET /health/ready:    readiness, 503 until SetReady(true)
//   - GET /health/circuits: JSON snapshot of every registered breaker
type HealthServer struct {
	addr     string
	logger   *slog.Logger
	breakers *circuitbreaker.Registry
	isReady  atomic.Bool
	server   *http.Server
}

type healthResponse struct {
	Status string `json:"status"`
}

// NewHealthServer creates a health server. The breaker registry may be nil
// when circuit status is not wanted; the endpoint then reports an empty list.
func NewHealthServer(port int, breakers *circuitbreaker.Registry, logger *slog.Logger) *HealthServer {
	return &HealthServer{
		addr:     fmt.Sprintf(":%d", port),
		logger:   logger,
		breakers: breakers,
	}
}

// SetReady flips the readiness state.
func (h *HealthServer) SetReady(ready bool) {
	h.isReady.Store(ready)
}

// Start runs the server until ctx is cancelled. It returns
// http.ErrServerClosed after a graceful shutdown.
func (h *HealthServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleLiveness)
	mux.HandleFunc("/health/ready", h.handleReadiness)
	mux.HandleFunc("/health/circuits", h.handleCircuits)

	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		if err := h.server.ListenAndServe(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("health server shutdown: %w", err)
		}
		return http.ErrServerClosed
	case err := <-errChan:
		return err
	}
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	if !h.isReady.Load() {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ready"})
}

func (h *HealthServer) handleCircuits(w http.ResponseWriter, _ *http.Request) {
	statuses := []circuitbreaker.Status{}
	if h.breakers != nil {
		statuses = h.breakers.Snapshot()
	}
	writeJSON(w, http.StatusOK, statuses)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
