// Package api is the operator command surface: a small HTTP JSON API that
// drives the cycle orchestrator and the flattening engine. It renders no
// dashboard; it only exposes decisions and commands.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"goldbot/internal/engine"
	"goldbot/internal/model"
)

// Driver is the engine-facing contract the API needs.
type Driver interface {
	RunCycle(ctx context.Context) engine.CycleReport
	FlattenAll(ctx context.Context, symbol string) ([]model.CloseOutcome, error)
	LastReport() engine.CycleReport
}

// Server is the operator REST server.
type Server struct {
	driver  Driver
	logger  *zap.Logger
	mux     *http.ServeMux
	srv     *http.Server
	address string
}

// NewServer creates an API server.
func NewServer(address string, driver Driver, logger *zap.Logger) *Server {
	s := &Server{
		driver:  driver,
		logger:  logger,
		mux:     http.NewServeMux(),
		address: address,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/api/cycle", s.handleCycle)
	s.mux.HandleFunc("/api/flatten", s.handleFlatten)
	s.mux.HandleFunc("/api/health", s.handleHealth)
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:    s.address,
		Handler: s.mux,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api_server_started", zap.String("address", s.address))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.APIResponse{
		Data:      map[string]string{"status": "ok"},
		Timestamp: time.Now(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.APIResponse{
		Data:      s.driver.LastReport(),
		Timestamp: time.Now(),
	})
}

// handleCycle runs one orchestrator pass on demand.
func (s *Server) handleCycle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, model.APIResponse{
			Error:     "POST required",
			Timestamp: time.Now(),
		})
		return
	}

	report := s.driver.RunCycle(r.Context())
	s.logger.Info("api_cycle",
		zap.String("signal", string(report.Signal)),
		zap.String("action", string(report.Action)),
	)
	writeJSON(w, http.StatusOK, model.APIResponse{
		Data:      report,
		Timestamp: time.Now(),
	})
}

// handleFlatten closes all open positions, bypassing signal logic. The full
// per-ticket manifest is returned even when some closes fail.
func (s *Server) handleFlatten(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, model.APIResponse{
			Error:     "POST required",
			Timestamp: time.Now(),
		})
		return
	}

	symbol := r.URL.Query().Get("symbol")
	outcomes, err := s.driver.FlattenAll(r.Context(), symbol)

	s.logger.Info("api_flatten",
		zap.String("symbol", symbol),
		zap.Int("positions", len(outcomes)),
		zap.Bool("partial_failure", errors.Is(err, engine.ErrPartialFlatten)),
	)

	resp := model.APIResponse{Data: outcomes, Timestamp: time.Now()}
	status := http.StatusOK
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrPartialFlatten):
		resp.Error = err.Error()
		status = http.StatusMultiStatus
	default:
		resp.Error = err.Error()
		status = http.StatusBadGateway
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
