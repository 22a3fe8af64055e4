// Package metrics exposes Prometheus counters and a health endpoint for the
// strategy loop.
package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics holds all Prometheus metrics for the strategy loop.
type Metrics struct {
	CyclesTotal     *prometheus.CounterVec // labels: action
	SignalsTotal    *prometheus.CounterVec // labels: signal
	OrdersTotal     *prometheus.CounterVec // labels: status
	FlattenOutcomes *prometheus.CounterVec // labels: result
	DegradedCycles  prometheus.Counter
	CurrentRSI      prometheus.Gauge
	CycleDuration   prometheus.Histogram
}

// New registers and returns all strategy metrics.
func New() *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "goldbot_cycles_total",
			Help: "Completed strategy cycles by resulting action",
		}, []string{"action"}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "goldbot_signals_total",
			Help: "Classified signals by kind",
		}, []string{"signal"}),
		OrdersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "goldbot_orders_total",
			Help: "Entry order submissions by execution status",
		}, []string{"status"}),
		FlattenOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "goldbot_flatten_outcomes_total",
			Help: "Per-position flatten outcomes",
		}, []string{"result"}),
		DegradedCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "goldbot_degraded_cycles_total",
			Help: "Cycles completed with a neutral signal due to missing data",
		}),
		CurrentRSI: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "goldbot_rsi",
			Help: "Most recent RSI value",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "goldbot_cycle_duration_seconds",
			Help:    "Wall time of one strategy cycle",
			Buckets: prometheus.DefBuckets,
		}),
	}

	prometheus.MustRegister(
		m.CyclesTotal,
		m.SignalsTotal,
		m.OrdersTotal,
		m.FlattenOutcomes,
		m.DegradedCycles,
		m.CurrentRSI,
		m.CycleDuration,
	)

	return m
}

// Health tracks bridge connectivity and cycle freshness for /healthz.
type Health struct {
	mu          sync.RWMutex
	startedAt   time.Time
	bridgeOK    bool
	lastCycleAt time.Time
}

// NewHealth returns a default health status.
func NewHealth() *Health {
	return &Health{startedAt: time.Now()}
}

// SetBridgeOK records terminal connectivity.
func (h *Health) SetBridgeOK(ok bool) {
	h.mu.Lock()
	h.bridgeOK = ok
	h.mu.Unlock()
}

// MarkCycle records the completion time of the latest cycle.
func (h *Health) MarkCycle(at time.Time) {
	h.mu.Lock()
	h.lastCycleAt = at
	h.mu.Unlock()
}

// ServeHTTP handles the /healthz endpoint.
func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	bridgeOK := h.bridgeOK
	lastCycleAt := h.lastCycleAt
	startedAt := h.startedAt
	h.mu.RUnlock()

	status := "healthy"
	code := http.StatusOK
	if !bridgeOK {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	cycleAge := ""
	if !lastCycleAt.IsZero() {
		cycleAge = time.Since(lastCycleAt).Round(time.Millisecond).String()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(struct {
		Status    string `json:"status"`
		Uptime    string `json:"uptime"`
		BridgeOK  bool   `json:"bridge_ok"`
		CycleAge  string `json:"cycle_age"`
		LastCycle string `json:"last_cycle_at"`
	}{
		Status:    status,
		Uptime:    time.Since(startedAt).Round(time.Second).String(),
		BridgeOK:  bridgeOK,
		CycleAge:  cycleAge,
		LastCycle: lastCycleAt.Format(time.RFC3339),
	})
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *Health, logger *zap.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", health)

	return &Server{
		srv:    &http.Server{Addr: addr, Handler: mux},
		logger: logger,
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("metrics_server_started", zap.String("address", s.srv.Addr))
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
