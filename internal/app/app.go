// Package app wires configuration, logging, the bridge, the strategy
// engine, and the operator surfaces into one runnable daemon.
package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"goldbot/internal/api"
	"goldbot/internal/bridge"
	"goldbot/internal/config"
	"goldbot/internal/engine"
	"goldbot/internal/logging"
	"goldbot/internal/metrics"
	"goldbot/internal/model"
)

// App is the application lifecycle manager.
type App struct {
	cfg *config.Config
}

// New creates a new App instance.
func New(cfg *config.Config) *App {
	return &App{cfg: cfg}
}

// Run starts the full application: bridge, engine, API, metrics, and the
// cycle scheduler. It blocks until SIGINT/SIGTERM or a fatal server error.
func (a *App) Run() error {
	log, err := logging.Build(a.cfg.App.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("starting goldbot",
		zap.String("symbol", a.cfg.Strategy.Symbol),
		zap.String("timeframe", a.cfg.Strategy.Timeframe),
		zap.Int("magic", a.cfg.Strategy.Magic),
		zap.String("bridge", a.cfg.Bridge.Address),
	)

	br := bridge.New(
		a.cfg.Bridge.Address,
		time.Duration(a.cfg.Bridge.DialTimeoutMs)*time.Millisecond,
		time.Duration(a.cfg.Bridge.RequestTimeoutMs)*time.Millisecond,
		log,
	)
	defer br.Close()

	st := a.cfg.Strategy
	builder := engine.NewOrderBuilder(st.Symbol, st.Magic, model.FillFOK, engine.Risk{
		StopLossDistance:   st.StopLossDist,
		TakeProfitDistance: st.TakeProfitDist,
		Volume:             st.Volume,
	})
	tracker := engine.NewTracker(br)
	executor := engine.NewExecutor(br, log)
	orch := engine.NewOrchestrator(br, tracker, builder, executor, engine.OrchestratorParams{
		Symbol:      st.Symbol,
		Timeframe:   model.Timeframe(st.Timeframe),
		CandleCount: st.CandleCount,
		RSIPeriod:   st.RSIPeriod,
		Thresholds:  engine.Thresholds{Oversold: st.Oversold, Overbought: st.Overbought},
		Magic:       st.Magic,
	}, log)
	flattener := engine.NewFlattener(br, br, builder, log)

	m := metrics.New()
	health := metrics.NewHealth()
	drv := &driver{
		orch:      orch,
		flattener: flattener,
		metrics:   m,
		health:    health,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 2)

	apiSrv := api.NewServer(a.cfg.API.ListenAddress, drv, log)
	go func() {
		errCh <- apiSrv.Run(ctx)
	}()

	if a.cfg.Metrics.Enabled {
		metricsSrv := metrics.NewServer(a.cfg.Metrics.ListenAddress, health, log)
		go func() {
			errCh <- metricsSrv.Run(ctx)
		}()
	}

	go a.cycleLoop(ctx, drv, log)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown_signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("fatal_error", zap.Error(err))
		}
	}

	cancel()
	log.Info("goldbot stopped")
	return nil
}

// cycleLoop invokes the orchestrator on the configured interval. Cycles run
// strictly sequentially: the synchronous call blocks the loop, so no two
// cycles overlap for the instrument.
func (a *App) cycleLoop(ctx context.Context, drv *driver, log *zap.Logger) {
	interval := time.Duration(a.cfg.Strategy.CycleIntervalMs) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("cycle_loop_started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			drv.RunCycle(ctx)
		}
	}
}

// driver adapts the engine to the API surface and records metrics for every
// command that passes through.
type driver struct {
	orch      *engine.Orchestrator
	flattener *engine.Flattener
	metrics   *metrics.Metrics
	health    *metrics.Health
}

func (d *driver) RunCycle(ctx context.Context) engine.CycleReport {
	report := d.orch.RunCycle(ctx)

	d.metrics.CyclesTotal.WithLabelValues(string(report.Action)).Inc()
	d.metrics.SignalsTotal.WithLabelValues(string(report.Signal)).Inc()
	d.metrics.CurrentRSI.Set(report.RSI)
	d.metrics.CycleDuration.Observe(report.Duration.Seconds())
	if report.Degraded {
		d.metrics.DegradedCycles.Inc()
	}
	if report.Execution != nil {
		d.metrics.OrdersTotal.WithLabelValues(string(report.Execution.Status)).Inc()
	}

	d.health.MarkCycle(time.Now())
	d.health.SetBridgeOK(!report.Degraded && report.Action != engine.ActionSuppressed)

	return report
}

func (d *driver) FlattenAll(ctx context.Context, symbol string) ([]model.CloseOutcome, error) {
	outcomes, err := d.flattener.FlattenAll(ctx, symbol)
	for _, out := range outcomes {
		result := "failed"
		if out.Succeeded {
			result = "closed"
		}
		d.metrics.FlattenOutcomes.WithLabelValues(result).Inc()
	}
	return outcomes, err
}

func (d *driver) LastReport() engine.CycleReport {
	return d.orch.LastReport()
}
