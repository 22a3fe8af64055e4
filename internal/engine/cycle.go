package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"goldbot/internal/broker"
	"goldbot/internal/indicator"
	"goldbot/internal/model"
)

// CycleState is a phase of the per-cycle state machine.
type CycleState string

const (
	StateIdle         CycleState = "IDLE"
	StateFetchingData CycleState = "FETCHING_DATA"
	StateDeciding     CycleState = "DECIDING"
	StateActing       CycleState = "ACTING"
	StateReporting    CycleState = "REPORTING"
)

// CycleAction names what a cycle ultimately did.
type CycleAction string

const (
	// ActionHold: signal was None, nothing to do.
	ActionHold CycleAction = "HOLD"
	// ActionEntered: an entry order was submitted (see Execution for the verdict).
	ActionEntered CycleAction = "ENTERED"
	// ActionPositionOpen: a strategy-owned position is already open, so the
	// signal was ignored. The engine never scales in or pyramids.
	ActionPositionOpen CycleAction = "POSITION_OPEN"
	// ActionSuppressed: position state is unknown (gateway unreachable);
	// entries are suppressed, failing closed.
	ActionSuppressed CycleAction = "SUPPRESSED"
	// ActionSkipped: the previous cycle was still running.
	ActionSkipped CycleAction = "SKIPPED"
)

// CycleReport is the structured outcome of one orchestrator pass. Every
// cycle completes and produces one of these; no error escapes RunCycle.
type CycleReport struct {
	StartedAt time.Time              `json:"startedAt"`
	Duration  time.Duration          `json:"duration"`
	State     CycleState             `json:"state"`
	RSI       float64                `json:"rsi"`
	Signal    model.Signal           `json:"signal"`
	Action    CycleAction            `json:"action"`
	Degraded  bool                   `json:"degraded"`
	Execution *Execution             `json:"execution,omitempty"`
	Account   *model.AccountSnapshot `json:"account,omitempty"`
	Err       string                 `json:"err,omitempty"`
}

// Orchestrator ties indicator, classifier, tracker, builder, and executor
// together into one decision pass per invocation. It is re-entrant across
// cycles but not within one: an invocation that arrives while a cycle is
// underway is rejected, not queued.
type Orchestrator struct {
	market   broker.MarketData
	tracker  *Tracker
	builder  *OrderBuilder
	executor *Executor

	symbol      string
	timeframe   model.Timeframe
	candleCount int
	period      int
	thresholds  Thresholds
	magic       int

	logger *zap.Logger

	runMu  sync.Mutex // held for the duration of one cycle
	lastMu sync.Mutex
	last   CycleReport
}

// OrchestratorParams collects the per-instrument strategy settings,
// resolved once at startup.
type OrchestratorParams struct {
	Symbol      string
	Timeframe   model.Timeframe
	CandleCount int
	RSIPeriod   int
	Thresholds  Thresholds
	Magic       int
}

// NewOrchestrator wires a cycle orchestrator for one instrument.
func NewOrchestrator(
	md broker.MarketData,
	tracker *Tracker,
	builder *OrderBuilder,
	executor *Executor,
	p OrchestratorParams,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		market:      md,
		tracker:     tracker,
		builder:     builder,
		executor:    executor,
		symbol:      p.Symbol,
		timeframe:   p.Timeframe,
		candleCount: p.CandleCount,
		period:      p.RSIPeriod,
		thresholds:  p.Thresholds,
		magic:       p.Magic,
		logger:      logger,
		last:        CycleReport{State: StateIdle, Signal: model.SignalNone},
	}
}

// LastReport returns the most recent cycle report.
func (o *Orchestrator) LastReport() CycleReport {
	o.lastMu.Lock()
	defer o.lastMu.Unlock()
	return o.last
}

// RunCycle executes one pass: fetch data, compute the indicator, check the
// tracker, decide, act, report. All failures are recoverable at the cycle
// boundary; the cycle always reaches Reporting with a structured outcome.
func (o *Orchestrator) RunCycle(ctx context.Context) CycleReport {
	if !o.runMu.TryLock() {
		return CycleReport{
			StartedAt: time.Now(),
			State:     StateReporting,
			Signal:    model.SignalNone,
			Action:    ActionSkipped,
			Err:       "previous cycle still running",
		}
	}
	defer o.runMu.Unlock()

	report := o.runLocked(ctx)

	o.lastMu.Lock()
	o.last = report
	o.lastMu.Unlock()

	o.logger.Info("cycle_complete",
		zap.String("symbol", o.symbol),
		zap.Float64("rsi", report.RSI),
		zap.String("signal", string(report.Signal)),
		zap.String("action", string(report.Action)),
		zap.Bool("degraded", report.Degraded),
		zap.Duration("duration", report.Duration),
	)
	return report
}

func (o *Orchestrator) runLocked(ctx context.Context) CycleReport {
	report := CycleReport{
		StartedAt: time.Now(),
		State:     StateFetchingData,
		RSI:       indicator.NeutralRSI,
		Signal:    model.SignalNone,
		Action:    ActionHold,
	}
	defer func() {
		report.State = StateReporting
		report.Duration = time.Since(report.StartedAt)
	}()

	// Account snapshot is informational; its failure does not degrade the cycle.
	if acct, err := o.market.Account(ctx); err == nil {
		report.Account = &acct
	}

	candles, err := o.market.Candles(ctx, o.symbol, o.timeframe, o.candleCount)
	if err != nil {
		// Market data down: degrade to a neutral signal, do not fault.
		report.Degraded = true
		report.Err = err.Error()
		o.logger.Warn("cycle_data_unavailable", zap.String("symbol", o.symbol), zap.Error(err))
		return report
	}

	report.State = StateDeciding
	rsi, err := indicator.RSI(candles, o.period)
	if err != nil {
		if !errors.Is(err, indicator.ErrInsufficientData) {
			report.Err = err.Error()
		}
		report.Degraded = true
		return report
	}
	report.RSI = rsi
	report.Signal = Classify(rsi, o.thresholds)

	if report.Signal == model.SignalNone {
		return report
	}

	hasOpen, err := o.tracker.HasOpenPosition(ctx, o.symbol, o.magic)
	if err != nil {
		// Position state unknown: fail closed, never open on a guess.
		report.Action = ActionSuppressed
		report.Err = err.Error()
		o.logger.Warn("cycle_entry_suppressed", zap.String("symbol", o.symbol), zap.Error(err))
		return report
	}
	if hasOpen {
		report.Action = ActionPositionOpen
		return report
	}

	quote, err := o.market.Quote(ctx, o.symbol)
	if err != nil {
		report.Degraded = true
		report.Err = err.Error()
		o.logger.Warn("cycle_quote_unavailable", zap.String("symbol", o.symbol), zap.Error(err))
		return report
	}

	report.State = StateActing
	req, err := o.builder.BuildEntry(report.Signal, quote)
	if err != nil {
		report.Err = err.Error()
		return report
	}

	exec := o.executor.SubmitEntry(ctx, req)
	report.Action = ActionEntered
	report.Execution = &exec
	return report
}
