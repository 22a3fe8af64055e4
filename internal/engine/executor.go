package engine

import (
	"context"

	"go.uber.org/zap"

	"goldbot/internal/broker"
	"goldbot/internal/model"
)

// ExecutionStatus classifies the gateway's answer to an order submission.
type ExecutionStatus string

const (
	// ExecFilled means the gateway reported success.
	ExecFilled ExecutionStatus = "FILLED"
	// ExecRejected means the gateway gave a definitive business decline
	// (invalid volume, market closed). Not retried automatically.
	ExecRejected ExecutionStatus = "REJECTED"
	// ExecUnreachable means a transport fault: the order may or may not
	// have reached the terminal. A retry must re-check the tracker first,
	// since the prior attempt can have succeeded despite the timeout.
	ExecUnreachable ExecutionStatus = "UNREACHABLE"
)

// Execution is the executor's structured report for one submission.
type Execution struct {
	Status ExecutionStatus   `json:"status"`
	Result model.OrderResult `json:"result"`
	Err    string            `json:"err,omitempty"`
}

// Executor submits orders to the gateway and classifies the outcome. It
// performs no retries and keeps no state beyond what it reports; retry
// policy belongs to whoever drives the cycle.
type Executor struct {
	gateway broker.Gateway
	logger  *zap.Logger
}

// NewExecutor creates an executor over the given gateway.
func NewExecutor(gw broker.Gateway, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{gateway: gw, logger: logger}
}

// SubmitEntry passes the request to the gateway unchanged and classifies
// the result. The request is never modified or resubmitted here.
func (e *Executor) SubmitEntry(ctx context.Context, req model.OrderRequest) Execution {
	result, err := e.gateway.SubmitOrder(ctx, req)
	if err != nil {
		e.logger.Warn("order_unreachable",
			zap.String("symbol", req.Symbol),
			zap.String("side", string(req.Side)),
			zap.Error(err),
		)
		return Execution{Status: ExecUnreachable, Err: err.Error()}
	}

	if result.Accepted && result.Retcode == model.RetcodeDone {
		e.logger.Info("order_filled",
			zap.String("symbol", req.Symbol),
			zap.String("side", string(req.Side)),
			zap.Float64("volume", req.Volume),
			zap.Float64("price", req.Price),
			zap.Float64("sl", req.StopLoss),
			zap.Float64("tp", req.TakeProfit),
			zap.Int64("ticket", result.Ticket),
		)
		return Execution{Status: ExecFilled, Result: result}
	}

	e.logger.Warn("order_rejected",
		zap.String("symbol", req.Symbol),
		zap.String("side", string(req.Side)),
		zap.Uint32("retcode", result.Retcode),
		zap.String("detail", result.Detail),
	)
	return Execution{Status: ExecRejected, Result: result}
}
