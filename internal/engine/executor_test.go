package engine

import (
	"context"
	"testing"

	"goldbot/internal/broker"
	"goldbot/internal/model"
)

func entryRequest() model.OrderRequest {
	return model.OrderRequest{
		Symbol:     "XAUUSD",
		Side:       model.SideBuy,
		Volume:     0.01,
		Price:      2000.00,
		StopLoss:   1995.00,
		TakeProfit: 2005.00,
		Magic:      202401,
		FillPolicy: model.FillFOK,
	}
}

func TestExecutor_Filled(t *testing.T) {
	gw := &fakeGateway{}
	exec := NewExecutor(gw, nil).SubmitEntry(context.Background(), entryRequest())

	if exec.Status != ExecFilled {
		t.Fatalf("status = %v, want FILLED", exec.Status)
	}
	if exec.Result.Ticket == 0 {
		t.Error("filled execution should carry the resulting ticket")
	}
}

func TestExecutor_Rejected(t *testing.T) {
	gw := &fakeGateway{rejectEntry: &model.OrderResult{
		Accepted: false,
		Retcode:  model.RetcodeInvalidVolume,
		Detail:   "invalid volume",
	}}
	exec := NewExecutor(gw, nil).SubmitEntry(context.Background(), entryRequest())

	if exec.Status != ExecRejected {
		t.Fatalf("status = %v, want REJECTED", exec.Status)
	}
	if exec.Result.Retcode != model.RetcodeInvalidVolume {
		t.Errorf("retcode = %d, want %d", exec.Result.Retcode, model.RetcodeInvalidVolume)
	}
	// A definitive decline is never retried by the executor.
	if got := gw.submittedCount(); got != 1 {
		t.Errorf("gateway saw %d submissions, want 1", got)
	}
}

func TestExecutor_AcceptedWithOddRetcodeIsRejected(t *testing.T) {
	// A result that claims acceptance but carries a non-done retcode is not
	// a fill.
	gw := &fakeGateway{rejectEntry: &model.OrderResult{
		Accepted: true,
		Retcode:  model.RetcodeMarketClosed,
		Detail:   "market closed",
	}}
	exec := NewExecutor(gw, nil).SubmitEntry(context.Background(), entryRequest())

	if exec.Status != ExecRejected {
		t.Fatalf("status = %v, want REJECTED", exec.Status)
	}
}

func TestExecutor_Unreachable(t *testing.T) {
	gw := &fakeGateway{submitErr: broker.ErrGatewayUnavailable}
	exec := NewExecutor(gw, nil).SubmitEntry(context.Background(), entryRequest())

	if exec.Status != ExecUnreachable {
		t.Fatalf("status = %v, want UNREACHABLE", exec.Status)
	}
	if exec.Err == "" {
		t.Error("unreachable execution should carry the transport error")
	}
	// Exactly one attempt: retry policy lives with the orchestrator.
	if got := gw.submittedCount(); got != 0 {
		t.Errorf("fake recorded %d submissions after transport fault, want 0", got)
	}
}
