package app

import (
	"context"

	"github.com/dokzlo13/vibed/internal/ledger"
	"github.com/dokzlo13/vibed/internal/proxy"
)

// LedgerRecorder stores proxy outcomes in the action ledger
type LedgerRecorder struct {
	ledger *ledger.Ledger
}

// NewLedgerRecorder creates a recorder backed by l
func NewLedgerRecorder(l *ledger.Ledger) *LedgerRecorder {
	return &LedgerRecorder{ledger: l}
}

// Record implements proxy.Recorder
func (r *LedgerRecorder) Record(ctx context.Context, outcome proxy.Outcome) error {
	return r.ledger.Append(ctx, entryFromOutcome(outcome))
}

func entryFromOutcome(o proxy.Outcome) ledger.Entry {
	entry := ledger.Entry{
		RequestID: o.RequestID,
		Action:    o.Action,
		Selector:  o.Selector,
		Status:    o.Status,
		Result:    ledger.Result(o.Result),
		Duration:  o.Duration.Milliseconds(),
	}
	if o.Err != nil {
		entry.Error = o.Err.Error()
	}
	return entry
}
