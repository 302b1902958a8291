package proxy

import (
	"context"
	"time"
)

// Result classifies how a proxied request ended
type Result string

const (
	ResultOK       Result = "ok"
	ResultRejected Result = "rejected"
	ResultFailed   Result = "failed"
)

// Outcome describes one handled proxy request
type Outcome struct {
	RequestID string
	Action    string
	Selector  string
	Status    int
	Result    Result
	Err       error // server-side only, never sent to the client
	Duration  time.Duration
}

// Recorder receives the outcome of every handled request
type Recorder interface {
	Record(ctx context.Context, outcome Outcome) error
}

// RecorderFunc adapts a function to Recorder
type RecorderFunc func(ctx context.Context, outcome Outcome) error

// Record calls f
func (f RecorderFunc) Record(ctx context.Context, outcome Outcome) error {
	return f(ctx, outcome)
}
