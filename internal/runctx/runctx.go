package runctx

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type key int

const runKey key = 0

// RunContext identifies one invocation of the tool
type RunContext struct {
	RunID     string
	Command   string
	StartTime time.Time
}

// WithRun attaches a fresh run id to ctx
func WithRun(ctx context.Context, command string) context.Context {
	return context.WithValue(ctx, runKey, &RunContext{
		RunID:     uuid.NewString(),
		Command:   command,
		StartTime: time.Now(),
	})
}

// FromContext returns the run attached to ctx, or a placeholder
func FromContext(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runKey).(*RunContext); ok {
		return rc
	}
	return &RunContext{
		RunID:     "unknown",
		StartTime: time.Now(),
	}
}

// Logger returns the global logger tagged with the run id and command
func Logger(ctx context.Context) zerolog.Logger {
	rc := FromContext(ctx)
	return log.With().
		Str("run_id", rc.RunID).
		Str("command", rc.Command).
		Logger()
}

// Elapsed is the time since the run started
func (rc *RunContext) Elapsed() time.Duration {
	return time.Since(rc.StartTime)
}

// RunError wraps an error with the run it happened in
type RunError struct {
	RunID string
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("[run %s] %v", e.RunID, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// NewRunError tags err with the run id from ctx
func NewRunError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	return &RunError{RunID: FromContext(ctx).RunID, Err: err}
}
