package code

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Executor is the main entry point for executing code snippets.
// It orchestrates configuration, limits, and result collection.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines; deadline exceeded is wrapped with ErrLimitExceeded.
// - Errors: configuration failures return ErrConfiguration; execution failures propagate.
// - Ownership: params are read-only; returned ExecuteResult is caller-owned.
type Executor interface {
	// ExecuteCode runs a code snippet with the given parameters.
	// It applies configuration defaults, enforces limits, and collects
	// call traces and output.
	ExecuteCode(ctx context.Context, params ExecuteParams) (ExecuteResult, error)
}

// DefaultExecutor is the standard implementation of Executor.
type DefaultExecutor struct {
	cfg Config
}

// NewDefaultExecutor creates a new DefaultExecutor with the given configuration.
// Returns ErrConfiguration if any required field is missing.
func NewDefaultExecutor(cfg Config) (*DefaultExecutor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &DefaultExecutor{cfg: cfg}, nil
}

// ExecuteCode runs a code snippet with the given parameters. The result
// carries the calls and output collected before any failure.
func (e *DefaultExecutor) ExecuteCode(ctx context.Context, params ExecuteParams) (ExecuteResult, error) {
	params = e.resolve(params)
	sess := newSession(params.MaxCalls, e.cfg.Logger)

	if params.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, params.Timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := e.cfg.Engine.Execute(ctx, params, sess)
	elapsed := time.Since(start).Milliseconds()

	result.Calls = sess.Calls()
	result.Stdout = sess.Stdout()
	result.DurationMs = elapsed
	if e.cfg.Logger != nil {
		e.cfg.Logger.Logf("ran snippet in %s: %d calls, %dms", params.Namespace, len(result.Calls), elapsed)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return result, fmt.Errorf("%w: timeout after %v", ErrLimitExceeded, params.Timeout)
	}
	return result, err
}

// resolve fills params from the config. A per-call MaxCalls may lower the
// configured limit but never raise it.
func (e *DefaultExecutor) resolve(params ExecuteParams) ExecuteParams {
	if params.Namespace == "" {
		params.Namespace = e.cfg.DefaultNamespace
	}
	if params.Timeout == 0 {
		params.Timeout = e.cfg.DefaultTimeout
	}
	if limit := e.cfg.MaxCalls; limit > 0 && (params.MaxCalls == 0 || params.MaxCalls > limit) {
		params.MaxCalls = limit
	}
	return params
}
