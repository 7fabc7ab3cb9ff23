package code

import (
	"context"
	"fmt"

	"github.com/jonwraymond/hostcall/lisp"
)

// Engine is the pluggable code execution engine that evaluates snippets
// within a Session.
//
// The Engine should:
//   - Report named calls to the session and honor its veto
//   - Write printed output to the session
//   - Return the value of the last form
//   - Wrap evaluation errors in CodeError with line/column info when available
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return ctx.Err() when canceled.
// - Errors: execution failures should return CodeError where possible; callers use errors.Is.
// - Ownership: params are read-only; returned ExecuteResult is caller-owned.
type Engine interface {
	// Execute evaluates a code snippet within session.
	Execute(ctx context.Context, params ExecuteParams, session Session) (ExecuteResult, error)
}

// HostedEngine evaluates snippets with the hosted runtime.
type HostedEngine struct {
	rt *lisp.Runtime
}

// NewHostedEngine creates an engine evaluating against rt.
func NewHostedEngine(rt *lisp.Runtime) *HostedEngine {
	return &HostedEngine{rt: rt}
}

// Execute evaluates params.Code in params.Namespace, creating the namespace
// when nothing provides it.
func (h *HostedEngine) Execute(ctx context.Context, params ExecuteParams, session Session) (ExecuteResult, error) {
	ns, err := h.rt.Ensure(ctx, params.Namespace)
	if err != nil {
		return ExecuteResult{}, fmt.Errorf("namespace %s: %w", params.Namespace, err)
	}
	ctx = lisp.WithObserver(ctx, session)
	ctx = lisp.WithOutput(ctx, session)

	v, err := h.rt.EvalString(ctx, ns, params.Code)
	if err != nil {
		return ExecuteResult{}, codeError(err)
	}
	return ExecuteResult{Value: lisp.ToGo(v), Printed: lisp.PrStr(v)}, nil
}
