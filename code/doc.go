// Package code evaluates snippets of hosted source with execution limits
// and a trace of every named function call.
//
// # Architecture
//
// The package defines three main types:
//
//   - [Session]: the per-execution environment handed to an engine. It
//     observes hosted calls and captures printed output.
//
//   - [Engine]: the pluggable evaluator. [HostedEngine] evaluates source
//     against a [lisp.Runtime] namespace.
//
//   - [Executor]: the main entry point that applies defaults, enforces
//     limits and collects results.
//
// # Execution Limits
//
// The executor enforces two types of limits:
//
//   - Timeout: Applied via context deadline, returns [ErrLimitExceeded]
//   - MaxCalls: Counts named function calls, returns [ErrLimitExceeded] when exceeded
//
// # Call Tracing
//
// Every named call made by the snippet is recorded in a [CallRecord] with
// the qualified symbol, printed arguments and result, any error and the
// elapsed time.
//
// # Result Convention
//
// The value of the last form is the result. [ExecuteResult].Value holds it
// converted with lisp.ToGo and Printed holds its readable form.
package code
