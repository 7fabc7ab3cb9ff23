package lisp

import (
	"context"
	"io"
	"os"
	"time"
)

// CallObserver is notified around every named function call made by
// evaluated code. BeforeCall may veto the call by returning an error.
type CallObserver interface {
	BeforeCall(ctx context.Context, name string, args []any) error
	AfterCall(ctx context.Context, name string, args []any, result any, err error, elapsed time.Duration)
}

type observerKey struct{}
type outputKey struct{}
type loadStackKey struct{}
type depthKey struct{}

// MaxCallDepth bounds nested function application. Deeper recursion fails
// with a StackOverflowError instead of exhausting the goroutine stack.
const MaxCallDepth = 10000

// enterCall returns ctx one call level deeper, or a StackOverflowError once
// MaxCallDepth is reached.
func enterCall(ctx context.Context, name string) (context.Context, error) {
	depth, _ := ctx.Value(depthKey{}).(int)
	if depth >= MaxCallDepth {
		return nil, Errorf(KindStackOverflow, "call depth %d exceeded in %s", MaxCallDepth, name)
	}
	return context.WithValue(ctx, depthKey{}, depth+1), nil
}

// WithObserver returns a context whose evaluations report calls to obs.
func WithObserver(ctx context.Context, obs CallObserver) context.Context {
	return context.WithValue(ctx, observerKey{}, obs)
}

func observerFrom(ctx context.Context) CallObserver {
	obs, _ := ctx.Value(observerKey{}).(CallObserver)
	return obs
}

// WithOutput returns a context whose print functions write to w.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

// Output returns the writer print functions use, os.Stdout by default.
func Output(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok {
		return w
	}
	return os.Stdout
}

func loadStack(ctx context.Context) []string {
	stack, _ := ctx.Value(loadStackKey{}).([]string)
	return stack
}

func withLoadStack(ctx context.Context, stack []string) context.Context {
	return context.WithValue(ctx, loadStackKey{}, stack)
}
