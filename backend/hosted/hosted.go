// Package hosted provides a backend over a namespace of the hosted runtime.
package hosted

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonwraymond/hostcall/backend"
	"github.com/jonwraymond/hostcall/lisp"
)

// Kind is the backend kind reported by hosted backends.
const Kind = "hosted"

// Backend implements backend.Backend over the public vars of one runtime
// namespace. The namespace is loaded by Start.
type Backend struct {
	rt   *lisp.Runtime
	name string

	mu sync.RWMutex
	ns *lisp.Namespace
}

// New creates an unstarted hosted backend for namespace name.
func New(rt *lisp.Runtime, name string) *Backend {
	return &Backend{rt: rt, name: name}
}

// Factory returns a backend.Factory creating hosted backends on rt.
func Factory(rt *lisp.Runtime) backend.Factory {
	return func(name string) (backend.Backend, error) {
		if rt == nil {
			return nil, fmt.Errorf("hosted backend %s: runtime is nil", name)
		}
		return New(rt, name), nil
	}
}

// Kind returns the backend kind.
func (b *Backend) Kind() string {
	return Kind
}

// Name returns the namespace name.
func (b *Backend) Name() string {
	return b.name
}

// Enabled reports whether the namespace has been loaded.
func (b *Backend) Enabled() bool {
	return b.namespace() != nil
}

// Namespace returns the loaded namespace, or nil before Start.
func (b *Backend) Namespace() *lisp.Namespace {
	return b.namespace()
}

func (b *Backend) namespace() *lisp.Namespace {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ns
}

// Start loads the namespace through the runtime. Starting a loaded
// backend is a no-op.
func (b *Backend) Start(ctx context.Context) error {
	if b.namespace() != nil {
		return nil
	}
	ns, err := b.rt.Require(ctx, b.name)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.ns = ns
	b.mu.Unlock()
	return nil
}

// Stop detaches the backend. The namespace stays loaded in the runtime.
func (b *Backend) Stop() error {
	b.mu.Lock()
	b.ns = nil
	b.mu.Unlock()
	return nil
}

// ListSymbols returns the public vars of the namespace, sorted by name.
func (b *Backend) ListSymbols(ctx context.Context) ([]backend.Symbol, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ns := b.namespace()
	if ns == nil {
		return nil, fmt.Errorf("%w: %s not started", backend.ErrBackendUnavailable, b.name)
	}
	vars := ns.Publics()
	out := make([]backend.Symbol, 0, len(vars))
	for _, v := range vars {
		out = append(out, backend.Symbol{
			Namespace: v.NS,
			Name:      v.Name,
			Doc:       v.Doc,
			Arglists:  append([]string(nil), v.Arglists...),
		})
	}
	return out, nil
}

// Execute applies the value of a public var to args.
func (b *Backend) Execute(ctx context.Context, symbol string, args []any) (any, error) {
	call, ok := b.Resolve(symbol)
	if !ok {
		if b.namespace() == nil {
			return nil, backend.ErrBackendDisabled
		}
		return nil, fmt.Errorf("%w: %s/%s", backend.ErrSymbolNotFound, b.name, symbol)
	}
	return call(ctx, args)
}

// Resolve returns a Callable bound to the var. The var is dereferenced on
// every call, so redefinitions are picked up.
func (b *Backend) Resolve(symbol string) (backend.Callable, bool) {
	ns := b.namespace()
	if ns == nil {
		return nil, false
	}
	v, ok := ns.Public(symbol)
	if !ok {
		return nil, false
	}
	return v.Invoke, true
}
