// Package native provides a backend of Go handler functions registered
// under a namespace name.
package native

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jonwraymond/hostcall/backend"
	"github.com/jonwraymond/hostcall/lisp"
)

// Kind is the backend kind reported by native backends.
const Kind = "native"

// HandlerFunc is the function signature for native symbol handlers.
// Arguments arrive as hosted values (see lisp.FromGo).
type HandlerFunc func(ctx context.Context, args []any) (any, error)

// SymbolDef defines a native symbol with its handler.
type SymbolDef struct {
	Name     string
	Doc      string
	Arglists []string
	Handler  HandlerFunc
}

// Backend implements backend.Backend for Go handlers.
type Backend struct {
	name     string
	enabled  bool
	handlers map[string]SymbolDef
	mu       sync.RWMutex
}

// New creates a new native backend serving namespace name.
func New(name string) *Backend {
	return &Backend{
		name:     name,
		enabled:  true,
		handlers: make(map[string]SymbolDef),
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

// Enabled returns whether the backend is enabled.
func (b *Backend) Enabled() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.enabled
}

// SetEnabled enables or disables the backend.
func (b *Backend) SetEnabled(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = enabled
}

// Register registers a symbol handler.
func (b *Backend) Register(name string, def SymbolDef) {
	if def.Name == "" {
		def.Name = name
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = def
}

// Unregister removes a symbol handler.
func (b *Backend) Unregister(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, name)
}

// ListSymbols returns the registered symbols sorted by name.
func (b *Backend) ListSymbols(_ context.Context) ([]backend.Symbol, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]backend.Symbol, 0, len(b.handlers))
	for name, def := range b.handlers {
		out = append(out, backend.Symbol{
			Namespace: b.name,
			Name:      name,
			Doc:       def.Doc,
			Arglists:  append([]string(nil), def.Arglists...),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Execute invokes a symbol handler.
func (b *Backend) Execute(ctx context.Context, symbol string, args []any) (any, error) {
	b.mu.RLock()
	enabled := b.enabled
	def, ok := b.handlers[symbol]
	b.mu.RUnlock()

	if !enabled {
		return nil, backend.ErrBackendDisabled
	}
	if !ok || def.Handler == nil {
		return nil, fmt.Errorf("%w: %s/%s", backend.ErrSymbolNotFound, b.name, symbol)
	}
	return def.Handler(ctx, args)
}

// Resolve returns a Callable bound to the handler registered now. The
// enabled flag is checked on every call.
func (b *Backend) Resolve(symbol string) (backend.Callable, bool) {
	b.mu.RLock()
	def, ok := b.handlers[symbol]
	b.mu.RUnlock()
	if !ok || def.Handler == nil {
		return nil, false
	}
	return func(ctx context.Context, args []any) (any, error) {
		if !b.Enabled() {
			return nil, backend.ErrBackendDisabled
		}
		return def.Handler(ctx, args)
	}, true
}

// Library exposes the handlers as a hosted library so source namespaces can
// require them. Handlers registered after the namespace is loaded are not
// visible to hosted code.
func (b *Backend) Library(doc string) lisp.Library {
	return lisp.Library{
		Name: b.name,
		Doc:  doc,
		Install: func(ns *lisp.Namespace) error {
			syms, err := b.ListSymbols(context.Background())
			if err != nil {
				return err
			}
			for _, s := range syms {
				name := s.Name
				fn := lisp.Func(func(ctx context.Context, args []any) (any, error) {
					return b.Execute(ctx, name, args)
				})
				ns.Define(name, fn, s.Doc, s.Arglists...)
			}
			return nil
		},
	}
}

// Start initializes the backend (no-op for native backend).
func (b *Backend) Start(_ context.Context) error {
	return nil
}

// Stop stops the backend (no-op for native backend).
func (b *Backend) Stop() error {
	return nil
}
