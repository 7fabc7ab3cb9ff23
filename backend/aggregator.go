package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/hostcall/lisp"
)

// ErrInvalidSymbolID is returned for malformed symbol IDs.
var ErrInvalidSymbolID = errors.New("invalid symbol ID format")

// Aggregator combines symbols from multiple backends.
type Aggregator struct {
	registry *Registry
}

// NewAggregator creates a new symbol aggregator.
func NewAggregator(registry *Registry) *Aggregator {
	return &Aggregator{registry: registry}
}

// ListAllSymbols returns symbols from all enabled backends, grouped by
// backend in name order.
func (a *Aggregator) ListAllSymbols(ctx context.Context) ([]Symbol, error) {
	all := make([]Symbol, 0)
	for _, b := range a.registry.ListEnabled() {
		syms, err := b.ListSymbols(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", b.Name(), err)
		}
		for i := range syms {
			if syms[i].Namespace == "" {
				syms[i].Namespace = b.Name()
			}
			all = append(all, syms[i])
		}
	}
	return all, nil
}

// Resolve returns a Callable for a qualified symbol ID. Backends that do
// not implement Resolver are called through Execute.
func (a *Aggregator) Resolve(symbolID string) (Callable, error) {
	b, name, err := a.lookup(symbolID)
	if err != nil {
		return nil, err
	}
	if r, ok := b.(Resolver); ok {
		call, ok := r.Resolve(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbolID)
		}
		return call, nil
	}
	return func(ctx context.Context, args []any) (any, error) {
		return b.Execute(ctx, name, args)
	}, nil
}

// Execute calls a symbol through the backend registry.
func (a *Aggregator) Execute(ctx context.Context, symbolID string, args []any) (any, error) {
	b, name, err := a.lookup(symbolID)
	if err != nil {
		return nil, err
	}
	return b.Execute(ctx, name, args)
}

func (a *Aggregator) lookup(symbolID string) (Backend, string, error) {
	ns, name, err := ParseSymbolID(symbolID)
	if err != nil {
		return nil, "", err
	}
	if ns == "" {
		return nil, "", ErrInvalidSymbolID
	}
	b, ok := a.registry.Get(ns)
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrBackendNotFound, ns)
	}
	if !b.Enabled() {
		return nil, "", fmt.Errorf("%w: %s", ErrBackendDisabled, ns)
	}
	return b, name, nil
}

// ParseSymbolID splits "ns/name" into namespace and name. An unqualified
// ID yields an empty namespace; "clojure.core//" names the "/" symbol.
func ParseSymbolID(id string) (ns, name string, err error) {
	if id == "" {
		return "", "", ErrInvalidSymbolID
	}
	ns, name, ok := lisp.SplitQualified(id)
	if !ok {
		return "", id, nil
	}
	return ns, name, nil
}

// FormatSymbolID builds a symbol ID from namespace and name.
func FormatSymbolID(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "/" + name
}
