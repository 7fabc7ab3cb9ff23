package backend

import (
	"context"
	"errors"
)

// Common errors for backend operations.
var (
	ErrBackendNotFound    = errors.New("backend not found")
	ErrBackendDisabled    = errors.New("backend disabled")
	ErrSymbolNotFound     = errors.New("symbol not found in backend")
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// Symbol describes one public symbol of a namespace backend.
type Symbol struct {
	Namespace string
	Name      string
	Doc       string
	Arglists  []string
}

// ID returns the qualified "ns/name" form of the symbol.
func (s Symbol) ID() string {
	return FormatSymbolID(s.Namespace, s.Name)
}

// Callable is a resolved handle to one symbol.
type Callable func(ctx context.Context, args []any) (any, error)

// Backend is a source of callable symbols. Each backend serves exactly one
// namespace, and its Name is that namespace's name.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods must honor cancellation/deadlines.
// - Errors: use ErrBackendDisabled/ErrSymbolNotFound/ErrBackendUnavailable where applicable;
// errors raised by the called symbol itself are returned unchanged.
type Backend interface {
	// Kind returns the backend type ("hosted" or "native").
	Kind() string

	// Name returns the namespace served by this backend.
	Name() string

	// Enabled returns whether this backend currently serves calls.
	Enabled() bool

	// ListSymbols returns the public symbols of the namespace.
	ListSymbols(ctx context.Context) ([]Symbol, error)

	// Execute calls a symbol with positional arguments.
	Execute(ctx context.Context, symbol string, args []any) (any, error)

	// Start makes the namespace available, loading it if needed.
	Start(ctx context.Context) error

	// Stop releases the backend.
	Stop() error
}

// Resolver is implemented by backends that can hand out a Callable for a
// symbol ahead of the call.
//
// Contract:
// - Resolve must not block; a false result means the symbol is unknown.
type Resolver interface {
	Backend

	Resolve(symbol string) (Callable, bool)
}

// Factory creates backend instances for a namespace name.
type Factory func(name string) (Backend, error)
