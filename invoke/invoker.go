package invoke

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonwraymond/tooldiscovery/tooldoc"

	"github.com/jonwraymond/hostcall/backend"
	"github.com/jonwraymond/hostcall/backend/hosted"
	"github.com/jonwraymond/hostcall/catalog"
	"github.com/jonwraymond/hostcall/lisp"
)

// entry is one row of the symbol table.
type entry struct {
	id   string
	call backend.Callable
}

// Invoker calls hosted functions by name with dynamic argument lists.
//
// Contract:
//   - Concurrency: safe for concurrent use. Loads are serialized.
//   - Resolution: an alias wins, then the exact name, then the demunged
//     name. Qualified "ns/name" symbols are resolved against their
//     namespace directly.
//   - Precedence: a loaded name is never shadowed by a later load, so
//     primary namespace symbols win.
//   - Errors: hosted errors are returned unchanged.
type Invoker struct {
	rt       *lisp.Runtime
	registry *backend.Registry
	agg      *backend.Aggregator
	catalog  *catalog.Catalog
	logger   *log.Logger
	primary  string

	loadMu sync.Mutex

	mu      sync.RWMutex
	order   []string
	symbols map[string]entry
	aliases map[string]string
	closed  bool
}

// New creates an Invoker and loads its namespaces: the primary one, then
// Options.Backends, then Options.Load.
func New(ctx context.Context, opts Options) (*Invoker, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts.applyDefaults()

	registry := backend.NewRegistry()
	registry.RegisterFactory(hosted.Kind, hosted.Factory(opts.Runtime))

	inv := &Invoker{
		rt:       opts.Runtime,
		registry: registry,
		agg:      backend.NewAggregator(registry),
		catalog:  opts.Catalog,
		logger:   opts.Logger,
		primary:  opts.Namespace,
		symbols:  make(map[string]entry),
		aliases:  make(map[string]string, len(opts.Aliases)),
	}

	if err := inv.Load(ctx, opts.Namespace); err != nil {
		return nil, err
	}
	for _, b := range opts.Backends {
		if err := inv.Attach(ctx, b); err != nil {
			return nil, err
		}
	}
	for _, name := range opts.Load {
		if err := inv.Load(ctx, name); err != nil {
			return nil, err
		}
	}
	for alias, target := range opts.Aliases {
		inv.aliases[alias] = target
	}
	return inv, nil
}

// Load makes every public symbol of a hosted namespace visible. Loading a
// namespace twice is a no-op.
func (inv *Invoker) Load(ctx context.Context, name string) error {
	inv.loadMu.Lock()
	defer inv.loadMu.Unlock()

	if _, ok := inv.registry.Get(name); ok {
		return nil
	}
	b, err := inv.registry.Create(hosted.Kind, name)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNamespaceLoad, name, err)
	}
	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNamespaceLoad, name, err)
	}
	return inv.attach(ctx, b)
}

// Attach starts b and adds its symbols, such as a native backend's Go
// handlers, to the invoker.
func (inv *Invoker) Attach(ctx context.Context, b backend.Backend) error {
	inv.loadMu.Lock()
	defer inv.loadMu.Unlock()

	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNamespaceLoad, b.Name(), err)
	}
	return inv.attach(ctx, b)
}

func (inv *Invoker) attach(ctx context.Context, b backend.Backend) error {
	if err := inv.registry.Register(b); err != nil {
		return fmt.Errorf("%w: %w", ErrNamespaceLoad, err)
	}
	syms, err := b.ListSymbols(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNamespaceLoad, b.Name(), err)
	}

	inv.mu.Lock()
	inv.order = append(inv.order, b.Name())
	added := inv.merge(inv.symbols, syms)
	inv.mu.Unlock()

	inv.index(syms)
	inv.logger.Debug("loaded namespace", "ns", b.Name(), "kind", b.Kind(), "symbols", len(syms), "visible", added)
	return nil
}

// merge adds syms to table without shadowing existing names and returns
// how many were added.
func (inv *Invoker) merge(table map[string]entry, syms []backend.Symbol) int {
	added := 0
	for _, s := range syms {
		if _, exists := table[s.Name]; exists {
			continue
		}
		call, err := inv.agg.Resolve(s.ID())
		if err != nil {
			inv.logger.Debug("skipped symbol", "symbol", s.ID(), "err", err)
			continue
		}
		table[s.Name] = entry{id: s.ID(), call: call}
		added++
	}
	return added
}

func (inv *Invoker) index(syms []backend.Symbol) {
	if inv.catalog == nil {
		return
	}
	inv.catalog.Register(syms)
}

// Refresh rebuilds the symbol table from the loaded namespaces, picking up
// vars defined since they were loaded.
func (inv *Invoker) Refresh(ctx context.Context) error {
	inv.loadMu.Lock()
	defer inv.loadMu.Unlock()

	table := make(map[string]entry)
	for _, name := range inv.Namespaces() {
		b, ok := inv.registry.Get(name)
		if !ok {
			continue
		}
		syms, err := b.ListSymbols(ctx)
		if err != nil {
			return fmt.Errorf("refresh %s: %w", name, err)
		}
		inv.merge(table, syms)
		inv.index(syms)
	}

	inv.mu.Lock()
	inv.symbols = table
	inv.mu.Unlock()
	inv.logger.Debug("refreshed symbols", "symbols", len(table))
	return nil
}

// Alias registers alias for target, replacing any previous target. The
// target is resolved when the alias is called.
func (inv *Invoker) Alias(alias, target string) error {
	if !lisp.IsIdentifier(alias) {
		return fmt.Errorf("%w: alias %q", ErrInvalidIdentifier, alias)
	}
	if target == "" {
		return fmt.Errorf("alias %q: target is required", alias)
	}
	inv.mu.Lock()
	inv.aliases[alias] = target
	inv.mu.Unlock()
	inv.logger.Debug("registered alias", "alias", alias, "target", target)
	return nil
}

// Call invokes the symbol named by identifier name. Names that are not
// hosted symbols are demunged, so "str_join" calls "str-join".
func (inv *Invoker) Call(ctx context.Context, name string, args ...any) (any, error) {
	if !lisp.IsIdentifier(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return inv.Invoke(ctx, name, args...)
}

// Invoke calls the symbol named by any string, including qualified names
// such as "clojure.core//". Arguments are converted with lisp.FromGo and the
// hosted result is returned unchanged.
func (inv *Invoker) Invoke(ctx context.Context, symbol string, args ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, err := inv.resolve(symbol)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	result, err := e.call(ctx, lisp.FromGoArgs(args))
	inv.logger.Debug("call", "symbol", symbol, "resolved", e.id, "args", len(args), "duration", time.Since(start), "err", err)
	return result, err
}

func (inv *Invoker) resolve(name string) (entry, error) {
	inv.mu.RLock()
	target, aliased := inv.aliases[name]
	closed := inv.closed
	inv.mu.RUnlock()
	if closed {
		return entry{}, fmt.Errorf("%w: %s: invoker closed", ErrSymbolNotFound, name)
	}
	if aliased {
		e, err := inv.lookup(target, false)
		if err != nil {
			return entry{}, fmt.Errorf("alias %s: %w", name, err)
		}
		return e, nil
	}
	return inv.lookup(name, true)
}

// lookup finds name in the symbol table, or in its namespace when
// qualified. With demunge set, the demunged name is tried second.
func (inv *Invoker) lookup(name string, demunge bool) (entry, error) {
	candidates := []string{name}
	if demunge {
		if d := demungeName(name); d != name {
			candidates = append(candidates, d)
		}
	}

	if _, _, ok := lisp.SplitQualified(name); ok {
		for _, id := range candidates {
			call, err := inv.agg.Resolve(id)
			if err == nil {
				return entry{id: id, call: call}, nil
			}
		}
		return entry{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, name)
	}

	inv.mu.RLock()
	defer inv.mu.RUnlock()
	for _, n := range candidates {
		if e, ok := inv.symbols[n]; ok {
			return e, nil
		}
	}
	return entry{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, name)
}

// demungeName demunges the name part of a possibly qualified symbol.
func demungeName(name string) string {
	if ns, n, ok := lisp.SplitQualified(name); ok {
		return backend.FormatSymbolID(ns, lisp.Demunge(n))
	}
	return lisp.Demunge(name)
}

// Resolve returns the qualified symbol ID a name currently resolves to.
func (inv *Invoker) Resolve(name string) (string, error) {
	e, err := inv.resolve(name)
	if err != nil {
		return "", err
	}
	return e.id, nil
}

// Namespace returns the primary namespace name.
func (inv *Invoker) Namespace() string {
	return inv.primary
}

// Namespaces returns the loaded namespaces in load order.
func (inv *Invoker) Namespaces() []string {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return slices.Clone(inv.order)
}

// Symbols returns the visible unqualified names, sorted.
func (inv *Invoker) Symbols() []string {
	inv.mu.RLock()
	out := make([]string, 0, len(inv.symbols))
	for name := range inv.symbols {
		out = append(out, name)
	}
	inv.mu.RUnlock()
	sort.Strings(out)
	return out
}

// ListSymbols returns the symbols of every loaded namespace.
func (inv *Invoker) ListSymbols(ctx context.Context) ([]backend.Symbol, error) {
	return inv.agg.ListAllSymbols(ctx)
}

// Aliases returns a copy of the alias table.
func (inv *Invoker) Aliases() map[string]string {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return maps.Clone(inv.aliases)
}

// Runtime returns the hosted runtime.
func (inv *Invoker) Runtime() *lisp.Runtime {
	return inv.rt
}

// Catalog returns the catalog, or nil when disabled.
func (inv *Invoker) Catalog() *catalog.Catalog {
	return inv.catalog
}

// Search finds loaded symbols matching query.
func (inv *Invoker) Search(query string, limit int) ([]catalog.Hit, error) {
	if inv.catalog == nil {
		return nil, ErrCatalogDisabled
	}
	return inv.catalog.Search(query, limit)
}

// Describe returns the documentation of the symbol name resolves to.
func (inv *Invoker) Describe(name string, level tooldoc.DetailLevel) (tooldoc.ToolDoc, error) {
	if inv.catalog == nil {
		return tooldoc.ToolDoc{}, ErrCatalogDisabled
	}
	id, err := inv.Resolve(name)
	if err != nil {
		return tooldoc.ToolDoc{}, err
	}
	ns, sym, err := backend.ParseSymbolID(id)
	if err != nil {
		return tooldoc.ToolDoc{}, err
	}
	return inv.catalog.Describe(ns, sym, level)
}

// Close stops every backend and empties the symbol and alias tables. Calls
// made after Close fail with ErrSymbolNotFound.
func (inv *Invoker) Close() error {
	inv.mu.Lock()
	inv.closed = true
	inv.symbols = make(map[string]entry)
	inv.aliases = make(map[string]string)
	inv.mu.Unlock()
	return inv.registry.StopAll()
}

// IsNotFound reports whether err means a symbol or namespace was missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSymbolNotFound) || errors.Is(err, lisp.ErrNamespaceNotFound)
}
