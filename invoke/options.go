package invoke

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/jonwraymond/hostcall/backend"
	"github.com/jonwraymond/hostcall/catalog"
	"github.com/jonwraymond/hostcall/lib"
	"github.com/jonwraymond/hostcall/lisp"
)

// DefaultNamespace is loaded when Options.Namespace is empty.
const DefaultNamespace = lisp.CoreNamespace

// Options configures an Invoker.
type Options struct {
	// Namespace is the primary namespace. Its symbols take precedence over
	// every later load.
	// Default: "clojure.core"
	Namespace string

	// Runtime hosts the namespaces.
	// Default: lib.NewRuntime with SourcePaths and Logger applied.
	Runtime *lisp.Runtime

	// SourcePaths are directories searched for namespace source files.
	// Ignored when Runtime is set.
	SourcePaths []string

	// Load lists namespaces loaded after the primary one, in order.
	Load []string

	// Aliases maps identifiers to target symbol names.
	Aliases map[string]string

	// Backends are extra namespace backends, such as native handlers,
	// attached after the primary namespace.
	Backends []backend.Backend

	// Catalog indexes every loaded symbol for Search and Describe.
	// Optional; if nil, Search and Describe return ErrCatalogDisabled.
	Catalog *catalog.Catalog

	// Logger receives debug logs of loads, aliases and calls.
	// Default: a logger that discards output.
	Logger *log.Logger
}

// validate checks aliases and backends.
func (o *Options) validate() error {
	for alias, target := range o.Aliases {
		if !lisp.IsIdentifier(alias) {
			return fmt.Errorf("%w: alias %q", ErrInvalidIdentifier, alias)
		}
		if target == "" {
			return fmt.Errorf("alias %q: target is required", alias)
		}
	}
	for i, b := range o.Backends {
		if b == nil {
			return fmt.Errorf("backend %d is nil", i)
		}
	}
	return nil
}

// applyDefaults sets default values for unset optional fields.
func (o *Options) applyDefaults() {
	if o.Namespace == "" {
		o.Namespace = DefaultNamespace
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.Runtime == nil {
		o.Runtime = lib.NewRuntime(
			lisp.WithSourcePaths(o.SourcePaths...),
			lisp.WithLogger(o.Logger),
		)
	}
}
