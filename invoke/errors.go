package invoke

import "errors"

// Errors returned by the invoker. Errors raised by hosted code are returned
// unchanged and can be inspected with lisp.IsKind.
var (
	// ErrSymbolNotFound is returned when no alias, loaded symbol or
	// qualified symbol matches the requested name.
	ErrSymbolNotFound = errors.New("invoke: symbol not found")

	// ErrNamespaceLoad is returned when a namespace cannot be loaded.
	ErrNamespaceLoad = errors.New("invoke: namespace load failed")

	// ErrInvalidIdentifier is returned when a Call name or alias is not a
	// legal identifier.
	ErrInvalidIdentifier = errors.New("invoke: invalid identifier")

	// ErrCatalogDisabled is returned by Search and Describe when the
	// invoker has no catalog.
	ErrCatalogDisabled = errors.New("invoke: catalog disabled")
)
