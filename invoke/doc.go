// Package invoke calls functions of the hosted runtime by symbolic name.
//
// An [Invoker] owns a primary namespace (clojure.core by default) and any
// number of additionally loaded namespaces. Every public symbol of a loaded
// namespace lands in an eager symbol table; earlier loads win on name
// clashes, so the primary namespace always takes precedence.
//
// # Basic Usage
//
//	inv, err := invoke.New(ctx, invoke.Options{})
//	sum, err := inv.Invoke(ctx, "+", 3, 2)    // int64(5)
//	half, err := inv.Invoke(ctx, "/", 3, 2)   // 1.5
//	three, err := inv.Call(ctx, "inc", 2)     // int64(3)
//
// # Identifiers
//
// [Invoker.Call] takes identifier names and falls back to the demunged
// hosted name, so "str_join" reaches "str-join" and "list_STAR_" reaches
// "list*". Names no identifier can express get an alias:
//
//	_ = inv.Alias("list_star", "list*")
//	v, err := inv.Call(ctx, "list_star", 1, []int{2, 3})
//
// [Invoker.Invoke] accepts any symbol, including qualified ones such as
// "clojure.string/upper-case" or "clojure.core//".
//
// # Namespaces
//
//	err := inv.Load(ctx, "clojure.contrib.str-utils")
//	s, err := inv.Call(ctx, "str_join", ":", []int{1, 2, 3}) // "1:2:3"
//
// Go handlers join through a native backend passed in [Options.Backends]
// or [Invoker.Attach].
//
// # Integration
//
// The invoke package integrates with:
//
//   - [github.com/jonwraymond/hostcall/backend] for namespace backends
//   - [github.com/jonwraymond/hostcall/catalog] for symbol search and docs
//   - [github.com/jonwraymond/hostcall/lib] for the standard namespaces
package invoke
