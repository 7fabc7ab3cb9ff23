// Package backend provides namespace backend abstractions and registry.
//
// This package defines the core Backend interface and the infrastructure
// the invoker uses to reach symbols:
//
//   - Backend interface for namespace sources (hosted, native)
//   - Registry for managing backends and their factories
//   - Aggregator for resolving qualified "ns/name" symbol IDs
//
// # Backend Types
//
// Backends can be:
//
//   - Hosted: a namespace loaded into the embedded runtime
//   - Native: Go handlers registered directly under a namespace name
//
// # Registry
//
// The Registry keys backends by namespace name:
//
//	registry := backend.NewRegistry()
//	registry.RegisterFactory(hosted.Kind, hosted.Factory(rt))
//	b, _ := registry.Create(hosted.Kind, "clojure.string")
//	_ = b.Start(ctx)
//	_ = registry.Register(b)
//
// # Aggregator
//
// The Aggregator lists and resolves symbols across backends:
//
//	agg := backend.NewAggregator(registry)
//	syms, _ := agg.ListAllSymbols(ctx)
//	call, _ := agg.Resolve("clojure.core/inc")
//	result, _ := call(ctx, []any{int64(2)})
package backend
