package backend_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/hostcall/backend"
	"github.com/jonwraymond/hostcall/backend/hosted"
	"github.com/jonwraymond/hostcall/backend/native"
	"github.com/jonwraymond/hostcall/lib"
)

func ExampleRegistry() {
	// Create a registry
	reg := backend.NewRegistry()

	// Create and register a native backend
	greeter := native.New("demo")
	greeter.Register("greet", native.SymbolDef{
		Doc:      "Greets a user",
		Arglists: []string{"[name]"},
		Handler: func(_ context.Context, args []any) (any, error) {
			return fmt.Sprintf("Hello, %v!", args[0]), nil
		},
	})

	_ = reg.Register(greeter)

	// List registered backends
	backends := reg.List()
	fmt.Printf("Registered backends: %d\n", len(backends))

	// Get a specific backend
	b, ok := reg.Get("demo")
	fmt.Printf("Found 'demo': %v\n", ok)
	fmt.Printf("Backend kind: %s\n", b.Kind())
	// Output:
	// Registered backends: 1
	// Found 'demo': true
	// Backend kind: native
}

func ExampleAggregator() {
	ctx := context.Background()
	reg := backend.NewRegistry()
	reg.RegisterFactory(hosted.Kind, hosted.Factory(lib.NewRuntime()))

	// Load a hosted namespace through its factory
	strs, _ := reg.Create(hosted.Kind, "clojure.string")
	_ = strs.Start(ctx)
	_ = reg.Register(strs)

	math := native.New("math")
	math.Register("add", native.SymbolDef{
		Doc: "Adds two numbers",
		Handler: func(_ context.Context, args []any) (any, error) {
			return args[0].(int64) + args[1].(int64), nil
		},
	})
	_ = reg.Register(math)

	agg := backend.NewAggregator(reg)

	syms, _ := agg.ListAllSymbols(ctx)
	fmt.Printf("Has symbols: %v\n", len(syms) > 1)

	// Execute through aggregator (using ns/name format)
	result, _ := agg.Execute(ctx, "math/add", []any{int64(5), int64(3)})
	fmt.Printf("5 + 3 = %v\n", result)

	upper, _ := agg.Resolve("clojure.string/upper-case")
	result, _ = upper(ctx, []any{"hello"})
	fmt.Printf("upper: %v\n", result)
	// Output:
	// Has symbols: true
	// 5 + 3 = 8
	// upper: HELLO
}

func ExampleBackend_lifecycle() {
	b := hosted.New(lib.NewRuntime(), "clojure.contrib.str-utils")
	ctx := context.Background()

	fmt.Printf("Enabled before Start: %v\n", b.Enabled())

	// Start loads the namespace
	if err := b.Start(ctx); err != nil {
		fmt.Printf("Start failed: %v\n", err)
		return
	}
	fmt.Printf("Enabled: %v\n", b.Enabled())

	result, _ := b.Execute(ctx, "chomp", []any{"line\n"})
	fmt.Printf("Result: %q\n", result)

	_ = b.Stop()
	// Output:
	// Enabled before Start: false
	// Enabled: true
	// Result: "line"
}

// Verify interface compliance
var (
	_ backend.Resolver = (*native.Backend)(nil)
	_ backend.Resolver = (*hosted.Backend)(nil)
)
