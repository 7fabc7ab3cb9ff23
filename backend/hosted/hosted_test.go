package hosted

import (
	"context"
	"errors"
	"testing"

	"github.com/jonwraymond/hostcall/backend"
	"github.com/jonwraymond/hostcall/lib"
	"github.com/jonwraymond/hostcall/lisp"
)

func TestHostedBackend_Interface(t *testing.T) {
	t.Helper()
	var _ backend.Backend = (*Backend)(nil)
	var _ backend.Resolver = (*Backend)(nil)
}

func TestHostedBackend_Lifecycle(t *testing.T) {
	ctx := context.Background()
	b := New(lib.NewRuntime(), "clojure.contrib.str-utils")

	if b.Kind() != "hosted" {
		t.Errorf("Kind() = %q, want %q", b.Kind(), "hosted")
	}
	if b.Enabled() {
		t.Error("Enabled() = true before Start")
	}
	if _, err := b.ListSymbols(ctx); !errors.Is(err, backend.ErrBackendUnavailable) {
		t.Errorf("ListSymbols() before Start error = %v, want ErrBackendUnavailable", err)
	}
	if _, err := b.Execute(ctx, "chop", []any{"ab"}); !errors.Is(err, backend.ErrBackendDisabled) {
		t.Errorf("Execute() before Start error = %v, want ErrBackendDisabled", err)
	}

	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !b.Enabled() {
		t.Error("Enabled() = false after Start")
	}

	syms, err := b.ListSymbols(ctx)
	if err != nil {
		t.Fatalf("ListSymbols() error = %v", err)
	}
	found := false
	for _, s := range syms {
		if s.ID() == "clojure.contrib.str-utils/str-join" {
			found = s.Doc != "" && len(s.Arglists) == 1
		}
	}
	if !found {
		t.Errorf("str-join missing or undocumented in %v", syms)
	}

	got, err := b.Execute(ctx, "str-join", []any{":", lisp.Vector{int64(1), int64(2)}})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != "1:2" {
		t.Errorf("Execute(str-join) = %v, want %q", got, "1:2")
	}

	if _, err := b.Execute(ctx, "nope", nil); !errors.Is(err, backend.ErrSymbolNotFound) {
		t.Errorf("Execute(nope) error = %v, want ErrSymbolNotFound", err)
	}

	if err := b.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if b.Enabled() {
		t.Error("Enabled() = true after Stop")
	}
}

func TestHostedBackend_StartUnknown(t *testing.T) {
	b := New(lib.NewRuntime(), "no.such.ns")
	if err := b.Start(context.Background()); !errors.Is(err, lisp.ErrNamespaceNotFound) {
		t.Errorf("Start() error = %v, want ErrNamespaceNotFound", err)
	}
	if b.Enabled() {
		t.Error("Enabled() = true after failed Start")
	}
}

func TestHostedBackend_ResolveSeesRedefinition(t *testing.T) {
	ctx := context.Background()
	rt := lib.NewRuntime()
	user, err := rt.Ensure(ctx, "user")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if _, err := rt.EvalString(ctx, user, `(defn f [] 1)`); err != nil {
		t.Fatalf("EvalString() error = %v", err)
	}

	b := New(rt, "user")
	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	call, ok := b.Resolve("f")
	if !ok {
		t.Fatal("Resolve(f) = false")
	}
	if _, err := rt.EvalString(ctx, user, `(defn f [] 2)`); err != nil {
		t.Fatalf("EvalString() error = %v", err)
	}
	if got, _ := call(ctx, nil); got != int64(2) {
		t.Errorf("f() = %v, want 2", got)
	}
}

func TestFactory(t *testing.T) {
	reg := backend.NewRegistry()
	reg.RegisterFactory(Kind, Factory(lib.NewRuntime()))

	b, err := reg.Create(Kind, "clojure.string")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := reg.Register(b); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	agg := backend.NewAggregator(reg)
	got, err := agg.Execute(context.Background(), "clojure.string/upper-case", []any{"abc"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != "ABC" {
		t.Errorf("upper-case = %v, want ABC", got)
	}

	if _, err := Factory(nil)("x"); err == nil {
		t.Error("Factory(nil) should fail")
	}
}
