package native

import (
	"context"
	"errors"
	"testing"

	"github.com/jonwraymond/hostcall/backend"
	"github.com/jonwraymond/hostcall/lib"
	"github.com/jonwraymond/hostcall/lisp"
)

func echoBackend() *Backend {
	b := New("demo")
	b.Register("echo", SymbolDef{
		Doc:      "Returns its first argument.",
		Arglists: []string{"[x]"},
		Handler: func(_ context.Context, args []any) (any, error) {
			if len(args) != 1 {
				return nil, lisp.ArityError("demo/echo", len(args))
			}
			return args[0], nil
		},
	})
	return b
}

func TestNativeBackend_Interface(t *testing.T) {
	t.Helper()
	var _ backend.Backend = (*Backend)(nil)
	var _ backend.Resolver = (*Backend)(nil)
}

func TestNativeBackend_KindAndName(t *testing.T) {
	b := New("my-native")
	if b.Kind() != "native" {
		t.Errorf("Kind() = %q, want %q", b.Kind(), "native")
	}
	if b.Name() != "my-native" {
		t.Errorf("Name() = %q, want %q", b.Name(), "my-native")
	}
}

func TestNativeBackend_Register(t *testing.T) {
	b := echoBackend()
	b.Register("zeta", SymbolDef{Handler: func(context.Context, []any) (any, error) { return nil, nil }})

	syms, err := b.ListSymbols(context.Background())
	if err != nil {
		t.Fatalf("ListSymbols() error = %v", err)
	}
	if len(syms) != 2 {
		t.Fatalf("ListSymbols() returned %d symbols, want 2", len(syms))
	}
	if syms[0].ID() != "demo/echo" || syms[0].Arglists[0] != "[x]" {
		t.Errorf("ListSymbols()[0] = %+v", syms[0])
	}

	b.Unregister("zeta")
	if syms, _ := b.ListSymbols(context.Background()); len(syms) != 1 {
		t.Errorf("ListSymbols() after Unregister = %d symbols, want 1", len(syms))
	}
}

func TestNativeBackend_Execute(t *testing.T) {
	b := echoBackend()

	result, err := b.Execute(context.Background(), "echo", []any{"hello"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result != "hello" {
		t.Errorf("Execute() = %v, want %v", result, "hello")
	}

	if _, err := b.Execute(context.Background(), "nonexistent", nil); !errors.Is(err, backend.ErrSymbolNotFound) {
		t.Errorf("Execute(nonexistent) error = %v, want ErrSymbolNotFound", err)
	}
	if _, err := b.Execute(context.Background(), "echo", nil); !lisp.IsKind(err, lisp.KindArity) {
		t.Errorf("Execute(echo) error = %v, want ArityException", err)
	}
}

func TestNativeBackend_Resolve(t *testing.T) {
	b := echoBackend()

	call, ok := b.Resolve("echo")
	if !ok {
		t.Fatal("Resolve(echo) = false")
	}
	if got, err := call(context.Background(), []any{int64(1)}); err != nil || got != int64(1) {
		t.Errorf("call = %v, %v", got, err)
	}

	b.SetEnabled(false)
	if _, err := call(context.Background(), []any{int64(1)}); !errors.Is(err, backend.ErrBackendDisabled) {
		t.Errorf("call on disabled backend error = %v, want ErrBackendDisabled", err)
	}
	if _, ok := b.Resolve("missing"); ok {
		t.Error("Resolve(missing) = true")
	}
}

func TestNativeBackend_Library(t *testing.T) {
	b := echoBackend()
	rt := lib.NewRuntime(lisp.WithLibraries(b.Library("Demo handlers.")))
	ctx := context.Background()

	user, err := rt.Ensure(ctx, "user")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	got, err := rt.EvalString(ctx, user, `(ns t (:require [demo :as d])) (d/echo [1 2])`)
	if err != nil {
		t.Fatalf("EvalString() error = %v", err)
	}
	if lisp.PrStr(got) != "[1 2]" {
		t.Errorf("(d/echo [1 2]) = %s, want [1 2]", lisp.PrStr(got))
	}

	ns, _ := rt.Namespace("demo")
	if v, ok := ns.Public("echo"); !ok || v.Doc != "Returns its first argument." {
		t.Errorf("demo/echo var = %v, %v", v, ok)
	}
}
