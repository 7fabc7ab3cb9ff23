package code

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/hostcall/lisp"
)

func TestExecutor_Interface(t *testing.T) {
	t.Helper()
	var _ Executor = (*DefaultExecutor)(nil)
	var _ Engine = (*HostedEngine)(nil)
	var _ Session = (*session)(nil)
}

func TestNewDefaultExecutor_InvalidConfig(t *testing.T) {
	_, err := NewDefaultExecutor(Config{})
	if err == nil {
		t.Fatal("expected error for invalid config")
	}
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestExecuteCode_AppliesDefaults(t *testing.T) {
	engine := &mockEngine{executeResult: ExecuteResult{Printed: "ok"}}
	exec, err := NewDefaultExecutor(Config{
		Engine:           engine,
		DefaultNamespace: "scratch",
		DefaultTimeout:   time.Minute,
	})
	if err != nil {
		t.Fatalf("NewDefaultExecutor() error = %v", err)
	}

	if _, err := exec.ExecuteCode(context.Background(), ExecuteParams{Code: "1"}); err != nil {
		t.Fatalf("ExecuteCode() error = %v", err)
	}
	got := engine.lastParams()
	if got.Namespace != "scratch" {
		t.Errorf("Namespace = %q, want %q", got.Namespace, "scratch")
	}
	if got.Timeout != time.Minute {
		t.Errorf("Timeout = %v, want %v", got.Timeout, time.Minute)
	}

	if _, err := exec.ExecuteCode(context.Background(), ExecuteParams{Code: "1", Namespace: "other", Timeout: time.Second}); err != nil {
		t.Fatalf("ExecuteCode() error = %v", err)
	}
	got = engine.lastParams()
	if got.Namespace != "other" || got.Timeout != time.Second {
		t.Errorf("params = %+v, want explicit values kept", got)
	}
}

func TestExecuteCode_Timeout(t *testing.T) {
	engine := &mockEngine{
		executeFn: func(ctx context.Context, _ ExecuteParams, _ Session) (ExecuteResult, error) {
			<-ctx.Done()
			return ExecuteResult{}, ctx.Err()
		},
	}
	exec, _ := NewDefaultExecutor(Config{Engine: engine})

	_, err := exec.ExecuteCode(context.Background(), ExecuteParams{Code: "x", Timeout: 10 * time.Millisecond})
	if !errors.Is(err, ErrLimitExceeded) {
		t.Errorf("ExecuteCode() error = %v, want ErrLimitExceeded", err)
	}
}

func TestExecuteCode_Hosted(t *testing.T) {
	exec := newHostedExecutor(t, Config{})

	result, err := exec.ExecuteCode(context.Background(), ExecuteParams{
		Code: `(defn sq [x] (* x x)) (println "side" 1) {:n (sq 4) :xs [1 2]}`,
	})
	if err != nil {
		t.Fatalf("ExecuteCode() error = %v", err)
	}
	if result.Printed != "{:n 16, :xs [1 2]}" {
		t.Errorf("Printed = %q", result.Printed)
	}
	m, ok := result.Value.(map[string]any)
	if !ok || m["n"] != int64(16) {
		t.Errorf("Value = %#v, want map with n=16", result.Value)
	}
	if result.Stdout != "side 1\n" {
		t.Errorf("Stdout = %q, want %q", result.Stdout, "side 1\n")
	}
}

func TestExecuteCode_CallTrace(t *testing.T) {
	exec := newHostedExecutor(t, Config{})

	result, err := exec.ExecuteCode(context.Background(), ExecuteParams{
		Code:      `(defn add1 [x] (inc x)) (add1 (+ 1 2))`,
		Namespace: "trace",
	})
	if err != nil {
		t.Fatalf("ExecuteCode() error = %v", err)
	}
	if result.Printed != "4" {
		t.Errorf("Printed = %q, want 4", result.Printed)
	}

	want := []CallRecord{
		{Symbol: "clojure.core/+", Args: []string{"1", "2"}, Result: "3", Depth: 0},
		{Symbol: "trace/add1", Args: []string{"3"}, Result: "4", Depth: 0},
		{Symbol: "clojure.core/inc", Args: []string{"3"}, Result: "4", Depth: 1},
	}
	if len(result.Calls) != len(want) {
		t.Fatalf("Calls = %+v, want %d records", result.Calls, len(want))
	}
	for i, w := range want {
		got := result.Calls[i]
		if got.Symbol != w.Symbol || got.Result != w.Result || got.Depth != w.Depth || strings.Join(got.Args, " ") != strings.Join(w.Args, " ") {
			t.Errorf("Calls[%d] = %+v, want %+v", i, got, w)
		}
	}
}

func TestExecuteCode_MaxCalls(t *testing.T) {
	exec := newHostedExecutor(t, Config{MaxCalls: 10})

	tests := []struct {
		name     string
		maxCalls int
		wantErr  bool
	}{
		{"within param limit", 3, false},
		{"param limit hit", 2, true},
		{"config limit applies", 0, false},
		{"param capped by config", 50, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := exec.ExecuteCode(context.Background(), ExecuteParams{
				Code:     `(inc (inc (inc 0)))`,
				MaxCalls: tt.maxCalls,
			})
			if tt.wantErr {
				if !errors.Is(err, ErrLimitExceeded) {
					t.Fatalf("ExecuteCode() error = %v, want ErrLimitExceeded", err)
				}
				if len(result.Calls) != 2 {
					t.Errorf("Calls = %d, want 2 recorded before the limit", len(result.Calls))
				}
				return
			}
			if err != nil {
				t.Fatalf("ExecuteCode() error = %v", err)
			}
		})
	}

	capped := newHostedExecutor(t, Config{MaxCalls: 1})
	_, err := capped.ExecuteCode(context.Background(), ExecuteParams{Code: `(inc (inc 0))`, MaxCalls: 50})
	if !errors.Is(err, ErrLimitExceeded) {
		t.Errorf("config cap error = %v, want ErrLimitExceeded", err)
	}
}

func TestExecuteCode_Errors(t *testing.T) {
	exec := newHostedExecutor(t, Config{})

	_, err := exec.ExecuteCode(context.Background(), ExecuteParams{Code: "(+ 1\n  (inc 2)"})
	var ce *CodeError
	if !errors.As(err, &ce) {
		t.Fatalf("read error = %v, want *CodeError", err)
	}
	if ce.Line != 1 || ce.Column != 1 {
		t.Errorf("CodeError position = %d:%d, want 1:1", ce.Line, ce.Column)
	}

	_, err = exec.ExecuteCode(context.Background(), ExecuteParams{Code: "(/ 1 0)"})
	if !errors.Is(err, ErrCodeExecution) {
		t.Errorf("hosted error = %v, want ErrCodeExecution", err)
	}
	if !lisp.IsKind(err, lisp.KindArithmetic) {
		t.Errorf("hosted error = %v, want ArithmeticException", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := exec.ExecuteCode(ctx, ExecuteParams{Code: "(inc 1)"}); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled error = %v, want context.Canceled", err)
	}
}

func TestExecuteCode_Recursion(t *testing.T) {
	exec := newHostedExecutor(t, Config{DefaultTimeout: 30 * time.Second})

	result, err := exec.ExecuteCode(context.Background(), ExecuteParams{
		Code: "(defn down [n] (if (zero? n) :done (down (dec n)))) (down 2000)",
	})
	if err != nil {
		t.Fatalf("bounded recursion error = %v", err)
	}
	if result.Printed != ":done" {
		t.Errorf("Printed = %q, want :done", result.Printed)
	}

	_, err = exec.ExecuteCode(context.Background(), ExecuteParams{Code: "(defn f [x] (f x)) (f 1)"})
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("runaway recursion error = %v, want ErrLimitExceeded", err)
	}
	if !lisp.IsKind(err, lisp.KindStackOverflow) {
		t.Errorf("runaway recursion error = %v, want StackOverflowError", err)
	}

	result, err = exec.ExecuteCode(context.Background(), ExecuteParams{Code: "(inc 1)"})
	if err != nil || result.Printed != "2" {
		t.Errorf("after overflow = %q, %v; want 2", result.Printed, err)
	}
}

func TestExecuteCode_Logger(t *testing.T) {
	logger := &recordingLogger{}
	exec := newHostedExecutor(t, Config{Logger: logger})

	if _, err := exec.ExecuteCode(context.Background(), ExecuteParams{Code: "(inc 1)"}); err != nil {
		t.Fatalf("ExecuteCode() error = %v", err)
	}
	logger.mu.Lock()
	defer logger.mu.Unlock()
	if len(logger.msgs) != 2 {
		t.Errorf("logged %d messages, want 2 (call and summary)", len(logger.msgs))
	}
}

func TestHostedEngine_RequireNamespace(t *testing.T) {
	exec := newHostedExecutor(t, Config{})

	result, err := exec.ExecuteCode(context.Background(), ExecuteParams{
		Code:      `(rotations (reverse [1 2]))`,
		Namespace: "clojure.contrib.seq-utils",
	})
	if err != nil {
		t.Fatalf("ExecuteCode() error = %v", err)
	}
	if result.Printed != "((2 1) (1 2))" {
		t.Errorf("Printed = %q, want ((2 1) (1 2))", result.Printed)
	}
}
