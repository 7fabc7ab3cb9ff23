package mcpserver

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/hostcall/code"
	"github.com/jonwraymond/hostcall/invoke"
)

func newInvoker(t *testing.T) *invoke.Invoker {
	t.Helper()
	inv, err := invoke.New(context.Background(), invoke.Options{
		Load: []string{"clojure.string"},
	})
	if err != nil {
		t.Fatalf("invoke.New() error = %v", err)
	}
	t.Cleanup(func() { _ = inv.Close() })
	return inv
}

// connect serves s over in-memory transports and returns a client session.
func connect(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	st, ct := mcp.NewInMemoryTransports()
	ss, err := s.MCP().Connect(ctx, st, nil)
	if err != nil {
		t.Fatalf("server Connect() error = %v", err)
	}
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	if err != nil {
		t.Fatalf("client Connect() error = %v", err)
	}
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("len(Content) = %d, want 1", len(res.Content))
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("Content[0] = %T, want *mcp.TextContent", res.Content[0])
	}
	return tc.Text
}

func TestToolName(t *testing.T) {
	tests := []struct {
		ns, name string
		want     string
	}{
		{"clojure.core", "inc", "clojure.core.inc"},
		{"clojure.core", "+", "clojure.core._PLUS_"},
		{"clojure.string", "blank?", "clojure.string.blank_QMARK_"},
		{"clojure.contrib.str-utils", "str-join", "clojure.contrib.str-utils.str_join"},
	}
	for _, tt := range tests {
		if got := ToolName(tt.ns, tt.name); got != tt.want {
			t.Errorf("ToolName(%q, %q) = %q, want %q", tt.ns, tt.name, got, tt.want)
		}
	}
}

func TestNew_NilInvoker(t *testing.T) {
	if _, err := New(context.Background(), nil, Options{}); err == nil {
		t.Error("New(nil) should fail")
	}
}

func TestServer_Tools(t *testing.T) {
	s, err := New(context.Background(), newInvoker(t), Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	tools := s.Tools()
	for _, want := range []string{"clojure.core.inc", "clojure.string.upper_case"} {
		if !slices.Contains(tools, want) {
			t.Errorf("Tools() missing %q", want)
		}
	}
	if slices.Contains(tools, EvalTool) {
		t.Error("eval tool served without an executor")
	}
	if !slices.IsSorted(tools) {
		t.Error("Tools() not sorted")
	}
}

func TestServer_CallTool(t *testing.T) {
	s, err := New(context.Background(), newInvoker(t), Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	cs := connect(t, s)
	ctx := context.Background()

	tests := []struct {
		tool string
		args []any
		want string
	}{
		{"clojure.core._PLUS_", []any{1, 2, 3}, "6"},
		{"clojure.core._PLUS_", []any{1, 0.5}, "1.5"},
		{"clojure.core.inc", []any{41}, "42"},
		{"clojure.string.upper_case", []any{"hi"}, `"HI"`},
		{"clojure.string.join", []any{"-", []any{1, 2}}, `"1-2"`},
		{"clojure.core.count", []any{map[string]any{"a": 1}}, "1"},
	}
	for _, tt := range tests {
		res, err := cs.CallTool(ctx, &mcp.CallToolParams{
			Name:      tt.tool,
			Arguments: map[string]any{"args": tt.args},
		})
		if err != nil {
			t.Errorf("CallTool(%s) error = %v", tt.tool, err)
			continue
		}
		if res.IsError {
			t.Errorf("CallTool(%s) IsError, text = %q", tt.tool, resultText(t, res))
			continue
		}
		if got := resultText(t, res); got != tt.want {
			t.Errorf("CallTool(%s) = %q, want %q", tt.tool, got, tt.want)
		}
	}
}

func TestServer_CallToolHostedError(t *testing.T) {
	s, err := New(context.Background(), newInvoker(t), Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	cs := connect(t, s)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "clojure.core._SLASH_",
		Arguments: map[string]any{"args": []any{1, 0}},
	})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	if !res.IsError {
		t.Fatal("IsError = false, want true")
	}
	if text := resultText(t, res); !strings.Contains(text, "Divide by zero") {
		t.Errorf("text = %q, want divide by zero", text)
	}
}

func TestServer_EvalTool(t *testing.T) {
	inv := newInvoker(t)
	exec, err := code.NewDefaultExecutor(code.Config{Runtime: inv.Runtime()})
	if err != nil {
		t.Fatalf("NewDefaultExecutor() error = %v", err)
	}
	s, err := New(context.Background(), inv, Options{Executor: exec})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	cs := connect(t, s)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      EvalTool,
		Arguments: map[string]any{"code": `(println "hi") (+ 1 2)`},
	})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("IsError, text = %q", resultText(t, res))
	}
	if got, want := resultText(t, res), "3\nhi\n"; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestDecodeArgs(t *testing.T) {
	tests := []struct {
		raw  string
		want []any
	}{
		{``, nil},
		{`{}`, []any{}},
		{`{"args": [1, 2.5, "x"]}`, []any{int64(1), 2.5, "x"}},
		{`{"args": [[9007199254740993]]}`, []any{[]any{int64(9007199254740993)}}},
		{`{"args": [{"k": 2}]}`, []any{map[string]any{"k": int64(2)}}},
	}
	for _, tt := range tests {
		got, err := decodeArgs(json.RawMessage(tt.raw))
		if err != nil {
			t.Errorf("decodeArgs(%s) error = %v", tt.raw, err)
			continue
		}
		gb, _ := json.Marshal(got)
		wb, _ := json.Marshal(tt.want)
		if string(gb) != string(wb) || len(got) != len(tt.want) {
			t.Errorf("decodeArgs(%s) = %v, want %v", tt.raw, got, tt.want)
		}
	}

	if _, err := decodeArgs(json.RawMessage(`{"args": 1}`)); err == nil {
		t.Error("decodeArgs(non-array) should fail")
	}
}
