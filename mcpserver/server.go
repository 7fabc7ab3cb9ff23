package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/hostcall/backend"
	"github.com/jonwraymond/hostcall/catalog"
	"github.com/jonwraymond/hostcall/code"
	"github.com/jonwraymond/hostcall/invoke"
	"github.com/jonwraymond/hostcall/lisp"
)

// EvalTool is the name of the snippet evaluation tool.
const EvalTool = "eval"

// Options configures a Server.
type Options struct {
	// Name is the implementation name reported to clients.
	// Default: "hostcall"
	Name string

	// Version is the implementation version reported to clients.
	// Default: "dev"
	Version string

	// Executor enables the eval tool.
	// Optional; if nil, only symbol tools are served.
	Executor code.Executor

	// Logger receives debug logs of tool calls.
	Logger *log.Logger
}

// Server serves invoker symbols over MCP.
type Server struct {
	inv    *invoke.Invoker
	server *mcp.Server
	logger *log.Logger
	tools  map[string]string // tool name -> symbol ID
}

// New builds a server with one tool per symbol currently loaded in inv.
func New(ctx context.Context, inv *invoke.Invoker, opts Options) (*Server, error) {
	if inv == nil {
		return nil, errors.New("mcpserver: invoker is required")
	}
	if opts.Name == "" {
		opts.Name = "hostcall"
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	s := &Server{
		inv:    inv,
		server: mcp.NewServer(&mcp.Implementation{Name: opts.Name, Version: opts.Version}, nil),
		logger: opts.Logger,
		tools:  make(map[string]string),
	}

	syms, err := inv.ListSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("mcpserver: list symbols: %w", err)
	}
	for _, sym := range syms {
		s.addSymbol(sym)
	}
	if opts.Executor != nil {
		s.addEval(opts.Executor)
	}
	return s, nil
}

// ToolName returns the MCP tool name of a symbol.
func ToolName(ns, name string) string {
	return ns + "." + lisp.Munge(name)
}

func (s *Server) addSymbol(sym backend.Symbol) {
	name := ToolName(sym.Namespace, sym.Name)
	if _, exists := s.tools[name]; exists {
		return
	}
	s.tools[name] = sym.ID()

	desc := sym.ID()
	if sym.Doc != "" {
		desc += "\n\n" + sym.Doc
	}
	if len(sym.Arglists) > 0 {
		desc += "\n\nArglists: " + fmt.Sprint(sym.Arglists)
	}

	id := sym.ID()
	s.server.AddTool(&mcp.Tool{
		Name:        name,
		Title:       id,
		Description: desc,
		InputSchema: catalog.InputSchema(),
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := decodeArgs(req.Params.Arguments)
		if err != nil {
			return errorResult(err), nil
		}
		v, err := s.inv.Invoke(ctx, id, args...)
		s.logger.Debug("tool call", "tool", name, "symbol", id, "args", len(args), "err", err)
		if err != nil {
			return errorResult(err), nil
		}
		return textResult(lisp.PrStr(v)), nil
	})
}

func (s *Server) addEval(exec code.Executor) {
	s.server.AddTool(&mcp.Tool{
		Name:        EvalTool,
		Title:       "Evaluate hosted source",
		Description: "Evaluates hosted source and returns the printed value of the last form, followed by any printed output.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"code":      map[string]any{"type": "string"},
				"namespace": map[string]any{"type": "string"},
			},
			"required": []any{"code"},
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in struct {
			Code      string `json:"code"`
			Namespace string `json:"namespace"`
		}
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &in); err != nil {
				return errorResult(fmt.Errorf("decode arguments: %w", err)), nil
			}
		}
		result, err := exec.ExecuteCode(ctx, code.ExecuteParams{Code: in.Code, Namespace: in.Namespace})
		s.logger.Debug("eval", "calls", len(result.Calls), "err", err)
		if err != nil {
			return errorResult(err), nil
		}
		text := result.Printed
		if result.Stdout != "" {
			text += "\n" + result.Stdout
		}
		return textResult(text), nil
	})
}

// Tools returns the served tool names, sorted.
func (s *Server) Tools() []string {
	out := make([]string, 0, len(s.tools))
	for name := range s.tools {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// Run serves over t until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context, t mcp.Transport) error {
	s.logger.Debug("serving", "tools", len(s.tools))
	return s.server.Run(ctx, t)
}

// decodeArgs reads {"args": [...]} keeping integers exact.
func decodeArgs(raw json.RawMessage) ([]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var in struct {
		Args []any `json:"args"`
	}
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("decode arguments: %w", err)
	}
	out := make([]any, len(in.Args))
	for i, a := range in.Args {
		out[i] = fromJSON(a)
	}
	return out, nil
}

// fromJSON replaces json.Number with int64 or float64 throughout v.
func fromJSON(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = fromJSON(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = fromJSON(item)
		}
		return out
	}
	return v
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		IsError: true,
	}
}
