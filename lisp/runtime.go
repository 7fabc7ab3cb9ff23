package lisp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// CoreNamespace is the namespace every source namespace refers.
const CoreNamespace = "clojure.core"

// Library is a namespace implemented in Go.
type Library struct {
	Name    string
	Doc     string
	Install func(ns *Namespace) error
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLibraries registers native libraries.
func WithLibraries(libs ...Library) Option {
	return func(rt *Runtime) {
		for _, lib := range libs {
			rt.libraries[lib.Name] = lib
		}
	}
}

// WithSourceFS adds filesystems searched for namespace source files.
func WithSourceFS(fsys ...fs.FS) Option {
	return func(rt *Runtime) {
		rt.sourceFS = append(rt.sourceFS, fsys...)
	}
}

// WithSourcePaths adds directories searched for namespace source files,
// after every source filesystem.
func WithSourcePaths(paths ...string) Option {
	return func(rt *Runtime) {
		rt.paths = append(rt.paths, paths...)
	}
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.logger = l
		}
	}
}

// Runtime owns the loaded namespaces of one hosted environment.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Loading: a namespace is registered only after it loads completely;
//     failed loads leave no trace and may be retried.
type Runtime struct {
	mu         sync.RWMutex
	namespaces map[string]*Namespace
	libraries  map[string]Library
	sourceFS   []fs.FS
	paths      []string
	logger     *log.Logger
}

// NewRuntime returns a runtime with no namespaces loaded.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		namespaces: make(map[string]*Namespace),
		libraries:  make(map[string]Library),
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Namespace returns a loaded namespace.
func (rt *Runtime) Namespace(name string) (*Namespace, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	ns, ok := rt.namespaces[name]
	return ns, ok
}

// Namespaces returns the names of loaded namespaces, sorted.
func (rt *Runtime) Namespaces() []string {
	rt.mu.RLock()
	out := make([]string, 0, len(rt.namespaces))
	for name := range rt.namespaces {
		out = append(out, name)
	}
	rt.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Available returns the names of native libraries, loaded or not, sorted.
func (rt *Runtime) Available() []string {
	rt.mu.RLock()
	out := make([]string, 0, len(rt.libraries))
	for name := range rt.libraries {
		out = append(out, name)
	}
	rt.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (rt *Runtime) register(ns *Namespace) *Namespace {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if existing, ok := rt.namespaces[ns.Name]; ok {
		return existing
	}
	rt.namespaces[ns.Name] = ns
	return ns
}

// Require returns the named namespace, loading it first when needed.
// Native libraries are tried first, then source filesystems, then source
// paths.
func (rt *Runtime) Require(ctx context.Context, name string) (*Namespace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ns, ok := rt.Namespace(name); ok {
		return ns, nil
	}

	stack := loadStack(ctx)
	if slices.Contains(stack, name) {
		return nil, fmt.Errorf("%w: %s", ErrCyclicLoad, strings.Join(append(slices.Clone(stack), name), " -> "))
	}
	ctx = withLoadStack(ctx, append(slices.Clone(stack), name))

	rt.mu.RLock()
	lib, ok := rt.libraries[name]
	rt.mu.RUnlock()
	if ok {
		ns := NewNamespace(name)
		ns.Doc = lib.Doc
		if err := lib.Install(ns); err != nil {
			return nil, fmt.Errorf("install %s: %w", name, err)
		}
		rt.logger.Debug("loaded native namespace", "ns", name, "publics", len(ns.Publics()))
		return rt.register(ns), nil
	}

	src, origin, err := rt.findSource(name)
	if err != nil {
		return nil, err
	}
	ns, err := rt.loadSource(ctx, name, src)
	if err != nil {
		return nil, fmt.Errorf("load %s from %s: %w", name, origin, err)
	}
	rt.logger.Debug("loaded source namespace", "ns", name, "origin", origin, "publics", len(ns.Publics()))
	return rt.register(ns), nil
}

// Ensure returns the named namespace, creating an empty one that refers
// the core namespace when nothing provides it.
func (rt *Runtime) Ensure(ctx context.Context, name string) (*Namespace, error) {
	ns, err := rt.Require(ctx, name)
	if err == nil {
		return ns, nil
	}
	if !errors.Is(err, ErrNamespaceNotFound) {
		return nil, err
	}
	ns = NewNamespace(name)
	if err := rt.referCore(ctx, ns); err != nil {
		return nil, err
	}
	return rt.register(ns), nil
}

// SourcePath returns the relative file path holding a namespace's source:
// "a.b-c" lives in "a/b_c.clj".
func SourcePath(name string) string {
	return strings.ReplaceAll(strings.ReplaceAll(name, "-", "_"), ".", "/") + ".clj"
}

func (rt *Runtime) findSource(name string) (string, string, error) {
	rel := SourcePath(name)
	for _, fsys := range rt.sourceFS {
		data, err := fs.ReadFile(fsys, rel)
		if err == nil {
			return string(data), "embedded:" + path.Clean(rel), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", "", fmt.Errorf("read %s: %w", rel, err)
		}
	}
	for _, dir := range rt.paths {
		file := filepath.Join(dir, filepath.FromSlash(rel))
		data, err := os.ReadFile(file)
		if err == nil {
			return string(data), file, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", "", fmt.Errorf("read %s: %w", file, err)
		}
	}
	return "", "", fmt.Errorf("%w: %s", ErrNamespaceNotFound, name)
}

func (rt *Runtime) loadSource(ctx context.Context, name, src string) (*Namespace, error) {
	forms, err := ReadAll(src)
	if err != nil {
		return nil, err
	}
	ns := NewNamespace(name)
	if err := rt.referCore(ctx, ns); err != nil {
		return nil, err
	}
	st := &state{rt: rt, ns: ns, pending: ns}
	for _, form := range forms {
		if _, err := st.eval(ctx, form, nil); err != nil {
			return nil, err
		}
	}
	return ns, nil
}

func (rt *Runtime) referCore(ctx context.Context, ns *Namespace) error {
	if ns.Name == CoreNamespace {
		return nil
	}
	core, err := rt.Require(ctx, CoreNamespace)
	if errors.Is(err, ErrNamespaceNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return ns.Refer(core)
}

// Eval evaluates a single form in ns.
func (rt *Runtime) Eval(ctx context.Context, ns *Namespace, form any) (any, error) {
	st := &state{rt: rt, ns: ns}
	return st.eval(ctx, form, nil)
}

// EvalString reads and evaluates every form of src in ns, returning the
// value of the last one. An ns form switches the namespace for the forms
// after it.
func (rt *Runtime) EvalString(ctx context.Context, ns *Namespace, src string) (any, error) {
	forms, err := ReadAll(src)
	if err != nil {
		return nil, err
	}
	st := &state{rt: rt, ns: ns}
	var result any
	for _, form := range forms {
		result, err = st.eval(ctx, form, nil)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}
