package lisp

import (
	"context"
	"sort"
	"sync"
)

// Var is a named, namespace-owned binding.
type Var struct {
	NS       string
	Name     string
	Doc      string
	Arglists []string
	Private  bool

	mu    sync.RWMutex
	value any
	bound bool
}

// Get returns the current root value, nil when unbound.
func (v *Var) Get() any {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Set rebinds the root value.
func (v *Var) Set(val any) {
	v.mu.Lock()
	v.value = val
	v.bound = true
	v.mu.Unlock()
}

// Bound reports whether the var has a root value.
func (v *Var) Bound() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.bound
}

// Symbol returns the fully qualified symbol naming v.
func (v *Var) Symbol() Symbol {
	return Symbol{NS: v.NS, Name: v.Name}
}

// Invoke calls the var's current value.
func (v *Var) Invoke(ctx context.Context, args []any) (any, error) {
	if !v.Bound() {
		return nil, Errorf(KindIllegalArgument, "Attempting to call unbound fn: #'%s", v.Symbol())
	}
	return Apply(ctx, v.Get(), args)
}

// Namespace maps names to vars. Lookups consult interned vars before
// referred ones.
type Namespace struct {
	Name string
	Doc  string

	mu      sync.RWMutex
	interns map[string]*Var
	refers  map[string]*Var
	aliases map[string]*Namespace
}

// NewNamespace returns an empty namespace.
func NewNamespace(name string) *Namespace {
	return &Namespace{
		Name:    name,
		interns: make(map[string]*Var),
		refers:  make(map[string]*Var),
		aliases: make(map[string]*Namespace),
	}
}

// Intern returns the var named name, creating it when missing.
func (ns *Namespace) Intern(name string) *Var {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	if v, ok := ns.interns[name]; ok {
		return v
	}
	v := &Var{NS: ns.Name, Name: name}
	ns.interns[name] = v
	return v
}

// Define interns name bound to val with documentation.
func (ns *Namespace) Define(name string, val any, doc string, arglists ...string) *Var {
	v := ns.Intern(name)
	v.Doc = doc
	v.Arglists = arglists
	v.Set(val)
	return v
}

// Lookup resolves name against interned, then referred vars.
func (ns *Namespace) Lookup(name string) (*Var, bool) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	if v, ok := ns.interns[name]; ok {
		return v, true
	}
	v, ok := ns.refers[name]
	return v, ok
}

// Public returns the public interned var named name.
func (ns *Namespace) Public(name string) (*Var, bool) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	v, ok := ns.interns[name]
	if !ok || v.Private {
		return nil, false
	}
	return v, true
}

// Publics returns the public interned vars sorted by name.
func (ns *Namespace) Publics() []*Var {
	ns.mu.RLock()
	out := make([]*Var, 0, len(ns.interns))
	for _, v := range ns.interns {
		if !v.Private {
			out = append(out, v)
		}
	}
	ns.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Refer makes the public vars of other resolvable by their bare names.
// Only the names listed are referred when names is non-empty.
func (ns *Namespace) Refer(other *Namespace, names ...string) error {
	if len(names) == 0 {
		publics := other.Publics()
		ns.mu.Lock()
		for _, v := range publics {
			ns.refers[v.Name] = v
		}
		ns.mu.Unlock()
		return nil
	}
	for _, name := range names {
		v, ok := other.Public(name)
		if !ok {
			return Errorf(KindIllegalArgument, "%s does not exist in %s", name, other.Name)
		}
		ns.mu.Lock()
		ns.refers[name] = v
		ns.mu.Unlock()
	}
	return nil
}

// AddAlias lets other be referenced as alias/name from ns.
func (ns *Namespace) AddAlias(alias string, other *Namespace) {
	ns.mu.Lock()
	ns.aliases[alias] = other
	ns.mu.Unlock()
}

// LookupAlias returns the namespace registered under alias.
func (ns *Namespace) LookupAlias(alias string) (*Namespace, bool) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	other, ok := ns.aliases[alias]
	return other, ok
}
