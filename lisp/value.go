package lisp

import (
	"context"
	"reflect"
	"regexp"
	"strings"
)

// Symbol is a possibly namespace-qualified name.
type Symbol struct {
	NS   string
	Name string
}

// Sym parses a symbol, splitting a leading namespace qualifier when present.
func Sym(s string) Symbol {
	if ns, name, ok := SplitQualified(s); ok {
		return Symbol{NS: ns, Name: name}
	}
	return Symbol{Name: s}
}

// String returns the symbol as written.
func (s Symbol) String() string {
	if s.NS == "" {
		return s.Name
	}
	return s.NS + "/" + s.Name
}

// SplitQualified splits "ns/name" into its parts. The division function
// "clojure.core//" splits into "clojure.core" and "/"; a lone "/" is
// unqualified.
func SplitQualified(s string) (ns, name string, ok bool) {
	i := strings.IndexByte(s, '/')
	if i <= 0 || i == len(s)-1 {
		return "", s, false
	}
	return s[:i], s[i+1:], true
}

// Keyword is a keyword name without its leading colon.
type Keyword string

// Char is a single character value.
type Char rune

// List is a sequential list value.
type List []any

// Vector is an indexed sequential value.
type Vector []any

// Fn is a callable hosted value.
type Fn interface {
	Invoke(ctx context.Context, args []any) (any, error)
}

// Func adapts a Go function to Fn.
type Func func(ctx context.Context, args []any) (any, error)

// Invoke calls f.
func (f Func) Invoke(ctx context.Context, args []any) (any, error) {
	return f(ctx, args)
}

// Map is an insertion-ordered associative value. A nil *Map is empty.
// Maps are never mutated after construction; Assoc and Dissoc return copies.
type Map struct {
	keys []any
	vals []any
}

// MapOf builds a map from alternating keys and values. A trailing key
// without a value maps to nil.
func MapOf(kvs ...any) *Map {
	m := &Map{}
	for i := 0; i < len(kvs); i += 2 {
		var v any
		if i+1 < len(kvs) {
			v = kvs[i+1]
		}
		m = m.Assoc(kvs[i], v)
	}
	return m
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

func (m *Map) find(k any) int {
	if m == nil {
		return -1
	}
	for i, key := range m.keys {
		if Equal(key, k) {
			return i
		}
	}
	return -1
}

// Get returns the value stored under k.
func (m *Map) Get(k any) (any, bool) {
	i := m.find(k)
	if i < 0 {
		return nil, false
	}
	return m.vals[i], true
}

// Assoc returns a copy of m with k mapped to v.
func (m *Map) Assoc(k, v any) *Map {
	out := &Map{}
	if m != nil {
		out.keys = append([]any(nil), m.keys...)
		out.vals = append([]any(nil), m.vals...)
	}
	if i := out.find(k); i >= 0 {
		out.vals[i] = v
		return out
	}
	out.keys = append(out.keys, k)
	out.vals = append(out.vals, v)
	return out
}

// Dissoc returns a copy of m without k.
func (m *Map) Dissoc(k any) *Map {
	i := m.find(k)
	if i < 0 {
		return m
	}
	out := &Map{
		keys: make([]any, 0, len(m.keys)-1),
		vals: make([]any, 0, len(m.vals)-1),
	}
	out.keys = append(append(out.keys, m.keys[:i]...), m.keys[i+1:]...)
	out.vals = append(append(out.vals, m.vals[:i]...), m.vals[i+1:]...)
	return out
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []any {
	if m == nil {
		return nil
	}
	return append([]any(nil), m.keys...)
}

// Vals returns the values in insertion order.
func (m *Map) Vals() []any {
	if m == nil {
		return nil
	}
	return append([]any(nil), m.vals...)
}

// Entries returns [key value] vectors in insertion order.
func (m *Map) Entries() []any {
	if m == nil {
		return nil
	}
	out := make([]any, len(m.keys))
	for i := range m.keys {
		out[i] = Vector{m.keys[i], m.vals[i]}
	}
	return out
}

// Truthy reports whether v counts as logical true: everything but nil and false.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	}
	return true
}

// Seq returns the elements of a seqable value. Strings yield their
// characters and maps yield [key value] entries.
func Seq(v any) ([]any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case List:
		return []any(x), nil
	case Vector:
		return []any(x), nil
	case *Map:
		return x.Entries(), nil
	case string:
		out := make([]any, 0, len(x))
		for _, r := range x {
			out = append(out, Char(r))
		}
		return out, nil
	}
	return nil, Errorf(KindIllegalArgument, "Don't know how to create a seq from: %s", TypeName(v))
}

// Seqable reports whether Seq accepts v.
func Seqable(v any) bool {
	switch v.(type) {
	case nil, List, Vector, *Map, string:
		return true
	}
	return false
}

// Equal implements value equality. Lists and vectors with equal elements
// are equal; integers and floats never are.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case List:
		return seqEqual(x, b)
	case Vector:
		return seqEqual(x, b)
	case *Map:
		y, ok := b.(*Map)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i, k := range x.Keys() {
			v, found := y.Get(k)
			if !found || !Equal(x.vals[i], v) {
				return false
			}
		}
		return true
	case *regexp.Regexp:
		y, ok := b.(*regexp.Regexp)
		return ok && x == y
	}
	if b == nil {
		return false
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func seqEqual(xs []any, b any) bool {
	var ys []any
	switch y := b.(type) {
	case List:
		ys = y
	case Vector:
		ys = y
	default:
		return false
	}
	if len(xs) != len(ys) {
		return false
	}
	for i := range xs {
		if !Equal(xs[i], ys[i]) {
			return false
		}
	}
	return true
}

// TypeName returns the hosted type name of v, used in error messages.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case bool:
		return "boolean"
	case int64:
		return "long"
	case float64:
		return "double"
	case string:
		return "string"
	case Char:
		return "char"
	case Keyword:
		return "keyword"
	case Symbol:
		return "symbol"
	case List:
		return "list"
	case Vector:
		return "vector"
	case *Map:
		return "map"
	case *regexp.Regexp:
		return "regex"
	case *Var:
		return "var"
	case Fn:
		return "fn"
	}
	return reflect.TypeOf(v).String()
}
