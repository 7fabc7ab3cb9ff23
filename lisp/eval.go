package lisp

import (
	"context"
	"time"
)

type env struct {
	vars   map[string]any
	parent *env
}

func newEnv(parent *env) *env {
	return &env{vars: make(map[string]any), parent: parent}
}

func (e *env) lookup(name string) (any, bool) {
	for ; e != nil; e = e.parent {
		if v, ok := e.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// state is the evaluation state of one load or evaluation: the runtime and
// the current namespace, which an ns form may switch.
type state struct {
	rt *Runtime
	ns *Namespace
	// pending is the namespace being loaded from source, if any.
	pending *Namespace
}

type specialForm func(st *state, ctx context.Context, form List, e *env) (any, error)

var specialForms map[string]specialForm

func init() {
	specialForms = map[string]specialForm{
		"quote": evalQuote,
		"if":    evalIf,
		"do":    evalDo,
		"def":   evalDef,
		"defn":  evalDefn,
		"fn":    evalFn,
		"let":   evalLet,
		"when":  evalWhen,
		"and":   evalAnd,
		"or":    evalOr,
		"ns":    evalNS,
	}
}

func (st *state) eval(ctx context.Context, form any, e *env) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch f := form.(type) {
	case Symbol:
		return st.resolve(f, e)
	case List:
		if len(f) == 0 {
			return f, nil
		}
		if head, ok := f[0].(Symbol); ok && head.NS == "" {
			if _, local := e.lookup(head.Name); !local {
				if special, ok := specialForms[head.Name]; ok {
					return special(st, ctx, f, e)
				}
			}
		}
		return st.call(ctx, f, e)
	case Vector:
		out := make(Vector, len(f))
		for i, item := range f {
			v, err := st.eval(ctx, item, e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case *Map:
		out := &Map{}
		for i, k := range f.keys {
			kv, err := st.eval(ctx, k, e)
			if err != nil {
				return nil, err
			}
			vv, err := st.eval(ctx, f.vals[i], e)
			if err != nil {
				return nil, err
			}
			out = out.Assoc(kv, vv)
		}
		return out, nil
	}
	return form, nil
}

func (st *state) resolveVar(sym Symbol) (*Var, error) {
	if sym.NS == "" {
		if v, ok := st.ns.Lookup(sym.Name); ok {
			return v, nil
		}
		return nil, Errorf(KindCompiler, "Unable to resolve symbol: %s in this context", sym.Name)
	}
	target, ok := st.ns.LookupAlias(sym.NS)
	if !ok {
		if sym.NS == st.ns.Name {
			target = st.ns
		} else if target, ok = st.rt.Namespace(sym.NS); !ok {
			return nil, Errorf(KindCompiler, "No such namespace: %s", sym.NS)
		}
	}
	if target == st.ns {
		if v, ok := target.Lookup(sym.Name); ok {
			return v, nil
		}
	} else if v, ok := target.Public(sym.Name); ok {
		return v, nil
	}
	return nil, Errorf(KindCompiler, "No such var: %s", sym)
}

func (st *state) resolve(sym Symbol, e *env) (any, error) {
	if sym.NS == "" {
		if v, ok := e.lookup(sym.Name); ok {
			return v, nil
		}
	}
	v, err := st.resolveVar(sym)
	if err != nil {
		return nil, err
	}
	if !v.Bound() {
		return nil, Errorf(KindIllegalArgument, "Var %s is unbound", v.Symbol())
	}
	return v.Get(), nil
}

func (st *state) evalArgs(ctx context.Context, forms []any, e *env) ([]any, error) {
	args := make([]any, len(forms))
	for i, form := range forms {
		v, err := st.eval(ctx, form, e)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (st *state) call(ctx context.Context, form List, e *env) (any, error) {
	name := ""
	var fn any
	if head, ok := form[0].(Symbol); ok {
		if _, local := e.lookup(head.Name); head.NS != "" || !local {
			v, err := st.resolveVar(head)
			if err != nil {
				return nil, err
			}
			if !v.Bound() {
				return nil, Errorf(KindIllegalArgument, "Var %s is unbound", v.Symbol())
			}
			name = v.Symbol().String()
			fn = v.Get()
		}
	}
	if name == "" {
		var err error
		if fn, err = st.eval(ctx, form[0], e); err != nil {
			return nil, err
		}
	}
	args, err := st.evalArgs(ctx, form[1:], e)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return Apply(ctx, fn, args)
	}

	obs := observerFrom(ctx)
	if obs == nil {
		return Apply(ctx, fn, args)
	}
	if err := obs.BeforeCall(ctx, name, args); err != nil {
		return nil, err
	}
	start := time.Now()
	result, err := Apply(ctx, fn, args)
	obs.AfterCall(ctx, name, args, result, err, time.Since(start))
	return result, err
}

// Apply calls f with args. Besides functions, keywords and maps look
// themselves up and vectors index themselves.
func Apply(ctx context.Context, f any, args []any) (any, error) {
	switch fn := f.(type) {
	case Fn:
		return fn.Invoke(ctx, args)
	case Keyword:
		if len(args) < 1 || len(args) > 2 {
			return nil, ArityError(":"+string(fn), len(args))
		}
		m, ok := args[0].(*Map)
		if !ok {
			return notFound(args), nil
		}
		if v, found := m.Get(fn); found {
			return v, nil
		}
		return notFound(args), nil
	case *Map:
		if len(args) < 1 || len(args) > 2 {
			return nil, ArityError("map", len(args))
		}
		if v, found := fn.Get(args[0]); found {
			return v, nil
		}
		return notFound(args), nil
	case Vector:
		if len(args) != 1 {
			return nil, ArityError("vector", len(args))
		}
		i, ok := args[0].(int64)
		if !ok {
			return nil, Errorf(KindIllegalArgument, "Key must be integer")
		}
		if i < 0 || i >= int64(len(fn)) {
			return nil, Errorf(KindIndexOutOfRange, "Index %d out of bounds for length %d", i, len(fn))
		}
		return fn[i], nil
	case nil:
		return nil, Errorf(KindIllegalArgument, "Can't call nil")
	}
	return nil, Errorf(KindClassCast, "%s cannot be cast to fn", TypeName(f))
}

func notFound(args []any) any {
	if len(args) == 2 {
		return args[1]
	}
	return nil
}

func evalQuote(_ *state, _ context.Context, form List, _ *env) (any, error) {
	if len(form) != 2 {
		return nil, Errorf(KindCompiler, "Wrong number of args (%d) passed to quote", len(form)-1)
	}
	return form[1], nil
}

func evalIf(st *state, ctx context.Context, form List, e *env) (any, error) {
	if len(form) < 3 || len(form) > 4 {
		return nil, Errorf(KindCompiler, "Wrong number of args (%d) passed to if", len(form)-1)
	}
	test, err := st.eval(ctx, form[1], e)
	if err != nil {
		return nil, err
	}
	if Truthy(test) {
		return st.eval(ctx, form[2], e)
	}
	if len(form) == 4 {
		return st.eval(ctx, form[3], e)
	}
	return nil, nil
}

func (st *state) body(ctx context.Context, forms []any, e *env) (any, error) {
	var result any
	for _, form := range forms {
		v, err := st.eval(ctx, form, e)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

func evalDo(st *state, ctx context.Context, form List, e *env) (any, error) {
	return st.body(ctx, form[1:], e)
}

func evalWhen(st *state, ctx context.Context, form List, e *env) (any, error) {
	if len(form) < 2 {
		return nil, Errorf(KindCompiler, "Wrong number of args (0) passed to when")
	}
	test, err := st.eval(ctx, form[1], e)
	if err != nil || !Truthy(test) {
		return nil, err
	}
	return st.body(ctx, form[2:], e)
}

func evalAnd(st *state, ctx context.Context, form List, e *env) (any, error) {
	var result any = true
	for _, f := range form[1:] {
		v, err := st.eval(ctx, f, e)
		if err != nil {
			return nil, err
		}
		if !Truthy(v) {
			return v, nil
		}
		result = v
	}
	return result, nil
}

func evalOr(st *state, ctx context.Context, form List, e *env) (any, error) {
	var result any
	for _, f := range form[1:] {
		v, err := st.eval(ctx, f, e)
		if err != nil {
			return nil, err
		}
		if Truthy(v) {
			return v, nil
		}
		result = v
	}
	return result, nil
}

func evalDef(st *state, ctx context.Context, form List, e *env) (any, error) {
	if len(form) < 2 || len(form) > 4 {
		return nil, Errorf(KindCompiler, "Too many arguments to def")
	}
	sym, ok := form[1].(Symbol)
	if !ok || sym.NS != "" {
		return nil, Errorf(KindCompiler, "First argument to def must be an unqualified symbol")
	}
	v := st.ns.Intern(sym.Name)
	rest := form[2:]
	if len(rest) == 2 {
		doc, ok := rest[0].(string)
		if !ok {
			return nil, Errorf(KindCompiler, "Too many arguments to def")
		}
		v.Doc = doc
		rest = rest[1:]
	}
	if len(rest) == 1 {
		val, err := st.eval(ctx, rest[0], e)
		if err != nil {
			return nil, err
		}
		if c, ok := val.(*Closure); ok && c.Name == "" {
			c.Name = sym.Name
		}
		v.Set(val)
	}
	return v, nil
}

func evalDefn(st *state, ctx context.Context, form List, e *env) (any, error) {
	if len(form) < 3 {
		return nil, Errorf(KindCompiler, "defn requires a name and a parameter vector")
	}
	sym, ok := form[1].(Symbol)
	if !ok || sym.NS != "" {
		return nil, Errorf(KindCompiler, "First argument to defn must be an unqualified symbol")
	}
	rest := form[2:]
	doc := ""
	if s, ok := rest[0].(string); ok && len(rest) > 1 {
		doc = s
		rest = rest[1:]
	}
	params, ok := rest[0].(Vector)
	if !ok {
		return nil, Errorf(KindCompiler, "Parameter declaration missing in defn %s", sym.Name)
	}
	c, err := st.closure(sym.Name, params, rest[1:], e)
	if err != nil {
		return nil, err
	}
	v := st.ns.Intern(sym.Name)
	v.Doc = doc
	v.Arglists = []string{PrStr(params)}
	v.Set(c)
	return v, nil
}

func evalFn(st *state, _ context.Context, form List, e *env) (any, error) {
	rest := form[1:]
	name := ""
	if len(rest) > 0 {
		if sym, ok := rest[0].(Symbol); ok {
			name = sym.Name
			rest = rest[1:]
		}
	}
	if len(rest) == 0 {
		return nil, Errorf(KindCompiler, "Parameter declaration missing in fn")
	}
	params, ok := rest[0].(Vector)
	if !ok {
		return nil, Errorf(KindCompiler, "Parameter declaration should be a vector")
	}
	c, err := st.closure(name, params, rest[1:], e)
	if err != nil {
		return nil, err
	}
	if name != "" {
		self := newEnv(e)
		self.vars[name] = c
		c.env = self
	}
	return c, nil
}

func evalLet(st *state, ctx context.Context, form List, e *env) (any, error) {
	if len(form) < 2 {
		return nil, Errorf(KindCompiler, "let requires a binding vector")
	}
	bindings, ok := form[1].(Vector)
	if !ok || len(bindings)%2 != 0 {
		return nil, Errorf(KindCompiler, "let requires an even number of forms in binding vector")
	}
	local := newEnv(e)
	for i := 0; i < len(bindings); i += 2 {
		sym, ok := bindings[i].(Symbol)
		if !ok || sym.NS != "" {
			return nil, Errorf(KindCompiler, "Unsupported binding form: %s", PrStr(bindings[i]))
		}
		v, err := st.eval(ctx, bindings[i+1], local)
		if err != nil {
			return nil, err
		}
		local.vars[sym.Name] = v
	}
	return st.body(ctx, form[2:], local)
}

func evalNS(st *state, ctx context.Context, form List, _ *env) (any, error) {
	if len(form) < 2 {
		return nil, Errorf(KindCompiler, "ns requires a name")
	}
	sym, ok := form[1].(Symbol)
	if !ok || sym.NS != "" {
		return nil, Errorf(KindCompiler, "Namespace name must be a symbol")
	}

	var ns *Namespace
	switch {
	case st.pending != nil && st.pending.Name == sym.Name:
		ns = st.pending
	case st.pending != nil:
		return nil, Errorf(KindCompiler, "Namespace %s declared while loading %s", sym.Name, st.pending.Name)
	default:
		existing, ok := st.rt.Namespace(sym.Name)
		if !ok {
			existing = st.rt.register(NewNamespace(sym.Name))
		}
		ns = existing
	}
	if err := st.rt.referCore(ctx, ns); err != nil {
		return nil, err
	}

	for _, clause := range form[2:] {
		switch c := clause.(type) {
		case string:
			ns.Doc = c
		case List:
			if err := st.nsClause(ctx, ns, c); err != nil {
				return nil, err
			}
		default:
			return nil, Errorf(KindCompiler, "Unsupported ns clause: %s", PrStr(clause))
		}
	}
	st.ns = ns
	return nil, nil
}

func (st *state) nsClause(ctx context.Context, ns *Namespace, clause List) error {
	if len(clause) == 0 {
		return Errorf(KindCompiler, "Empty ns clause")
	}
	kind, ok := clause[0].(Keyword)
	if !ok || (kind != "require" && kind != "use") {
		return Errorf(KindCompiler, "Unsupported ns clause: %s", PrStr(clause))
	}
	for _, spec := range clause[1:] {
		switch s := spec.(type) {
		case Symbol:
			lib, err := st.rt.Require(ctx, s.String())
			if err != nil {
				return err
			}
			if kind == "use" {
				if err := ns.Refer(lib); err != nil {
					return err
				}
			}
		case Vector:
			if err := st.libSpec(ctx, ns, s, kind == "use"); err != nil {
				return err
			}
		default:
			return Errorf(KindCompiler, "Unsupported lib spec: %s", PrStr(spec))
		}
	}
	return nil
}

func (st *state) libSpec(ctx context.Context, ns *Namespace, spec Vector, referAll bool) error {
	if len(spec) == 0 || len(spec)%2 != 1 {
		return Errorf(KindCompiler, "Malformed lib spec: %s", PrStr(spec))
	}
	sym, ok := spec[0].(Symbol)
	if !ok {
		return Errorf(KindCompiler, "Malformed lib spec: %s", PrStr(spec))
	}
	lib, err := st.rt.Require(ctx, sym.String())
	if err != nil {
		return err
	}
	if referAll {
		if err := ns.Refer(lib); err != nil {
			return err
		}
	}
	for i := 1; i < len(spec); i += 2 {
		opt, _ := spec[i].(Keyword)
		switch opt {
		case "as":
			alias, ok := spec[i+1].(Symbol)
			if !ok {
				return Errorf(KindCompiler, ":as requires a symbol")
			}
			ns.AddAlias(alias.Name, lib)
		case "refer":
			switch r := spec[i+1].(type) {
			case Keyword:
				if r != "all" {
					return Errorf(KindCompiler, ":refer takes :all or a vector of symbols")
				}
				if err := ns.Refer(lib); err != nil {
					return err
				}
			case Vector:
				names := make([]string, 0, len(r))
				for _, item := range r {
					s, ok := item.(Symbol)
					if !ok {
						return Errorf(KindCompiler, ":refer takes :all or a vector of symbols")
					}
					names = append(names, s.Name)
				}
				if err := ns.Refer(lib, names...); err != nil {
					return err
				}
			default:
				return Errorf(KindCompiler, ":refer takes :all or a vector of symbols")
			}
		default:
			return Errorf(KindCompiler, "Unsupported lib spec option: %s", PrStr(spec[i]))
		}
	}
	return nil
}

// Closure is a function defined by hosted code.
type Closure struct {
	Name   string
	NS     *Namespace
	params []string
	rest   string
	body   []any
	env    *env
	rt     *Runtime
}

func (st *state) closure(name string, params Vector, body []any, e *env) (*Closure, error) {
	c := &Closure{Name: name, NS: st.ns, body: body, env: e, rt: st.rt}
	for i := 0; i < len(params); i++ {
		sym, ok := params[i].(Symbol)
		if !ok || sym.NS != "" {
			return nil, Errorf(KindCompiler, "Unsupported binding form: %s", PrStr(params[i]))
		}
		if sym.Name == "&" {
			if i != len(params)-2 {
				return nil, Errorf(KindCompiler, "Invalid parameter list: %s", PrStr(params))
			}
			restSym, ok := params[i+1].(Symbol)
			if !ok || restSym.NS != "" {
				return nil, Errorf(KindCompiler, "Unsupported binding form: %s", PrStr(params[i+1]))
			}
			c.rest = restSym.Name
			break
		}
		c.params = append(c.params, sym.Name)
	}
	return c, nil
}

func (c *Closure) qualifiedName() string {
	name := c.Name
	if name == "" {
		name = "fn"
	}
	if c.NS == nil {
		return name
	}
	return c.NS.Name + "/" + name
}

// Invoke binds args to the closure's parameters and evaluates its body.
func (c *Closure) Invoke(ctx context.Context, args []any) (any, error) {
	if len(args) < len(c.params) || (c.rest == "" && len(args) > len(c.params)) {
		return nil, ArityError(c.qualifiedName(), len(args))
	}
	ctx, err := enterCall(ctx, c.qualifiedName())
	if err != nil {
		return nil, err
	}
	local := newEnv(c.env)
	for i, p := range c.params {
		local.vars[p] = args[i]
	}
	if c.rest != "" {
		var rest any
		if extra := args[len(c.params):]; len(extra) > 0 {
			rest = List(append([]any(nil), extra...))
		}
		local.vars[c.rest] = rest
	}
	st := &state{rt: c.rt, ns: c.NS}
	return st.body(ctx, c.body, local)
}
