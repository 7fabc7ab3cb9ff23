package lib

import (
	"context"
	"sort"
	"unicode/utf8"

	"github.com/jonwraymond/hostcall/lisp"
)

func count(v any) (int, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case string:
		return utf8.RuneCountInString(x), nil
	case *lisp.Map:
		return x.Len(), nil
	case lisp.List:
		return len(x), nil
	case lisp.Vector:
		return len(x), nil
	}
	return 0, lisp.Errorf(lisp.KindIllegalArgument, "count not supported on this type: %s", lisp.TypeName(v))
}

func conj(coll any, items []any) (any, error) {
	switch c := coll.(type) {
	case nil:
		out := make(lisp.List, 0, len(items))
		for i := len(items) - 1; i >= 0; i-- {
			out = append(out, items[i])
		}
		return out, nil
	case lisp.List:
		out := make(lisp.List, 0, len(c)+len(items))
		for i := len(items) - 1; i >= 0; i-- {
			out = append(out, items[i])
		}
		return append(out, c...), nil
	case lisp.Vector:
		return append(append(lisp.Vector(nil), c...), items...), nil
	case *lisp.Map:
		m := c
		for _, item := range items {
			entry, ok := item.(lisp.Vector)
			if !ok || len(entry) != 2 {
				return nil, lisp.Errorf(lisp.KindIllegalArgument, "Vector arg to map conj must be a pair")
			}
			m = m.Assoc(entry[0], entry[1])
		}
		return m, nil
	}
	return nil, lisp.Errorf(lisp.KindClassCast, "%s cannot be conjoined to", lisp.TypeName(coll))
}

func nth(coll any, i int64) (any, bool, error) {
	var items []any
	switch c := coll.(type) {
	case nil:
		return nil, false, nil
	case lisp.List:
		items = c
	case lisp.Vector:
		items = c
	case string:
		items, _ = lisp.Seq(c)
	default:
		return nil, false, lisp.Errorf(lisp.KindIllegalArgument, "nth not supported on this type: %s", lisp.TypeName(coll))
	}
	if i < 0 || i >= int64(len(items)) {
		return nil, false, nil
	}
	return items[i], true, nil
}

func seqFn(name string, fn func(items []any) (any, error)) func(context.Context, []any) (any, error) {
	return func(_ context.Context, args []any) (any, error) {
		if err := arity(core(name), args, 1); err != nil {
			return nil, err
		}
		items, err := lisp.Seq(args[0])
		if err != nil {
			return nil, err
		}
		return fn(items)
	}
}

func takeDrop(name string, take bool) func(context.Context, []any) (any, error) {
	return func(_ context.Context, args []any) (any, error) {
		if err := arity(core(name), args, 2); err != nil {
			return nil, err
		}
		n, err := toInt(args[0])
		if err != nil {
			return nil, err
		}
		items, err := lisp.Seq(args[1])
		if err != nil {
			return nil, err
		}
		n = max(0, min(n, int64(len(items))))
		if take {
			return lisp.List(append([]any(nil), items[:n]...)), nil
		}
		return lisp.List(append([]any(nil), items[n:]...)), nil
	}
}

func filterFn(name string, keep bool) func(context.Context, []any) (any, error) {
	return func(ctx context.Context, args []any) (any, error) {
		if err := arity(core(name), args, 2); err != nil {
			return nil, err
		}
		items, err := lisp.Seq(args[1])
		if err != nil {
			return nil, err
		}
		var out lisp.List
		for _, item := range items {
			v, err := lisp.Apply(ctx, args[0], []any{item})
			if err != nil {
				return nil, err
			}
			if lisp.Truthy(v) == keep {
				out = append(out, item)
			}
		}
		return out, nil
	}
}

func seqDefs() []fnDef {
	return []fnDef{
		{"list", "Creates a new list containing the items.", sig("[& items]"),
			func(_ context.Context, args []any) (any, error) {
				return append(lisp.List{}, args...), nil
			}},
		{"list*", "Creates a new seq containing the items prepended to the rest, the last of which will be treated as a sequence.", sig("[args]", "[a args]", "[a b args]", "[a b c & more]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arityRange(core("list*"), args, 1, -1); err != nil {
					return nil, err
				}
				tail, err := lisp.Seq(args[len(args)-1])
				if err != nil {
					return nil, err
				}
				out := append(append([]any(nil), args[:len(args)-1]...), tail...)
				return listOf(out), nil
			}},
		{"vector", "Creates a new vector containing the args.", sig("[& args]"),
			func(_ context.Context, args []any) (any, error) {
				return append(lisp.Vector{}, args...), nil
			}},
		{"hash-map", "Returns a new map with supplied mappings.", sig("[& keyvals]"),
			func(_ context.Context, args []any) (any, error) {
				if len(args)%2 != 0 {
					return nil, lisp.Errorf(lisp.KindIllegalArgument, "No value supplied for key: %s", lisp.PrStr(args[len(args)-1]))
				}
				return lisp.MapOf(args...), nil
			}},
		{"cons", "Returns a new seq where x is the first element and seq is the rest.", sig("[x seq]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(core("cons"), args, 2); err != nil {
					return nil, err
				}
				rest, err := lisp.Seq(args[1])
				if err != nil {
					return nil, err
				}
				return append(lisp.List{args[0]}, rest...), nil
			}},
		{"first", "Returns the first item in the collection. If coll is nil, returns nil.", sig("[coll]"),
			seqFn("first", func(items []any) (any, error) {
				if len(items) == 0 {
					return nil, nil
				}
				return items[0], nil
			})},
		{"second", "Same as (first (next x)).", sig("[x]"),
			seqFn("second", func(items []any) (any, error) {
				if len(items) < 2 {
					return nil, nil
				}
				return items[1], nil
			})},
		{"last", "Return the last item in coll.", sig("[coll]"),
			seqFn("last", func(items []any) (any, error) {
				if len(items) == 0 {
					return nil, nil
				}
				return items[len(items)-1], nil
			})},
		{"rest", "Returns a possibly empty seq of the items after the first.", sig("[coll]"),
			seqFn("rest", func(items []any) (any, error) {
				if len(items) == 0 {
					return lisp.List{}, nil
				}
				return append(lisp.List{}, items[1:]...), nil
			})},
		{"next", "Returns a seq of the items after the first. If there are no more items, returns nil.", sig("[coll]"),
			seqFn("next", func(items []any) (any, error) {
				if len(items) < 2 {
					return nil, nil
				}
				return append(lisp.List{}, items[1:]...), nil
			})},
		{"seq", "Returns a seq on the collection. If the collection is empty, returns nil.", sig("[coll]"),
			seqFn("seq", func(items []any) (any, error) {
				return listOf(append([]any(nil), items...)), nil
			})},
		{"reverse", "Returns a seq of the items in coll in reverse order.", sig("[coll]"),
			seqFn("reverse", func(items []any) (any, error) {
				out := make(lisp.List, len(items))
				for i, item := range items {
					out[len(items)-1-i] = item
				}
				return out, nil
			})},
		{"distinct", "Returns a seq of the elements of coll with duplicates removed.", sig("[coll]"),
			seqFn("distinct", func(items []any) (any, error) {
				out := lisp.List{}
				for _, item := range items {
					seen := false
					for _, kept := range out {
						if lisp.Equal(kept, item) {
							seen = true
							break
						}
					}
					if !seen {
						out = append(out, item)
					}
				}
				return out, nil
			})},
		{"frequencies", "Returns a map from distinct items in coll to the number of times they appear.", sig("[coll]"),
			seqFn("frequencies", func(items []any) (any, error) {
				m := &lisp.Map{}
				for _, item := range items {
					n, _ := m.Get(item)
					c, _ := n.(int64)
					m = m.Assoc(item, c+1)
				}
				return m, nil
			})},
		{"count", "Returns the number of items in the collection. (count nil) returns 0.", sig("[coll]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(core("count"), args, 1); err != nil {
					return nil, err
				}
				n, err := count(args[0])
				return int64(n), err
			}},
		{"nth", "Returns the value at the index. Throws unless not-found is supplied when index is out of bounds.", sig("[coll index]", "[coll index not-found]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arityRange(core("nth"), args, 2, 3); err != nil {
					return nil, err
				}
				i, err := toInt(args[1])
				if err != nil {
					return nil, err
				}
				v, ok, err := nth(args[0], i)
				if err != nil {
					return nil, err
				}
				if ok {
					return v, nil
				}
				if len(args) == 3 {
					return args[2], nil
				}
				if args[0] == nil {
					return nil, nil
				}
				n, _ := count(args[0])
				return nil, lisp.Errorf(lisp.KindIndexOutOfRange, "Index %d out of bounds for length %d", i, n)
			}},
		{"conj", "Returns a new collection with the xs 'added'.", sig("[coll x]", "[coll x & xs]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arityRange(core("conj"), args, 1, -1); err != nil {
					return nil, err
				}
				return conj(args[0], args[1:])
			}},
		{"concat", "Returns a seq representing the concatenation of the elements in the supplied colls.", sig("[& colls]"),
			func(_ context.Context, args []any) (any, error) {
				out := lisp.List{}
				for _, a := range args {
					items, err := lisp.Seq(a)
					if err != nil {
						return nil, err
					}
					out = append(out, items...)
				}
				return out, nil
			}},
		{"into", "Returns a new coll consisting of to-coll with all of the items of from-coll conjoined.", sig("[to from]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(core("into"), args, 2); err != nil {
					return nil, err
				}
				items, err := lisp.Seq(args[1])
				if err != nil {
					return nil, err
				}
				return conj(args[0], items)
			}},
		{"range", "Returns a seq of nums from start (inclusive) to end (exclusive), by step.", sig("[end]", "[start end]", "[start end step]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arityRange(core("range"), args, 1, 3); err != nil {
					return nil, err
				}
				bounds := make([]int64, len(args))
				for i, a := range args {
					n, err := toInt(a)
					if err != nil {
						return nil, err
					}
					bounds[i] = n
				}
				start, end, step := int64(0), bounds[0], int64(1)
				if len(bounds) > 1 {
					start, end = bounds[0], bounds[1]
				}
				if len(bounds) > 2 {
					step = bounds[2]
				}
				if step == 0 {
					return nil, lisp.Errorf(lisp.KindIllegalArgument, "range step must not be zero")
				}
				out := lisp.List{}
				for i := start; (step > 0 && i < end) || (step < 0 && i > end); i += step {
					out = append(out, i)
				}
				return out, nil
			}},
		{"take", "Returns a seq of the first n items in coll, or all items if there are fewer than n.", sig("[n coll]"), takeDrop("take", true)},
		{"drop", "Returns a seq of all but the first n items in coll.", sig("[n coll]"), takeDrop("drop", false)},
		{"filter", "Returns a seq of the items in coll for which (pred item) returns logical true.", sig("[pred coll]"), filterFn("filter", true)},
		{"remove", "Returns a seq of the items in coll for which (pred item) returns logical false.", sig("[pred coll]"), filterFn("remove", false)},
		{"map", "Returns a seq consisting of the result of applying f to the first items of each coll, then the second items, until any coll is exhausted.", sig("[f coll]", "[f c1 c2]", "[f c1 c2 & colls]"),
			func(ctx context.Context, args []any) (any, error) {
				if err := arityRange(core("map"), args, 2, -1); err != nil {
					return nil, err
				}
				colls := make([][]any, len(args)-1)
				n := -1
				for i, a := range args[1:] {
					items, err := lisp.Seq(a)
					if err != nil {
						return nil, err
					}
					colls[i] = items
					if n < 0 || len(items) < n {
						n = len(items)
					}
				}
				out := make(lisp.List, 0, n)
				for i := 0; i < n; i++ {
					callArgs := make([]any, len(colls))
					for j, c := range colls {
						callArgs[j] = c[i]
					}
					v, err := lisp.Apply(ctx, args[0], callArgs)
					if err != nil {
						return nil, err
					}
					out = append(out, v)
				}
				return out, nil
			}},
		{"reduce", "f should be a function of 2 arguments. Reduces coll with f, starting from val when supplied.", sig("[f coll]", "[f val coll]"),
			func(ctx context.Context, args []any) (any, error) {
				if err := arityRange(core("reduce"), args, 2, 3); err != nil {
					return nil, err
				}
				items, err := lisp.Seq(args[len(args)-1])
				if err != nil {
					return nil, err
				}
				var acc any
				if len(args) == 3 {
					acc = args[1]
				} else {
					if len(items) == 0 {
						return lisp.Apply(ctx, args[0], nil)
					}
					acc, items = items[0], items[1:]
				}
				for _, item := range items {
					if acc, err = lisp.Apply(ctx, args[0], []any{acc, item}); err != nil {
						return nil, err
					}
				}
				return acc, nil
			}},
		{"apply", "Applies fn f to the argument list formed by prepending intervening arguments to args.", sig("[f args]", "[f x args]", "[f x y & more]"),
			func(ctx context.Context, args []any) (any, error) {
				if err := arityRange(core("apply"), args, 2, -1); err != nil {
					return nil, err
				}
				tail, err := lisp.Seq(args[len(args)-1])
				if err != nil {
					return nil, err
				}
				callArgs := append(append([]any(nil), args[1:len(args)-1]...), tail...)
				return lisp.Apply(ctx, args[0], callArgs)
			}},
		{"some", "Returns the first logical true value of (pred x) for any x in coll, else nil.", sig("[pred coll]"),
			func(ctx context.Context, args []any) (any, error) {
				if err := arity(core("some"), args, 2); err != nil {
					return nil, err
				}
				items, err := lisp.Seq(args[1])
				if err != nil {
					return nil, err
				}
				for _, item := range items {
					v, err := lisp.Apply(ctx, args[0], []any{item})
					if err != nil {
						return nil, err
					}
					if lisp.Truthy(v) {
						return v, nil
					}
				}
				return nil, nil
			}},
		{"every?", "Returns true if (pred x) is logical true for every x in coll, else false.", sig("[pred coll]"),
			func(ctx context.Context, args []any) (any, error) {
				if err := arity(core("every?"), args, 2); err != nil {
					return nil, err
				}
				items, err := lisp.Seq(args[1])
				if err != nil {
					return nil, err
				}
				for _, item := range items {
					v, err := lisp.Apply(ctx, args[0], []any{item})
					if err != nil {
						return nil, err
					}
					if !lisp.Truthy(v) {
						return false, nil
					}
				}
				return true, nil
			}},
		{"sort", "Returns a sorted sequence of the items in coll. Comp may be a boolean predicate or a comparator returning a number.", sig("[coll]", "[comp coll]"),
			func(ctx context.Context, args []any) (any, error) {
				if err := arityRange(core("sort"), args, 1, 2); err != nil {
					return nil, err
				}
				items, err := lisp.Seq(args[len(args)-1])
				if err != nil {
					return nil, err
				}
				out := append(lisp.List{}, items...)
				var sortErr error
				less := func(i, j int) bool {
					if sortErr != nil {
						return false
					}
					if len(args) == 1 {
						c, err := compareValues(out[i], out[j])
						sortErr = err
						return c < 0
					}
					v, err := lisp.Apply(ctx, args[0], []any{out[i], out[j]})
					if err != nil {
						sortErr = err
						return false
					}
					if isNumber(v) {
						return toFloat(v) < 0
					}
					return lisp.Truthy(v)
				}
				sort.SliceStable(out, less)
				if sortErr != nil {
					return nil, sortErr
				}
				return out, nil
			}},
	}
}

func mapDefs() []fnDef {
	return []fnDef{
		{"get", "Returns the value mapped to key, not-found or nil if key not present.", sig("[map key]", "[map key not-found]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arityRange(core("get"), args, 2, 3); err != nil {
					return nil, err
				}
				var notFound any
				if len(args) == 3 {
					notFound = args[2]
				}
				switch c := args[0].(type) {
				case *lisp.Map:
					if v, ok := c.Get(args[1]); ok {
						return v, nil
					}
				case lisp.Vector, string:
					if i, ok := args[1].(int64); ok {
						if v, found, _ := nth(c, i); found {
							return v, nil
						}
					}
				}
				return notFound, nil
			}},
		{"assoc", "assoc[iate]. When applied to a map, returns a new map that contains the mapping of key(s) to val(s). When applied to a vector, returns a new vector that contains val at index.", sig("[map key val]", "[map key val & kvs]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arityRange(core("assoc"), args, 3, -1); err != nil {
					return nil, err
				}
				if len(args)%2 != 1 {
					return nil, lisp.Errorf(lisp.KindIllegalArgument, "assoc expects even number of arguments after map/vector, found odd number")
				}
				switch c := args[0].(type) {
				case nil, *lisp.Map:
					m, _ := c.(*lisp.Map)
					for i := 1; i < len(args); i += 2 {
						m = m.Assoc(args[i], args[i+1])
					}
					return m, nil
				case lisp.Vector:
					out := append(lisp.Vector(nil), c...)
					for i := 1; i < len(args); i += 2 {
						idx, err := toInt(args[i])
						if err != nil {
							return nil, err
						}
						switch {
						case idx >= 0 && idx < int64(len(out)):
							out[idx] = args[i+1]
						case idx == int64(len(out)):
							out = append(out, args[i+1])
						default:
							return nil, lisp.Errorf(lisp.KindIndexOutOfRange, "Index %d out of bounds for length %d", idx, len(out))
						}
					}
					return out, nil
				}
				return nil, castError(args[0], "associative")
			}},
		{"dissoc", "dissoc[iate]. Returns a new map of the same kind that does not contain a mapping for key(s).", sig("[map]", "[map key]", "[map key & ks]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arityRange(core("dissoc"), args, 1, -1); err != nil {
					return nil, err
				}
				if args[0] == nil {
					return nil, nil
				}
				m, ok := args[0].(*lisp.Map)
				if !ok {
					return nil, castError(args[0], "map")
				}
				for _, k := range args[1:] {
					m = m.Dissoc(k)
				}
				return m, nil
			}},
		{"keys", "Returns a sequence of the map's keys, in the same order as (seq map).", sig("[map]"),
			mapView("keys", (*lisp.Map).Keys)},
		{"vals", "Returns a sequence of the map's values, in the same order as (seq map).", sig("[map]"),
			mapView("vals", (*lisp.Map).Vals)},
		{"contains?", "Returns true if key is present in the given collection, otherwise returns false. For vectors and strings key is an index.", sig("[coll key]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(core("contains?"), args, 2); err != nil {
					return nil, err
				}
				switch c := args[0].(type) {
				case nil:
					return false, nil
				case *lisp.Map:
					_, ok := c.Get(args[1])
					return ok, nil
				case lisp.Vector, string:
					i, ok := args[1].(int64)
					if !ok {
						return false, nil
					}
					_, found, _ := nth(c, i)
					return found, nil
				}
				return nil, lisp.Errorf(lisp.KindIllegalArgument, "contains? not supported on type: %s", lisp.TypeName(args[0]))
			}},
		{"merge", "Returns a map that consists of the rest of the maps conj-ed onto the first. If a key occurs in more than one map, the mapping from the latter will be the mapping in the result.", sig("[& maps]"),
			func(_ context.Context, args []any) (any, error) {
				var out *lisp.Map
				for _, a := range args {
					if a == nil {
						continue
					}
					m, ok := a.(*lisp.Map)
					if !ok {
						return nil, castError(a, "map")
					}
					if out == nil {
						out = &lisp.Map{}
					}
					keys, vals := m.Keys(), m.Vals()
					for i := range keys {
						out = out.Assoc(keys[i], vals[i])
					}
				}
				if out == nil {
					return nil, nil
				}
				return out, nil
			}},
	}
}

func mapView(name string, view func(*lisp.Map) []any) func(context.Context, []any) (any, error) {
	return func(_ context.Context, args []any) (any, error) {
		if err := arity(core(name), args, 1); err != nil {
			return nil, err
		}
		if args[0] == nil {
			return nil, nil
		}
		m, ok := args[0].(*lisp.Map)
		if !ok {
			return nil, castError(args[0], "map")
		}
		return listOf(view(m)), nil
	}
}
