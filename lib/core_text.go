package lib

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonwraymond/hostcall/lisp"
)

func joinPrinted(args []any, print func(any) string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = print(a)
	}
	return strings.Join(parts, " ")
}

func printer(name string, print func(any) string, newline bool) func(context.Context, []any) (any, error) {
	return func(ctx context.Context, args []any) (any, error) {
		out := joinPrinted(args, print)
		if newline {
			out += "\n"
		}
		if _, err := fmt.Fprint(lisp.Output(ctx), out); err != nil {
			return nil, fmt.Errorf("%s: %w", core(name), err)
		}
		return nil, nil
	}
}

// matchValue returns the whole match when the pattern has no groups and
// a vector of the match and its groups otherwise.
func matchValue(groups []string, present []bool) any {
	if len(groups) == 1 {
		return groups[0]
	}
	out := make(lisp.Vector, len(groups))
	for i, g := range groups {
		if present[i] {
			out[i] = g
		}
	}
	return out
}

func submatches(s string, idx []int) ([]string, []bool) {
	groups := make([]string, len(idx)/2)
	present := make([]bool, len(idx)/2)
	for i := range groups {
		if idx[2*i] >= 0 {
			groups[i] = s[idx[2*i]:idx[2*i+1]]
			present[i] = true
		}
	}
	return groups, present
}

func textDefs() []fnDef {
	return []fnDef{
		{"str", "With no args, returns the empty string. With one arg x, returns x.toString(). (str nil) returns the empty string. With more than one arg, returns the concatenation of the str values of the args.", sig("[]", "[x]", "[x & ys]"),
			func(_ context.Context, args []any) (any, error) {
				var b strings.Builder
				for _, a := range args {
					b.WriteString(lisp.Str(a))
				}
				return b.String(), nil
			}},
		{"subs", "Returns the substring of s beginning at start inclusive, and ending at end (defaults to length of string), exclusive.", sig("[s start]", "[s start end]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arityRange(core("subs"), args, 2, 3); err != nil {
					return nil, err
				}
				s, err := toString(args[0])
				if err != nil {
					return nil, err
				}
				runes := []rune(s)
				start, err := toInt(args[1])
				if err != nil {
					return nil, err
				}
				end := int64(len(runes))
				if len(args) == 3 {
					if end, err = toInt(args[2]); err != nil {
						return nil, err
					}
				}
				if start < 0 || end > int64(len(runes)) || start > end {
					return nil, lisp.Errorf(lisp.KindIndexOutOfRange, "begin %d, end %d, length %d", start, end, len(runes))
				}
				return string(runes[start:end]), nil
			}},
		{"name", "Returns the name String of a string, symbol or keyword.", sig("[x]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(core("name"), args, 1); err != nil {
					return nil, err
				}
				switch x := args[0].(type) {
				case string:
					return x, nil
				case lisp.Keyword:
					if _, n, ok := lisp.SplitQualified(string(x)); ok {
						return n, nil
					}
					return string(x), nil
				case lisp.Symbol:
					return x.Name, nil
				}
				return nil, castError(args[0], "named")
			}},
		{"keyword", "Returns a Keyword with the given name.", sig("[name]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(core("keyword"), args, 1); err != nil {
					return nil, err
				}
				switch x := args[0].(type) {
				case lisp.Keyword:
					return x, nil
				case string:
					return lisp.Keyword(x), nil
				case lisp.Symbol:
					return lisp.Keyword(x.String()), nil
				}
				return nil, nil
			}},
		{"symbol", "Returns a Symbol with the given name.", sig("[name]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(core("symbol"), args, 1); err != nil {
					return nil, err
				}
				switch x := args[0].(type) {
				case lisp.Symbol:
					return x, nil
				case string:
					return lisp.Sym(x), nil
				}
				return nil, castError(args[0], "string")
			}},
		{"pr-str", "pr to a string, returning it.", sig("[& xs]"),
			func(_ context.Context, args []any) (any, error) {
				return joinPrinted(args, lisp.PrStr), nil
			}},
		{"prn-str", "prn to a string, returning it.", sig("[& xs]"),
			func(_ context.Context, args []any) (any, error) {
				return joinPrinted(args, lisp.PrStr) + "\n", nil
			}},
		{"print-str", "print to a string, returning it.", sig("[& xs]"),
			func(_ context.Context, args []any) (any, error) {
				return joinPrinted(args, lisp.Str), nil
			}},
		{"read-string", "Reads one object from the string s.", sig("[s]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(core("read-string"), args, 1); err != nil {
					return nil, err
				}
				s, err := toString(args[0])
				if err != nil {
					return nil, err
				}
				v, err := lisp.ReadString(s)
				if err != nil {
					return nil, lisp.Errorf(lisp.KindIllegalArgument, "%v", err)
				}
				return v, nil
			}},
		{"print", "Prints the object(s) to the output stream, separated by spaces.", sig("[& more]"), printer("print", lisp.Str, false)},
		{"println", "Same as print followed by a newline.", sig("[& more]"), printer("println", lisp.Str, true)},
		{"prn", "Same as pr followed by a newline.", sig("[& more]"), printer("prn", lisp.PrStr, true)},
		{"re-pattern", "Returns an instance of a compiled pattern.", sig("[s]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(core("re-pattern"), args, 1); err != nil {
					return nil, err
				}
				return toRegexp(args[0])
			}},
		{"re-find", "Returns the next regex match, if any, of string to pattern.", sig("[re s]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(core("re-find"), args, 2); err != nil {
					return nil, err
				}
				re, err := toRegexp(args[0])
				if err != nil {
					return nil, err
				}
				s, err := toString(args[1])
				if err != nil {
					return nil, err
				}
				idx := re.FindStringSubmatchIndex(s)
				if idx == nil {
					return nil, nil
				}
				return matchValue(submatches(s, idx)), nil
			}},
		{"re-matches", "Returns the match, if any, of string to pattern. The whole string must match.", sig("[re s]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(core("re-matches"), args, 2); err != nil {
					return nil, err
				}
				re, err := toRegexp(args[0])
				if err != nil {
					return nil, err
				}
				s, err := toString(args[1])
				if err != nil {
					return nil, err
				}
				idx := re.FindStringSubmatchIndex(s)
				if idx == nil || idx[0] != 0 || idx[1] != len(s) {
					return nil, nil
				}
				return matchValue(submatches(s, idx)), nil
			}},
		{"re-seq", "Returns a sequence of successive matches of pattern in string.", sig("[re s]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(core("re-seq"), args, 2); err != nil {
					return nil, err
				}
				re, err := toRegexp(args[0])
				if err != nil {
					return nil, err
				}
				s, err := toString(args[1])
				if err != nil {
					return nil, err
				}
				var out []any
				for _, idx := range re.FindAllStringSubmatchIndex(s, -1) {
					out = append(out, matchValue(submatches(s, idx)))
				}
				return listOf(out), nil
			}},
	}
}

func fnDefs() []fnDef {
	return []fnDef{
		{"comp", "Takes a set of functions and returns a fn that is the composition of those fns, applied right to left.", sig("[]", "[f]", "[f g]", "[f g & fs]"),
			func(_ context.Context, fns []any) (any, error) {
				fns = append([]any(nil), fns...)
				return lisp.Func(func(ctx context.Context, args []any) (any, error) {
					if len(fns) == 0 {
						if err := arity("comp", args, 1); err != nil {
							return nil, err
						}
						return args[0], nil
					}
					v, err := lisp.Apply(ctx, fns[len(fns)-1], args)
					if err != nil {
						return nil, err
					}
					for i := len(fns) - 2; i >= 0; i-- {
						if v, err = lisp.Apply(ctx, fns[i], []any{v}); err != nil {
							return nil, err
						}
					}
					return v, nil
				}), nil
			}},
		{"partial", "Takes a function f and fewer than the normal arguments to f, and returns a fn that takes a variable number of additional args.", sig("[f]", "[f & args]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arityRange(core("partial"), args, 1, -1); err != nil {
					return nil, err
				}
				f, bound := args[0], append([]any(nil), args[1:]...)
				return lisp.Func(func(ctx context.Context, more []any) (any, error) {
					return lisp.Apply(ctx, f, append(append([]any(nil), bound...), more...))
				}), nil
			}},
		{"complement", "Takes a fn f and returns a fn that takes the same arguments as f, has the same effects, if any, and returns the opposite truth value.", sig("[f]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(core("complement"), args, 1); err != nil {
					return nil, err
				}
				f := args[0]
				return lisp.Func(func(ctx context.Context, more []any) (any, error) {
					v, err := lisp.Apply(ctx, f, more)
					if err != nil {
						return nil, err
					}
					return !lisp.Truthy(v), nil
				}), nil
			}},
		{"constantly", "Returns a function that takes any number of arguments and returns x.", sig("[x]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(core("constantly"), args, 1); err != nil {
					return nil, err
				}
				x := args[0]
				return lisp.Func(func(context.Context, []any) (any, error) { return x, nil }), nil
			}},
	}
}
