package lib

import (
	"context"
	"strings"

	"github.com/jonwraymond/hostcall/lisp"
)

const strUtilsName = "clojure.contrib.str-utils"

// StrUtils returns the clojure.contrib.str-utils library.
func StrUtils() lisp.Library {
	return lisp.Library{
		Name:    strUtilsName,
		Doc:     "String utilities for the hosted language.",
		Install: func(ns *lisp.Namespace) error { install(ns, strUtilsDefs()); return nil },
	}
}

func strUtilsDefs() []fnDef {
	return []fnDef{
		{"str-join", "Returns a string of all elements in sequence, separated by separator.", sig("[separator sequence]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(qualify(strUtilsName, "str-join"), args, 2); err != nil {
					return nil, err
				}
				return joinSeq(lisp.Str(args[0]), args[1])
			}},
		{"re-split", "Splits the string on instances of pattern. Returns a sequence of strings. Optional limit argument is the maximum number of splits.", sig("[pattern string]", "[pattern string limit]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arityRange(qualify(strUtilsName, "re-split"), args, 2, 3); err != nil {
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
				limit := int64(0)
				if len(args) == 3 {
					if limit, err = toInt(args[2]); err != nil {
						return nil, err
					}
				}
				return lisp.List(splitRegexp(re, s, int(limit))), nil
			}},
		{"re-gsub", "Replaces all instances of pattern in string with replacement. Replacement may be a string or a function of the match.", sig("[regex replacement string]"),
			reReplace("re-gsub", -1)},
		{"re-sub", "Replaces the first instance of pattern in string with replacement. Replacement may be a string or a function of the match.", sig("[regex replacement string]"),
			reReplace("re-sub", 1)},
		{"chop", "Removes the last character of string, does nothing on a zero-length string.", sig("[s]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(qualify(strUtilsName, "chop"), args, 1); err != nil {
					return nil, err
				}
				s, err := toString(args[0])
				if err != nil {
					return nil, err
				}
				runes := []rune(s)
				if len(runes) == 0 {
					return s, nil
				}
				return string(runes[:len(runes)-1]), nil
			}},
		{"chomp", "Removes all trailing newline \\n or return \\r characters from string.", sig("[s]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(qualify(strUtilsName, "chomp"), args, 1); err != nil {
					return nil, err
				}
				s, err := toString(args[0])
				if err != nil {
					return nil, err
				}
				return strings.TrimRight(s, "\r\n"), nil
			}},
	}
}

// reReplace replaces up to n matches, all of them when n < 0.
func reReplace(name string, n int) func(context.Context, []any) (any, error) {
	return func(ctx context.Context, args []any) (any, error) {
		if err := arity(qualify(strUtilsName, name), args, 3); err != nil {
			return nil, err
		}
		re, err := toRegexp(args[0])
		if err != nil {
			return nil, err
		}
		s, err := toString(args[2])
		if err != nil {
			return nil, err
		}
		var b strings.Builder
		last := 0
		for i, idx := range re.FindAllStringSubmatchIndex(s, n) {
			if n >= 0 && i >= n {
				break
			}
			b.WriteString(s[last:idx[0]])
			var repl string
			if text, ok := args[1].(string); ok {
				repl = string(re.ExpandString(nil, text, s, idx))
			} else {
				v, err := lisp.Apply(ctx, args[1], []any{matchValue(submatches(s, idx))})
				if err != nil {
					return nil, err
				}
				repl = lisp.Str(v)
			}
			b.WriteString(repl)
			last = idx[1]
		}
		b.WriteString(s[last:])
		return b.String(), nil
	}
}
