package lib

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jonwraymond/hostcall/lisp"
)

const stringName = "clojure.string"

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

// String returns the clojure.string library.
func String() lisp.Library {
	return lisp.Library{
		Name:    stringName,
		Doc:     "String functions.",
		Install: func(ns *lisp.Namespace) error { install(ns, stringDefs()); return nil },
	}
}

func strFn(name string, fn func(s string) any) func(context.Context, []any) (any, error) {
	return func(_ context.Context, args []any) (any, error) {
		if err := arity(qualify(stringName, name), args, 1); err != nil {
			return nil, err
		}
		s, err := toString(args[0])
		if err != nil {
			return nil, err
		}
		return fn(s), nil
	}
}

func strPred(name string, fn func(s, sub string) bool) func(context.Context, []any) (any, error) {
	return func(_ context.Context, args []any) (any, error) {
		if err := arity(qualify(stringName, name), args, 2); err != nil {
			return nil, err
		}
		s, err := toString(args[0])
		if err != nil {
			return nil, err
		}
		return fn(s, lisp.Str(args[1])), nil
	}
}

func joinSeq(sep string, coll any) (string, error) {
	items, err := lisp.Seq(coll)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = lisp.Str(item)
	}
	return strings.Join(parts, sep), nil
}

// splitRegexp splits s around matches of re. A positive limit caps the
// number of parts; otherwise trailing empty strings are dropped.
func splitRegexp(re *regexp.Regexp, s string, limit int) []any {
	n := -1
	if limit > 0 {
		n = limit
	}
	parts := re.Split(s, n)
	if limit <= 0 {
		for len(parts) > 0 && parts[len(parts)-1] == "" {
			parts = parts[:len(parts)-1]
		}
	}
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return upper.String(string(runes[:1])) + lower.String(string(runes[1:]))
}

func stringDefs() []fnDef {
	return []fnDef{
		{"join", "Returns a string of all elements in coll, as returned by (seq coll), separated by an optional separator.", sig("[coll]", "[separator coll]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arityRange(qualify(stringName, "join"), args, 1, 2); err != nil {
					return nil, err
				}
				if len(args) == 1 {
					return joinSeq("", args[0])
				}
				return joinSeq(lisp.Str(args[0]), args[1])
			}},
		{"split", "Splits string on a regular expression. Optional argument limit is the maximum number of parts.", sig("[s re]", "[s re limit]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arityRange(qualify(stringName, "split"), args, 2, 3); err != nil {
					return nil, err
				}
				s, err := toString(args[0])
				if err != nil {
					return nil, err
				}
				re, err := toRegexp(args[1])
				if err != nil {
					return nil, err
				}
				limit := int64(0)
				if len(args) == 3 {
					if limit, err = toInt(args[2]); err != nil {
						return nil, err
					}
				}
				return lisp.Vector(splitRegexp(re, s, int(limit))), nil
			}},
		{"upper-case", "Converts string to all upper-case.", sig("[s]"), strFn("upper-case", func(s string) any { return upper.String(s) })},
		{"lower-case", "Converts string to all lower-case.", sig("[s]"), strFn("lower-case", func(s string) any { return lower.String(s) })},
		{"capitalize", "Converts first character of the string to upper-case, all other characters to lower-case.", sig("[s]"), strFn("capitalize", func(s string) any { return capitalize(s) })},
		{"trim", "Removes whitespace from both ends of string.", sig("[s]"), strFn("trim", func(s string) any { return strings.TrimSpace(s) })},
		{"triml", "Removes whitespace from the left side of string.", sig("[s]"), strFn("triml", func(s string) any { return strings.TrimLeftFunc(s, unicode.IsSpace) })},
		{"trimr", "Removes whitespace from the right side of string.", sig("[s]"), strFn("trimr", func(s string) any { return strings.TrimRightFunc(s, unicode.IsSpace) })},
		{"reverse", "Returns s with its characters reversed.", sig("[s]"), strFn("reverse", func(s string) any {
			runes := []rune(s)
			for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
				runes[i], runes[j] = runes[j], runes[i]
			}
			return string(runes)
		})},
		{"blank?", "True if s is nil, empty, or contains only whitespace.", sig("[s]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(qualify(stringName, "blank?"), args, 1); err != nil {
					return nil, err
				}
				if args[0] == nil {
					return true, nil
				}
				s, err := toString(args[0])
				if err != nil {
					return nil, err
				}
				return strings.TrimSpace(s) == "", nil
			}},
		{"starts-with?", "True if s starts with substr.", sig("[s substr]"), strPred("starts-with?", strings.HasPrefix)},
		{"ends-with?", "True if s ends with substr.", sig("[s substr]"), strPred("ends-with?", strings.HasSuffix)},
		{"includes?", "True if s includes substr.", sig("[s substr]"), strPred("includes?", strings.Contains)},
		{"replace", "Replaces all instance of match with replacement in s. match/replacement can be string/string or pattern/string.", sig("[s match replacement]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(qualify(stringName, "replace"), args, 3); err != nil {
					return nil, err
				}
				s, err := toString(args[0])
				if err != nil {
					return nil, err
				}
				switch m := args[1].(type) {
				case string:
					return strings.ReplaceAll(s, m, lisp.Str(args[2])), nil
				case lisp.Char:
					return strings.ReplaceAll(s, string(rune(m)), lisp.Str(args[2])), nil
				case *regexp.Regexp:
					return m.ReplaceAllString(s, lisp.Str(args[2])), nil
				}
				return nil, lisp.Errorf(lisp.KindIllegalArgument, "Invalid match arg: %s", lisp.PrStr(args[1]))
			}},
	}
}
