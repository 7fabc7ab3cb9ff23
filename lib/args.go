package lib

import (
	"regexp"

	"github.com/jonwraymond/hostcall/lisp"
)

func arity(name string, args []any, n int) error {
	if len(args) != n {
		return lisp.ArityError(name, len(args))
	}
	return nil
}

// arityRange checks min <= len(args) <= max; max < 0 means unbounded.
func arityRange(name string, args []any, min, max int) error {
	if len(args) < min || (max >= 0 && len(args) > max) {
		return lisp.ArityError(name, len(args))
	}
	return nil
}

func castError(v any, to string) error {
	return lisp.Errorf(lisp.KindClassCast, "%s cannot be cast to %s", lisp.TypeName(v), to)
}

func toInt(v any) (int64, error) {
	n, ok := v.(int64)
	if !ok {
		return 0, castError(v, "long")
	}
	return n, nil
}

func toString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", castError(v, "string")
	}
	return s, nil
}

// toRegexp accepts compiled patterns and pattern strings.
func toRegexp(v any) (*regexp.Regexp, error) {
	switch x := v.(type) {
	case *regexp.Regexp:
		return x, nil
	case string:
		re, err := regexp.Compile(x)
		if err != nil {
			return nil, lisp.Errorf(lisp.KindIllegalArgument, "invalid pattern %q: %v", x, err)
		}
		return re, nil
	}
	return nil, castError(v, "regex")
}

// listOf returns items as a list, or nil when empty.
func listOf(items []any) any {
	if len(items) == 0 {
		return nil
	}
	return lisp.List(items)
}
