package lib

import (
	"context"
	"math"
	"regexp"

	"github.com/jonwraymond/hostcall/lisp"
)

const coreName = lisp.CoreNamespace

func qualify(ns, name string) string { return ns + "/" + name }

func core(name string) string { return qualify(coreName, name) }

// Core returns the clojure.core library.
func Core() lisp.Library {
	return lisp.Library{
		Name: coreName,
		Doc:  "Fundamental library of the hosted language.",
		Install: func(ns *lisp.Namespace) error {
			install(ns, arithmeticDefs())
			install(ns, predicateDefs())
			install(ns, seqDefs())
			install(ns, mapDefs())
			install(ns, textDefs())
			install(ns, fnDefs())
			return nil
		},
	}
}

func isNumber(v any) bool {
	switch v.(type) {
	case int64, float64:
		return true
	}
	return false
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case int64:
		return float64(x)
	case float64:
		return x
	}
	return math.NaN()
}

func checkNumbers(args []any) error {
	for _, a := range args {
		if !isNumber(a) {
			return castError(a, "number")
		}
	}
	return nil
}

func bothInts(a, b any) (int64, int64, bool) {
	x, ok := a.(int64)
	if !ok {
		return 0, 0, false
	}
	y, ok := b.(int64)
	return x, y, ok
}

func overflow() error {
	return lisp.Errorf(lisp.KindArithmetic, "integer overflow")
}

func add(a, b any) (any, error) {
	if x, y, ok := bothInts(a, b); ok {
		s := x + y
		if (x > 0 && y > 0 && s < 0) || (x < 0 && y < 0 && s >= 0) {
			return nil, overflow()
		}
		return s, nil
	}
	return toFloat(a) + toFloat(b), nil
}

func sub(a, b any) (any, error) {
	if x, y, ok := bothInts(a, b); ok {
		d := x - y
		if (x >= 0 && y < 0 && d < 0) || (x < 0 && y > 0 && d >= 0) {
			return nil, overflow()
		}
		return d, nil
	}
	return toFloat(a) - toFloat(b), nil
}

func mul(a, b any) (any, error) {
	if x, y, ok := bothInts(a, b); ok {
		if x == 0 || y == 0 {
			return int64(0), nil
		}
		p := x * y
		if p/y != x || (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
			return nil, overflow()
		}
		return p, nil
	}
	return toFloat(a) * toFloat(b), nil
}

// divide keeps exact integer quotients as integers and yields a float
// otherwise, so (/ 3 2) is 1.5 and (/ 4 2) is 2.
func divide(a, b any) (any, error) {
	if x, y, ok := bothInts(a, b); ok {
		if y == 0 {
			return nil, lisp.Errorf(lisp.KindArithmetic, "Divide by zero")
		}
		if x == math.MinInt64 && y == -1 {
			return nil, overflow()
		}
		if x%y == 0 {
			return x / y, nil
		}
		return float64(x) / float64(y), nil
	}
	return toFloat(a) / toFloat(b), nil
}

func numCompare(a, b any) int {
	if x, y, ok := bothInts(a, b); ok {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	x, y := toFloat(a), toFloat(b)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func fold(identity any, op func(a, b any) (any, error)) func(context.Context, []any) (any, error) {
	return func(_ context.Context, args []any) (any, error) {
		if err := checkNumbers(args); err != nil {
			return nil, err
		}
		acc := identity
		for _, a := range args {
			var err error
			if acc, err = op(acc, a); err != nil {
				return nil, err
			}
		}
		return acc, nil
	}
}

func compareChain(name string, ok func(c int) bool) func(context.Context, []any) (any, error) {
	return func(_ context.Context, args []any) (any, error) {
		if err := arityRange(core(name), args, 1, -1); err != nil {
			return nil, err
		}
		if err := checkNumbers(args); err != nil {
			return nil, err
		}
		for i := 1; i < len(args); i++ {
			if !ok(numCompare(args[i-1], args[i])) {
				return false, nil
			}
		}
		return true, nil
	}
}

func intOp(name string, op func(x, y int64) int64, fop func(x, y float64) float64) func(context.Context, []any) (any, error) {
	return func(_ context.Context, args []any) (any, error) {
		if err := arity(core(name), args, 2); err != nil {
			return nil, err
		}
		if err := checkNumbers(args); err != nil {
			return nil, err
		}
		if x, y, ok := bothInts(args[0], args[1]); ok {
			if y == 0 {
				return nil, lisp.Errorf(lisp.KindArithmetic, "Divide by zero")
			}
			if name == "quot" && x == math.MinInt64 && y == -1 {
				return nil, overflow()
			}
			return op(x, y), nil
		}
		return fop(toFloat(args[0]), toFloat(args[1])), nil
	}
}

func arithmeticDefs() []fnDef {
	return []fnDef{
		{"+", "Returns the sum of nums. (+) returns 0.", sig("[]", "[x]", "[x y]", "[x y & more]"), fold(int64(0), add)},
		{"*", "Returns the product of nums. (*) returns 1.", sig("[]", "[x]", "[x y]", "[x y & more]"), fold(int64(1), mul)},
		{"-", "If no ys are supplied, returns the negation of x, else subtracts the ys from x and returns the result.", sig("[x]", "[x y]", "[x y & more]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arityRange(core("-"), args, 1, -1); err != nil {
					return nil, err
				}
				if err := checkNumbers(args); err != nil {
					return nil, err
				}
				if len(args) == 1 {
					return sub(int64(0), args[0])
				}
				acc := args[0]
				for _, a := range args[1:] {
					var err error
					if acc, err = sub(acc, a); err != nil {
						return nil, err
					}
				}
				return acc, nil
			}},
		{"/", "If no denominators are supplied, returns 1/numerator, else returns numerator divided by all of the denominators.", sig("[x]", "[x y]", "[x y & more]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arityRange(core("/"), args, 1, -1); err != nil {
					return nil, err
				}
				if err := checkNumbers(args); err != nil {
					return nil, err
				}
				if len(args) == 1 {
					return divide(int64(1), args[0])
				}
				acc := args[0]
				for _, a := range args[1:] {
					var err error
					if acc, err = divide(acc, a); err != nil {
						return nil, err
					}
				}
				return acc, nil
			}},
		{"inc", "Returns a number one greater than num.", sig("[x]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(core("inc"), args, 1); err != nil {
					return nil, err
				}
				if err := checkNumbers(args); err != nil {
					return nil, err
				}
				return add(args[0], int64(1))
			}},
		{"dec", "Returns a number one less than num.", sig("[x]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(core("dec"), args, 1); err != nil {
					return nil, err
				}
				if err := checkNumbers(args); err != nil {
					return nil, err
				}
				return sub(args[0], int64(1))
			}},
		{"quot", "quot[ient] of dividing numerator by denominator.", sig("[num div]"),
			intOp("quot", func(x, y int64) int64 { return x / y }, func(x, y float64) float64 { return math.Trunc(x / y) })},
		{"rem", "remainder of dividing numerator by denominator.", sig("[num div]"),
			intOp("rem", func(x, y int64) int64 { return x % y }, math.Mod)},
		{"mod", "Modulus of num and div. Truncates toward negative infinity.", sig("[num div]"),
			intOp("mod", func(x, y int64) int64 {
				m := x % y
				if m != 0 && (m < 0) != (y < 0) {
					m += y
				}
				return m
			}, func(x, y float64) float64 {
				m := math.Mod(x, y)
				if m != 0 && (m < 0) != (y < 0) {
					m += y
				}
				return m
			})},
		{"max", "Returns the greatest of the nums.", sig("[x]", "[x y]", "[x y & more]"), extreme("max", 1)},
		{"min", "Returns the least of the nums.", sig("[x]", "[x y]", "[x y & more]"), extreme("min", -1)},
		{"==", "Returns non-nil if nums all have the equivalent value (type-independent), otherwise false.", sig("[x]", "[x y]", "[x y & more]"),
			compareChain("==", func(c int) bool { return c == 0 })},
		{"<", "Returns non-nil if nums are in monotonically increasing order, otherwise false.", sig("[x]", "[x y]", "[x y & more]"),
			compareChain("<", func(c int) bool { return c < 0 })},
		{">", "Returns non-nil if nums are in monotonically decreasing order, otherwise false.", sig("[x]", "[x y]", "[x y & more]"),
			compareChain(">", func(c int) bool { return c > 0 })},
		{"<=", "Returns non-nil if nums are in monotonically non-decreasing order, otherwise false.", sig("[x]", "[x y]", "[x y & more]"),
			compareChain("<=", func(c int) bool { return c <= 0 })},
		{">=", "Returns non-nil if nums are in monotonically non-increasing order, otherwise false.", sig("[x]", "[x y]", "[x y & more]"),
			compareChain(">=", func(c int) bool { return c >= 0 })},
		{"=", "Equality. Returns true if x equals y, false if not.", sig("[x]", "[x y]", "[x y & more]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arityRange(core("="), args, 1, -1); err != nil {
					return nil, err
				}
				for _, a := range args[1:] {
					if !lisp.Equal(args[0], a) {
						return false, nil
					}
				}
				return true, nil
			}},
		{"not=", "Same as (not (= obj1 obj2)).", sig("[x]", "[x y]", "[x y & more]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arityRange(core("not="), args, 1, -1); err != nil {
					return nil, err
				}
				for _, a := range args[1:] {
					if !lisp.Equal(args[0], a) {
						return true, nil
					}
				}
				return false, nil
			}},
		{"compare", "Comparator. Returns a negative number, zero, or a positive number when x is logically 'less than', 'equal to', or 'greater than' y.", sig("[x y]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(core("compare"), args, 2); err != nil {
					return nil, err
				}
				c, err := compareValues(args[0], args[1])
				if err != nil {
					return nil, err
				}
				return int64(c), nil
			}},
	}
}

func extreme(name string, want int) func(context.Context, []any) (any, error) {
	return func(_ context.Context, args []any) (any, error) {
		if err := arityRange(core(name), args, 1, -1); err != nil {
			return nil, err
		}
		if err := checkNumbers(args); err != nil {
			return nil, err
		}
		best := args[0]
		for _, a := range args[1:] {
			if numCompare(a, best) == want {
				best = a
			}
		}
		return best, nil
	}
}

// compareValues orders nil before everything, then numbers, strings,
// characters, keywords and symbols among their own kind, and sequences
// element by element.
func compareValues(a, b any) (int, error) {
	switch {
	case a == nil && b == nil:
		return 0, nil
	case a == nil:
		return -1, nil
	case b == nil:
		return 1, nil
	case isNumber(a) && isNumber(b):
		return numCompare(a, b), nil
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return cmpOrdered(x, y), nil
		}
	case lisp.Char:
		if y, ok := b.(lisp.Char); ok {
			return cmpOrdered(x, y), nil
		}
	case lisp.Keyword:
		if y, ok := b.(lisp.Keyword); ok {
			return cmpOrdered(x, y), nil
		}
	case lisp.Symbol:
		if y, ok := b.(lisp.Symbol); ok {
			return cmpOrdered(x.String(), y.String()), nil
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0, nil
			case !x:
				return -1, nil
			}
			return 1, nil
		}
	case lisp.Vector:
		if y, ok := b.(lisp.Vector); ok {
			if len(x) != len(y) {
				return cmpOrdered(len(x), len(y)), nil
			}
			for i := range x {
				c, err := compareValues(x[i], y[i])
				if err != nil || c != 0 {
					return c, err
				}
			}
			return 0, nil
		}
	}
	return 0, lisp.Errorf(lisp.KindClassCast, "%s cannot be compared with %s", lisp.TypeName(a), lisp.TypeName(b))
}

func cmpOrdered[T ~string | ~int | ~int32](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func predicate(name string, test func(v any) bool) func(context.Context, []any) (any, error) {
	return func(_ context.Context, args []any) (any, error) {
		if err := arity(core(name), args, 1); err != nil {
			return nil, err
		}
		return test(args[0]), nil
	}
}

func numPredicate(name string, test func(v any) bool) func(context.Context, []any) (any, error) {
	return func(_ context.Context, args []any) (any, error) {
		if err := arity(core(name), args, 1); err != nil {
			return nil, err
		}
		if err := checkNumbers(args); err != nil {
			return nil, err
		}
		return test(args[0]), nil
	}
}

func intPredicate(name string, test func(n int64) bool) func(context.Context, []any) (any, error) {
	return func(_ context.Context, args []any) (any, error) {
		if err := arity(core(name), args, 1); err != nil {
			return nil, err
		}
		n, err := toInt(args[0])
		if err != nil {
			return nil, lisp.Errorf(lisp.KindIllegalArgument, "Argument must be an integer: %s", lisp.PrStr(args[0]))
		}
		return test(n), nil
	}
}

func predicateDefs() []fnDef {
	return []fnDef{
		{"nil?", "Returns true if x is nil, false otherwise.", sig("[x]"), predicate("nil?", func(v any) bool { return v == nil })},
		{"some?", "Returns true if x is not nil, false otherwise.", sig("[x]"), predicate("some?", func(v any) bool { return v != nil })},
		{"true?", "Returns true if x is the value true, false otherwise.", sig("[x]"), predicate("true?", func(v any) bool { return v == true })},
		{"false?", "Returns true if x is the value false, false otherwise.", sig("[x]"), predicate("false?", func(v any) bool { return v == false })},
		{"not", "Returns true if x is logical false, false otherwise.", sig("[x]"), predicate("not", func(v any) bool { return !lisp.Truthy(v) })},
		{"boolean", "Coerce to boolean.", sig("[x]"), predicate("boolean", lisp.Truthy)},
		{"zero?", "Returns true if num is zero, else false.", sig("[num]"), numPredicate("zero?", func(v any) bool { return toFloat(v) == 0 })},
		{"pos?", "Returns true if num is greater than zero, else false.", sig("[num]"), numPredicate("pos?", func(v any) bool { return toFloat(v) > 0 })},
		{"neg?", "Returns true if num is less than zero, else false.", sig("[num]"), numPredicate("neg?", func(v any) bool { return toFloat(v) < 0 })},
		{"even?", "Returns true if n is even, throws an exception if n is not an integer.", sig("[n]"), intPredicate("even?", func(n int64) bool { return n%2 == 0 })},
		{"odd?", "Returns true if n is odd, throws an exception if n is not an integer.", sig("[n]"), intPredicate("odd?", func(n int64) bool { return n%2 != 0 })},
		{"number?", "Returns true if x is a number.", sig("[x]"), predicate("number?", isNumber)},
		{"string?", "Return true if x is a string.", sig("[x]"), predicate("string?", func(v any) bool { _, ok := v.(string); return ok })},
		{"keyword?", "Return true if x is a keyword.", sig("[x]"), predicate("keyword?", func(v any) bool { _, ok := v.(lisp.Keyword); return ok })},
		{"symbol?", "Return true if x is a symbol.", sig("[x]"), predicate("symbol?", func(v any) bool { _, ok := v.(lisp.Symbol); return ok })},
		{"fn?", "Returns true if x is a function.", sig("[x]"), predicate("fn?", func(v any) bool {
			switch v.(type) {
			case *lisp.Var:
				return false
			case lisp.Fn:
				return true
			}
			return false
		})},
		{"coll?", "Returns true if x is a collection.", sig("[x]"), predicate("coll?", func(v any) bool {
			switch v.(type) {
			case lisp.List, lisp.Vector, *lisp.Map:
				return true
			}
			return false
		})},
		{"seq?", "Return true if x is a sequence.", sig("[x]"), predicate("seq?", func(v any) bool { _, ok := v.(lisp.List); return ok })},
		{"vector?", "Return true if x is a vector.", sig("[x]"), predicate("vector?", func(v any) bool { _, ok := v.(lisp.Vector); return ok })},
		{"map?", "Return true if x is a map.", sig("[x]"), predicate("map?", func(v any) bool { _, ok := v.(*lisp.Map); return ok })},
		{"regex?", "Return true if x is a compiled pattern.", sig("[x]"), predicate("regex?", func(v any) bool { _, ok := v.(*regexp.Regexp); return ok })},
		{"empty?", "Returns true if coll has no items.", sig("[coll]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(core("empty?"), args, 1); err != nil {
					return nil, err
				}
				items, err := lisp.Seq(args[0])
				if err != nil {
					return nil, err
				}
				return len(items) == 0, nil
			}},
		{"identity", "Returns its argument.", sig("[x]"),
			func(_ context.Context, args []any) (any, error) {
				if err := arity(core("identity"), args, 1); err != nil {
					return nil, err
				}
				return args[0], nil
			}},
	}
}
