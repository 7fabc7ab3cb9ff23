package lisp

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
)

// FromGo converts a Go value into its hosted representation: integers
// become int64 (unsigned values past math.MaxInt64 become float64), floats
// float64, slices and arrays vectors, and maps hosted maps. Values that are already hosted pass through untouched, as do Go
// values with no hosted counterpart.
func FromGo(v any) any {
	switch x := v.(type) {
	case nil, bool, int64, float64, string, Char, Keyword, Symbol, List, Vector, *Map, *regexp.Regexp, *Var:
		return v
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return fromUint(uint64(x))
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return fromUint(x)
	case float32:
		return float64(x)
	case Fn:
		return v
	case []any:
		out := make(Vector, len(x))
		for i, item := range x {
			out[i] = FromGo(item)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := &Map{}
		for _, k := range keys {
			m = m.Assoc(k, FromGo(x[k]))
		}
		return m
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make(Vector, rv.Len())
		for i := range out {
			out[i] = FromGo(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		m := &Map{}
		for _, k := range keys {
			m = m.Assoc(FromGo(k.Interface()), FromGo(rv.MapIndex(k).Interface()))
		}
		return m
	case reflect.String:
		return rv.String()
	}
	return v
}

// fromUint keeps unsigned values that fit int64 exact and widens the rest
// to float64 rather than wrapping them negative.
func fromUint(x uint64) any {
	if x > math.MaxInt64 {
		return float64(x)
	}
	return int64(x)
}

// FromGoArgs converts each argument with FromGo.
func FromGoArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = FromGo(a)
	}
	return out
}

// ToGo converts a hosted value into plain Go data suitable for encoding:
// sequences become []any, maps map[string]any keyed by their display form,
// and characters, keywords and symbols become strings.
func ToGo(v any) any {
	switch x := v.(type) {
	case List:
		return toGoSlice(x)
	case Vector:
		return toGoSlice(x)
	case *Map:
		out := make(map[string]any, x.Len())
		for i, k := range x.Keys() {
			key := Str(k)
			if kw, ok := k.(Keyword); ok {
				key = string(kw)
			}
			out[key] = ToGo(x.vals[i])
		}
		return out
	case Char:
		return string(rune(x))
	case Keyword:
		return ":" + string(x)
	case Symbol:
		return x.String()
	case *regexp.Regexp:
		return x.String()
	case nil, bool, int64, float64, string:
		return v
	}
	return PrStr(v)
}

func toGoSlice(items []any) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = ToGo(item)
	}
	return out
}
