package lisp

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var charNames = map[Char]string{
	' ':  "space",
	'\n': "newline",
	'\t': "tab",
	'\r': "return",
	'\b': "backspace",
	'\f': "formfeed",
}

// PrStr prints v readably, so that reading the result yields an equal value
// for data types.
func PrStr(v any) string {
	var b strings.Builder
	writeValue(&b, v, true)
	return b.String()
}

// Str prints v for display: strings and characters appear raw and nil
// prints as the empty string.
func Str(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case Char:
		return string(rune(x))
	}
	var b strings.Builder
	writeValue(&b, v, false)
	return b.String()
}

func writeValue(b *strings.Builder, v any, readable bool) {
	switch x := v.(type) {
	case nil:
		b.WriteString("nil")
	case bool:
		b.WriteString(strconv.FormatBool(x))
	case int64:
		b.WriteString(strconv.FormatInt(x, 10))
	case float64:
		b.WriteString(formatFloat(x))
	case string:
		if readable {
			writeQuoted(b, x)
		} else {
			b.WriteString(x)
		}
	case Char:
		if !readable {
			b.WriteRune(rune(x))
			return
		}
		b.WriteByte('\\')
		if name, ok := charNames[x]; ok {
			b.WriteString(name)
		} else {
			b.WriteRune(rune(x))
		}
	case Keyword:
		b.WriteByte(':')
		b.WriteString(string(x))
	case Symbol:
		b.WriteString(x.String())
	case List:
		writeSeq(b, "(", ")", x, readable)
	case Vector:
		writeSeq(b, "[", "]", x, readable)
	case *Map:
		b.WriteByte('{')
		for i, k := range x.Keys() {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, k, readable)
			b.WriteByte(' ')
			writeValue(b, x.vals[i], readable)
		}
		b.WriteByte('}')
	case *regexp.Regexp:
		b.WriteString(`#"`)
		b.WriteString(x.String())
		b.WriteByte('"')
	case *Var:
		b.WriteString("#'")
		b.WriteString(x.Symbol().String())
	case *Closure:
		b.WriteString("#function[")
		b.WriteString(x.qualifiedName())
		b.WriteByte(']')
	case Fn:
		b.WriteString("#function")
	default:
		fmt.Fprintf(b, "#object[%T %v]", v, v)
	}
}

func writeSeq(b *strings.Builder, open, close string, items []any, readable bool) {
	b.WriteString(open)
	for i, item := range items {
		if i > 0 {
			b.WriteByte(' ')
		}
		writeValue(b, item, readable)
	}
	b.WriteString(close)
}

func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "##NaN"
	case math.IsInf(f, 1):
		return "##Inf"
	case math.IsInf(f, -1):
		return "##-Inf"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e16 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
