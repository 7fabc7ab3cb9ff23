package lisp

import (
	"errors"
	"regexp"
	"strings"
	"testing"
)

func TestReadString_Atoms(t *testing.T) {
	tests := []struct {
		src  string
		want any
	}{
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"+3", int64(3)},
		{"1.5", 1.5},
		{"1e3", 1000.0},
		{`"a\nb"`, "a\nb"},
		{`"é"`, "é"},
		{`\a`, Char('a')},
		{`\space`, Char(' ')},
		{`\newline`, Char('\n')},
		{`\(`, Char('(')},
		{":kw", Keyword("kw")},
		{"nil", nil},
		{"true", true},
		{"false", false},
		{"list*", Symbol{Name: "list*"}},
		{"clojure.core/inc", Symbol{NS: "clojure.core", Name: "inc"}},
		{"clojure.core//", Symbol{NS: "clojure.core", Name: "/"}},
		{"/", Symbol{Name: "/"}},
		{"-", Symbol{Name: "-"}},
	}
	for _, tt := range tests {
		got, err := ReadString(tt.src)
		if err != nil {
			t.Fatalf("ReadString(%q) error = %v", tt.src, err)
		}
		if !Equal(got, tt.want) {
			t.Errorf("ReadString(%q) = %#v, want %#v", tt.src, got, tt.want)
		}
	}
}

func TestReadString_Collections(t *testing.T) {
	got, err := ReadString(`(1 [2 3] {:a "b"}, 'x) ; trailing comment`)
	if err != nil {
		t.Fatalf("ReadString() error = %v", err)
	}
	want := List{
		int64(1),
		Vector{int64(2), int64(3)},
		MapOf(Keyword("a"), "b"),
		List{Symbol{Name: "quote"}, Symbol{Name: "x"}},
	}
	if !Equal(got, want) {
		t.Errorf("ReadString() = %s, want %s", PrStr(got), PrStr(want))
	}
}

func TestReadString_Regex(t *testing.T) {
	got, err := ReadString(`#"a\d+"`)
	if err != nil {
		t.Fatalf("ReadString() error = %v", err)
	}
	re, ok := got.(*regexp.Regexp)
	if !ok {
		t.Fatalf("ReadString() = %T, want *regexp.Regexp", got)
	}
	if !re.MatchString("a42") {
		t.Errorf("regex %s does not match a42", re)
	}
}

func TestReadString_Errors(t *testing.T) {
	tests := []struct {
		src  string
		line int
		col  int
	}{
		{"", 1, 1},
		{"(1 2", 1, 1},
		{"\n  )", 2, 3},
		{"{:a}", 1, 1},
		{`"open`, 1, 1},
		{"12abc", 1, 1},
		{"#{1}", 1, 1},
	}
	for _, tt := range tests {
		_, err := ReadString(tt.src)
		var rerr *ReadError
		if !errors.As(err, &rerr) {
			t.Fatalf("ReadString(%q) error = %v, want *ReadError", tt.src, err)
		}
		if rerr.Line != tt.line || rerr.Column != tt.col {
			t.Errorf("ReadString(%q) position = %d:%d, want %d:%d", tt.src, rerr.Line, rerr.Column, tt.line, tt.col)
		}
	}
}

func TestReadString_Nesting(t *testing.T) {
	ok := strings.Repeat("[", 100) + strings.Repeat("]", 100)
	if _, err := ReadString(ok); err != nil {
		t.Errorf("ReadString(100 levels) error = %v", err)
	}

	deep := strings.Repeat("(", MaxReadDepth+1)
	_, err := ReadString(deep)
	var rerr *ReadError
	if !errors.As(err, &rerr) || !strings.Contains(rerr.Msg, "nested deeper") {
		t.Errorf("ReadString(too deep) error = %v, want nesting ReadError", err)
	}

	quoted := strings.Repeat("'", MaxReadDepth+1) + "x"
	if _, err := ReadString(quoted); !errors.As(err, &rerr) {
		t.Errorf("ReadString(deep quotes) error = %v, want *ReadError", err)
	}
}

func TestReadAll(t *testing.T) {
	forms, err := ReadAll("(def a 1)\n; comment\n(inc a)  ")
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(forms) != 2 {
		t.Fatalf("ReadAll() returned %d forms, want 2", len(forms))
	}
}

func TestPrinter(t *testing.T) {
	tests := []struct {
		v   any
		pr  string
		str string
	}{
		{nil, "nil", ""},
		{int64(5), "5", "5"},
		{1.5, "1.5", "1.5"},
		{2.0, "2.0", "2.0"},
		{"a\"b", `"a\"b"`, `a"b`},
		{Char('x'), `\x`, "x"},
		{Char(' '), `\space`, " "},
		{Keyword("k"), ":k", ":k"},
		{List{int64(1), "a"}, `(1 "a")`, `(1 a)`},
		{Vector{}, "[]", "[]"},
		{MapOf(Keyword("a"), int64(1), Keyword("b"), int64(2)), "{:a 1, :b 2}", "{:a 1, :b 2}"},
	}
	for _, tt := range tests {
		if got := PrStr(tt.v); got != tt.pr {
			t.Errorf("PrStr(%#v) = %q, want %q", tt.v, got, tt.pr)
		}
		if got := Str(tt.v); got != tt.str {
			t.Errorf("Str(%#v) = %q, want %q", tt.v, got, tt.str)
		}
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b any
		want bool
	}{
		{List{int64(1)}, Vector{int64(1)}, true},
		{int64(1), 1.0, false},
		{"a", "a", true},
		{nil, false, false},
		{MapOf("a", int64(1), "b", int64(2)), MapOf("b", int64(2), "a", int64(1)), true},
		{Func(nil), Func(nil), false},
	}
	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%s, %s) = %v, want %v", PrStr(tt.a), PrStr(tt.b), got, tt.want)
		}
	}
}
