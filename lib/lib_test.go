package lib

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/jonwraymond/hostcall/lisp"
)

func newUser(t *testing.T) (*lisp.Runtime, *lisp.Namespace) {
	t.Helper()
	rt := NewRuntime()
	ns, err := rt.Ensure(context.Background(), "user")
	if err != nil {
		t.Fatalf("Ensure(user) error = %v", err)
	}
	return rt, ns
}

// evalTable evaluates each source in one namespace and compares printed
// results. A non-empty setup is evaluated first and must declare namespace t.
func evalTable(t *testing.T, setup string, tests []struct {
	src  string
	want string
}) {
	t.Helper()
	rt, ns := newUser(t)
	if setup != "" {
		if _, err := rt.EvalString(context.Background(), ns, setup); err != nil {
			t.Fatalf("setup error = %v", err)
		}
		var ok bool
		if ns, ok = rt.Namespace("t"); !ok {
			t.Fatal("setup did not declare namespace t")
		}
	}
	for _, tt := range tests {
		got, err := rt.EvalString(context.Background(), ns, tt.src)
		if err != nil {
			t.Errorf("%s error = %v", tt.src, err)
			continue
		}
		if s := lisp.PrStr(got); s != tt.want {
			t.Errorf("%s = %s, want %s", tt.src, s, tt.want)
		}
	}
}

func TestCore_Arithmetic(t *testing.T) {
	evalTable(t, "", []struct {
		src  string
		want string
	}{
		{"(+ 3 2)", "5"},
		{"(+)", "0"},
		{"(+ 1 2.5)", "3.5"},
		{"(/ 3 2)", "1.5"},
		{"(/ 4 2)", "2"},
		{"(/ 2)", "0.5"},
		{"(/ 1.0 0)", "##Inf"},
		{"(- 5)", "-5"},
		{"(- 10 1 2)", "7"},
		{"(* 2 3 4)", "24"},
		{"(inc 2)", "3"},
		{"(dec 2.5)", "1.5"},
		{"(quot 7 2)", "3"},
		{"(rem -7 2)", "-1"},
		{"(mod -7 2)", "1"},
		{"(+ 9223372036854775806 1)", "9223372036854775807"},
		{"(- -9223372036854775807 1)", "-9223372036854775808"},
		{"(* -4611686018427387904 2)", "-9223372036854775808"},
		{"(* 0 -9223372036854775808)", "0"},
		{"(- 9223372036854775807)", "-9223372036854775807"},
		{"(rem -9223372036854775808 -1)", "0"},
		{"(max 1 5 3)", "5"},
		{"(min 4 -1 3)", "-1"},
		{"(< 1 2 3)", "true"},
		{"(< 1 3 2)", "false"},
		{"(>= 3 3 1)", "true"},
		{"(= 1 1.0)", "false"},
		{"(== 1 1.0)", "true"},
		{"(= [1 2] '(1 2))", "true"},
		{"(not= 1 2)", "true"},
		{"(compare \"a\" \"b\")", "-1"},
	})
}

func TestCore_Errors(t *testing.T) {
	rt, ns := newUser(t)
	tests := []struct {
		src  string
		kind string
	}{
		{"(/ 1 0)", lisp.KindArithmetic},
		{"(+ 9223372036854775807 1)", lisp.KindArithmetic},
		{"(+ 1 2 9223372036854775807)", lisp.KindArithmetic},
		{"(- -9223372036854775807 2)", lisp.KindArithmetic},
		{"(- -9223372036854775808)", lisp.KindArithmetic},
		{"(* 9223372036854775807 2)", lisp.KindArithmetic},
		{"(* -9223372036854775808 -1)", lisp.KindArithmetic},
		{"(inc 9223372036854775807)", lisp.KindArithmetic},
		{"(dec -9223372036854775808)", lisp.KindArithmetic},
		{"(quot -9223372036854775808 -1)", lisp.KindArithmetic},
		{"(/ -9223372036854775808 -1)", lisp.KindArithmetic},
		{"(inc)", lisp.KindArity},
		{`(inc "a")`, lisp.KindClassCast},
		{"(nth [1 2] 5)", lisp.KindIndexOutOfRange},
		{"(even? 1.5)", lisp.KindIllegalArgument},
		{"(hash-map :a)", lisp.KindIllegalArgument},
		{"(first 1)", lisp.KindIllegalArgument},
		{`(read-string "(1")`, lisp.KindIllegalArgument},
	}
	for _, tt := range tests {
		_, err := rt.EvalString(context.Background(), ns, tt.src)
		if !lisp.IsKind(err, tt.kind) {
			t.Errorf("%s error = %v, want %s", tt.src, err, tt.kind)
		}
	}
}

func TestCore_Sequences(t *testing.T) {
	evalTable(t, "", []struct {
		src  string
		want string
	}{
		{"(list* 1 2 [3 4])", "(1 2 3 4)"},
		{`(list* "a" "b" "xy")`, `("a" "b" \x \y)`},
		{"(list* nil)", "nil"},
		{"(cons 0 [1])", "(0 1)"},
		{"(first [])", "nil"},
		{"(rest [1])", "()"},
		{"(next [1])", "nil"},
		{"(second '(1 2))", "2"},
		{"(last [1 2 3])", "3"},
		{"(nth [1 2] 5 :none)", ":none"},
		{`(count "héllo")`, "5"},
		{"(count {:a 1})", "1"},
		{"(seq [])", "nil"},
		{`(seq "ab")`, `(\a \b)`},
		{"(conj [1] 2 3)", "[1 2 3]"},
		{"(conj '(1) 2 3)", "(3 2 1)"},
		{"(conj {:a 1} [:b 2])", "{:a 1, :b 2}"},
		{"(concat [1] '(2) nil)", "(1 2)"},
		{"(reverse [1 2 3])", "(3 2 1)"},
		{"(range 3)", "(0 1 2)"},
		{"(range 5 0 -2)", "(5 3 1)"},
		{"(take 2 [1 2 3])", "(1 2)"},
		{"(drop 5 [1 2 3])", "()"},
		{"(map inc [1 2 3])", "(2 3 4)"},
		{"(map + [1 2] [10 20 30])", "(11 22)"},
		{"(filter even? (range 6))", "(0 2 4)"},
		{"(remove even? (range 6))", "(1 3 5)"},
		{"(reduce + [1 2 3])", "6"},
		{"(reduce + 10 [])", "10"},
		{"(reduce + [])", "0"},
		{"(apply + 1 2 [3 4])", "10"},
		{"(some even? [1 3 4])", "true"},
		{"(some even? [1 3])", "nil"},
		{"(every? odd? [1 3])", "true"},
		{"(into [] '(1 2))", "[1 2]"},
		{"(into {} [[:a 1]])", "{:a 1}"},
		{"(sort [3 1 2])", "(1 2 3)"},
		{"(sort > [3 1 2])", "(3 2 1)"},
		{`(sort ["b" "a"])`, `("a" "b")`},
		{"(distinct [1 2 1 3 2])", "(1 2 3)"},
		{"(frequencies [:a :b :a])", "{:a 2, :b 1}"},
		{"(empty? [])", "true"},
		{"(empty? nil)", "true"},
	})
}

func TestCore_MapsAndText(t *testing.T) {
	evalTable(t, "", []struct {
		src  string
		want string
	}{
		{"(get {:a 1} :a)", "1"},
		{"(get {:a 1} :b 0)", "0"},
		{"(get [5 6] 1)", "6"},
		{"(assoc nil :a 1)", "{:a 1}"},
		{"(assoc [1 2] 2 3)", "[1 2 3]"},
		{"(dissoc {:a 1 :b 2} :a)", "{:b 2}"},
		{"(keys {:a 1 :b 2})", "(:a :b)"},
		{"(vals {:a 1 :b 2})", "(1 2)"},
		{"(contains? {:a nil} :a)", "true"},
		{"(contains? [1] 3)", "false"},
		{"(merge {:a 1} {:a 2 :b 3})", "{:a 2, :b 3}"},
		{`(str "a" 1 nil :k)`, `"a1:k"`},
		{`(subs "hello" 1 3)`, `"el"`},
		{"(name :foo)", `"foo"`},
		{`(keyword "k")`, ":k"},
		{`(symbol "a/b")`, "a/b"},
		{`(pr-str "a" 1)`, `"\"a\" 1"`},
		{`(read-string "(1 2)")`, "(1 2)"},
		{`(re-find #"\d+" "ab12c")`, `"12"`},
		{`(re-find #"(a)(b)" "xab")`, `["ab" "a" "b"]`},
		{`(re-matches #"\d+" "12a")`, "nil"},
		{`(re-seq #"\d" "a1b2")`, `("1" "2")`},
		{"((comp inc inc) 1)", "3"},
		{"((partial + 10) 1 2)", "13"},
		{"((complement even?) 1)", "true"},
		{"((constantly 7) 1 2)", "7"},
		{"(nil? nil)", "true"},
		{"(fn? inc)", "true"},
		{"(coll? [1])", "true"},
		{"(string? \"s\")", "true"},
	})
}

func TestCore_Print(t *testing.T) {
	rt, ns := newUser(t)
	var buf bytes.Buffer
	ctx := lisp.WithOutput(context.Background(), &buf)
	if _, err := rt.EvalString(ctx, ns, `(print "a" 1) (println "b") (prn "c" :d)`); err != nil {
		t.Fatalf("EvalString() error = %v", err)
	}
	if got, want := buf.String(), "a 1b\n\"c\" :d\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestString(t *testing.T) {
	evalTable(t, `(ns t (:require [clojure.string :as s]))`, []struct {
		src  string
		want string
	}{
		{`(s/join ":" [1 2 3])`, `"1:2:3"`},
		{`(s/join [1 2])`, `"12"`},
		{`(s/split "a,b,,c,," #",")`, `["a" "b" "" "c"]`},
		{`(s/split "a b c" #" " 2)`, `["a" "b c"]`},
		{`(s/upper-case "héllo")`, `"HÉLLO"`},
		{`(s/lower-case "ÀB")`, `"àb"`},
		{`(s/capitalize "hELLO")`, `"Hello"`},
		{`(s/trim "  x ")`, `"x"`},
		{`(s/blank? " \n")`, "true"},
		{`(s/blank? nil)`, "true"},
		{`(s/replace "a-b-c" "-" "+")`, `"a+b+c"`},
		{`(s/replace "a1b22" #"\d+" "#")`, `"a#b#"`},
		{`(s/starts-with? "hello" "he")`, "true"},
		{`(s/ends-with? "hello" "lo")`, "true"},
		{`(s/includes? "hello" "ell")`, "true"},
		{`(s/reverse "abc")`, `"cba"`},
	})
}

func TestStrUtils(t *testing.T) {
	evalTable(t, `(ns t (:use clojure.contrib.str-utils))`, []struct {
		src  string
		want string
	}{
		{`(str-join ":" [1 2 3])`, `"1:2:3"`},
		{`(str-join ", " '("a" "b"))`, `"a, b"`},
		{`(re-split #"\s+" "a  b c")`, `("a" "b" "c")`},
		{`(re-gsub #"o" "0" "foo boo")`, `"f00 b00"`},
		{`(re-sub #"o" "0" "foo")`, `"f0o"`},
		{`(re-gsub #"(\w)(\d)" "$2$1" "a1 b2")`, `"1a 2b"`},
		{`(re-gsub #"\d" (fn [m] (str "<" m ">")) "a1b2")`, `"a<1>b<2>"`},
		{`(chop "abc")`, `"ab"`},
		{`(chop "")`, `""`},
		{"(chomp \"line\\r\\n\")", `"line"`},
	})
}

func TestSeqUtilsSource(t *testing.T) {
	evalTable(t, `(ns t (:require [clojure.contrib.seq-utils :as su]))`, []struct {
		src  string
		want string
	}{
		{`(su/indexed [:a :b])`, "([0 :a] [1 :b])"},
		{`(su/separate even? [1 2 3 4])`, "[(2 4) (1 3)]"},
		{`(su/includes? [1 2 3] 2)`, "true"},
		{`(su/includes? [1 2 3] 9)`, "false"},
		{`(su/frequencies-by even? [1 2 3])`, "{false 2, true 1}"},
		{`(su/rotations [1 2 3])`, "((1 2 3) (2 3 1) (3 1 2))"},
	})
}

func TestSeqUtilsDocs(t *testing.T) {
	rt := NewRuntime()
	ns, err := rt.Require(context.Background(), "clojure.contrib.seq-utils")
	if err != nil {
		t.Fatalf("Require() error = %v", err)
	}
	v, ok := ns.Public("indexed")
	if !ok {
		t.Fatal("indexed not public")
	}
	if v.Doc == "" || len(v.Arglists) != 1 || v.Arglists[0] != "[s]" {
		t.Errorf("indexed metadata = %q %v", v.Doc, v.Arglists)
	}
}

func TestNewRuntime_UnknownNamespace(t *testing.T) {
	rt := NewRuntime()
	if _, err := rt.Require(context.Background(), "clojure.contrib.nope"); !errors.Is(err, lisp.ErrNamespaceNotFound) {
		t.Errorf("Require() error = %v, want ErrNamespaceNotFound", err)
	}
}
