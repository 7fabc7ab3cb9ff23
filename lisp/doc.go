// Package lisp implements the hosted runtime that hostcall invokes into: a
// small Clojure dialect with a reader, printer, evaluator and namespace
// registry.
//
// Values are plain Go values where possible: nil, bool, int64, float64 and
// string, plus the named types Char, Keyword, Symbol, List, Vector and *Map,
// compiled *regexp.Regexp patterns, and functions implementing Fn.
//
// A Runtime loads namespaces on demand through Require. Native libraries
// (Go code installing vars into a Namespace) are consulted first, then
// embedded source filesystems, then source directories on disk, where the
// namespace a.b-c lives in a/b_c.clj.
//
// Evaluation honours context cancellation. A CallObserver attached with
// WithObserver sees every named call and may veto it; WithOutput redirects
// the print functions.
package lisp
