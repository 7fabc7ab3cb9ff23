package lisp

import (
	"errors"
	"fmt"
)

// Runtime errors.
var (
	// ErrNamespaceNotFound is returned by Require when no library, embedded
	// source or source path provides the namespace.
	ErrNamespaceNotFound = errors.New("namespace not found")

	// ErrCyclicLoad is returned when namespaces require each other.
	ErrCyclicLoad = errors.New("cyclic namespace load")
)

// Exception kinds raised by hosted code.
const (
	KindArity           = "ArityException"
	KindClassCast       = "ClassCastException"
	KindArithmetic      = "ArithmeticException"
	KindIllegalArgument = "IllegalArgumentException"
	KindIndexOutOfRange = "IndexOutOfBoundsException"
	KindCompiler        = "CompilerException"
	KindStackOverflow   = "StackOverflowError"
)

// Error is an exception raised while evaluating hosted code. It crosses
// the invoker boundary unchanged.
type Error struct {
	Kind string
	Msg  string
	Err  error
}

// Errorf builds an *Error of the given kind.
func Errorf(kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return e.Kind + ": " + e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ArityError reports a call with the wrong number of arguments.
func ArityError(name string, got int) *Error {
	return Errorf(KindArity, "Wrong number of args (%d) passed to: %s", got, name)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind string) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// ReadError reports malformed source text.
type ReadError struct {
	Line   int
	Column int
	Msg    string
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
