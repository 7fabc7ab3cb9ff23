package code

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/hostcall/lisp"
)

// Sentinel errors for error classification.
var (
	// ErrCodeExecution indicates an error during code snippet execution,
	// such as read errors or exceptions raised by the snippet.
	ErrCodeExecution = errors.New("code execution error")

	// ErrConfiguration indicates an invalid or incomplete configuration.
	ErrConfiguration = errors.New("configuration error")

	// ErrLimitExceeded indicates that an execution limit was reached,
	// such as timeout or maximum function calls.
	ErrLimitExceeded = errors.New("limit exceeded")
)

// CodeError represents an error that occurred during code snippet execution.
// It includes optional source location information for debugging.
type CodeError struct {
	// Message describes the error.
	Message string

	// Line is the 1-based line number where the error occurred.
	// Zero indicates the line is unknown.
	Line int

	// Column is the 1-based column number where the error occurred.
	// Zero indicates the column is unknown.
	Column int

	// Err is the underlying error, if any.
	Err error
}

// Error returns the error message, including line and column if available.
func (e *CodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d, col %d)", e.Message, e.Line, e.Column)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *CodeError) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches the target.
// CodeError matches ErrCodeExecution to allow sentinel-style error checking.
func (e *CodeError) Is(target error) bool {
	return target == ErrCodeExecution
}

// codeError classifies an evaluation error. Limit and context errors pass
// through, runaway recursion becomes a limit error, and read errors keep
// their position.
func codeError(err error) error {
	if err == nil ||
		errors.Is(err, ErrLimitExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var ce *CodeError
	if errors.As(err, &ce) {
		return err
	}
	if lisp.IsKind(err, lisp.KindStackOverflow) {
		return fmt.Errorf("%w: %w", ErrLimitExceeded, err)
	}
	var re *lisp.ReadError
	if errors.As(err, &re) {
		return &CodeError{Message: re.Msg, Line: re.Line, Column: re.Column, Err: err}
	}
	return &CodeError{Message: err.Error(), Err: err}
}
