package code

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jonwraymond/hostcall/lisp"
)

func TestSentinels_Distinct(t *testing.T) {
	sentinels := []error{ErrCodeExecution, ErrConfiguration, ErrLimitExceeded}
	for i, a := range sentinels {
		wrapped := fmt.Errorf("eval: %w", a)
		for j, b := range sentinels {
			if got := errors.Is(wrapped, b); got != (i == j) {
				t.Errorf("errors.Is(%v, %v) = %v", wrapped, b, got)
			}
		}
	}
}

func TestCodeError_Message(t *testing.T) {
	tests := []struct {
		err  CodeError
		want string
	}{
		{CodeError{Message: "Unmatched delimiter: )", Line: 4, Column: 12}, "Unmatched delimiter: ) (line 4, col 12)"},
		{CodeError{Message: "EOF while reading", Line: 1}, "EOF while reading (line 1, col 0)"},
		{CodeError{Message: "Divide by zero"}, "Divide by zero"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestCodeError_Chain(t *testing.T) {
	hosted := lisp.Errorf(lisp.KindClassCast, "String cannot be cast to Number")
	err := fmt.Errorf("snippet: %w", &CodeError{Message: hosted.Error(), Err: hosted})

	var ce *CodeError
	if !errors.As(err, &ce) {
		t.Fatal("errors.As did not find *CodeError")
	}
	if errors.Unwrap(ce) != hosted {
		t.Errorf("Unwrap() = %v, want hosted error", errors.Unwrap(ce))
	}
	if !errors.Is(err, ErrCodeExecution) {
		t.Error("CodeError should match ErrCodeExecution")
	}
	if !lisp.IsKind(err, lisp.KindClassCast) {
		t.Error("hosted error kind lost through CodeError")
	}
	if errors.Is(err, ErrConfiguration) || errors.Is(err, ErrLimitExceeded) {
		t.Error("CodeError matched an unrelated sentinel")
	}
}

func TestCodeError_Classify(t *testing.T) {
	readErr := &lisp.ReadError{Line: 2, Column: 7, Msg: "EOF while reading"}
	got := codeError(readErr)
	var ce *CodeError
	if !errors.As(got, &ce) {
		t.Fatalf("codeError(ReadError) = %T, want *CodeError", got)
	}
	if ce.Line != 2 || ce.Column != 7 || ce.Message != "EOF while reading" {
		t.Errorf("CodeError = %+v", ce)
	}
	if again := codeError(got); again != got {
		t.Error("codeError re-wrapped a CodeError")
	}

	overflow := lisp.Errorf(lisp.KindStackOverflow, "call depth exceeded")
	if got := codeError(overflow); !errors.Is(got, ErrLimitExceeded) || !lisp.IsKind(got, lisp.KindStackOverflow) {
		t.Errorf("codeError(StackOverflowError) = %v, want ErrLimitExceeded", got)
	}

	hosted := lisp.Errorf(lisp.KindArithmetic, "Divide by zero")
	got = codeError(hosted)
	if !errors.Is(got, ErrCodeExecution) || !lisp.IsKind(got, lisp.KindArithmetic) {
		t.Errorf("codeError(hosted) = %v, want CodeError wrapping ArithmeticException", got)
	}

	for _, err := range []error{
		fmt.Errorf("%w: max calls", ErrLimitExceeded),
		context.Canceled,
		context.DeadlineExceeded,
	} {
		if got := codeError(err); got != err {
			t.Errorf("codeError(%v) = %v, want unchanged", err, got)
		}
	}
	if codeError(nil) != nil {
		t.Error("codeError(nil) != nil")
	}
}
