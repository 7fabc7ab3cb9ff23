package code

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jonwraymond/hostcall/lisp"
)

// Session is the per-execution environment handed to an Engine. It
// observes named calls, enforcing the call limit, and captures output.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: BeforeCall returns an error wrapping ErrLimitExceeded once the limit is reached.
// - Ownership: Calls returns a caller-owned snapshot.
type Session interface {
	lisp.CallObserver
	io.Writer

	// Calls returns the calls recorded so far, in start order.
	Calls() []CallRecord

	// Stdout returns the output captured so far.
	Stdout() string
}

// session is the Session used by DefaultExecutor.
type session struct {
	mu       sync.Mutex
	maxCalls int
	count    int
	calls    []CallRecord
	open     []int
	stdout   bytes.Buffer
	logger   Logger
}

// newSession creates a session allowing maxCalls calls; 0 means unlimited.
func newSession(maxCalls int, logger Logger) *session {
	return &session{maxCalls: maxCalls, logger: logger}
}

func (s *session) BeforeCall(_ context.Context, name string, args []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxCalls > 0 && s.count >= s.maxCalls {
		return fmt.Errorf("%w: max calls (%d) exceeded calling %s", ErrLimitExceeded, s.maxCalls, name)
	}
	s.count++
	s.calls = append(s.calls, CallRecord{
		Symbol: name,
		Args:   printAll(args),
		Depth:  len(s.open),
	})
	s.open = append(s.open, len(s.calls)-1)
	return nil
}

func (s *session) AfterCall(_ context.Context, name string, _ []any, result any, err error, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.open) == 0 {
		return
	}
	i := s.open[len(s.open)-1]
	s.open = s.open[:len(s.open)-1]

	rec := &s.calls[i]
	rec.DurationMs = elapsed.Milliseconds()
	if err != nil {
		rec.Error = err.Error()
	} else {
		rec.Result = lisp.PrStr(result)
	}
	if s.logger != nil {
		s.logger.Logf("call %s -> %s %s", name, rec.Result, rec.Error)
	}
}

func (s *session) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stdout.Write(p)
}

func (s *session) Calls() []CallRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CallRecord, len(s.calls))
	for i, c := range s.calls {
		c.Args = append([]string(nil), c.Args...)
		out[i] = c
	}
	return out
}

func (s *session) Stdout() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stdout.String()
}

func printAll(args []any) []string {
	if len(args) == 0 {
		return nil
	}
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = lisp.PrStr(a)
	}
	return out
}
