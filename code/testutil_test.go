package code

import (
	"context"
	"sync"
	"testing"

	"github.com/jonwraymond/hostcall/lib"
	"github.com/jonwraymond/hostcall/lisp"
)

// mockEngine implements Engine for testing.
type mockEngine struct {
	mu sync.Mutex

	// Configurable returns
	executeResult ExecuteResult
	executeErr    error
	executeFn     func(ctx context.Context, params ExecuteParams, session Session) (ExecuteResult, error)

	// Call tracking
	params []ExecuteParams
}

func (m *mockEngine) Execute(ctx context.Context, params ExecuteParams, session Session) (ExecuteResult, error) {
	m.mu.Lock()
	m.params = append(m.params, params)
	m.mu.Unlock()
	if m.executeFn != nil {
		return m.executeFn(ctx, params, session)
	}
	return m.executeResult, m.executeErr
}

func (m *mockEngine) lastParams() ExecuteParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.params[len(m.params)-1]
}

// recordingLogger implements Logger for testing.
type recordingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *recordingLogger) Logf(format string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, format)
}

func newHostedExecutor(t *testing.T, cfg Config) *DefaultExecutor {
	t.Helper()
	if cfg.Runtime == nil {
		cfg.Runtime = lib.NewRuntime()
	}
	exec, err := NewDefaultExecutor(cfg)
	if err != nil {
		t.Fatalf("NewDefaultExecutor() error = %v", err)
	}
	return exec
}

var _ lisp.CallObserver = (*session)(nil)
