package code

// Logger is an optional interface for observability during code execution.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging must be best-effort; Logf should not panic.
// - Ownership: format/args are read-only.
type Logger interface {
	// Logf logs a formatted message.
	Logf(format string, args ...any)
}

// LoggerFunc adapts a printf-style function, such as the Debugf method of
// a charmbracelet logger, to Logger.
type LoggerFunc func(format string, args ...any)

// Logf calls f.
func (f LoggerFunc) Logf(format string, args ...any) {
	f(format, args...)
}
