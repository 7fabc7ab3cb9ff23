package code

import "time"

// CallRecord captures a single named function call made during execution.
type CallRecord struct {
	// Symbol is the qualified symbol that was called.
	Symbol string `json:"symbol"`

	// Args contains the printed arguments.
	Args []string `json:"args,omitempty"`

	// Result contains the printed result of a successful call.
	Result string `json:"result,omitempty"`

	// Error contains the error message if the call failed.
	Error string `json:"error,omitempty"`

	// Depth is the nesting depth of the call, 0 for calls made directly by
	// the snippet.
	Depth int `json:"depth"`

	// DurationMs is the execution time in milliseconds.
	DurationMs int64 `json:"durationMs"`
}

// ExecuteParams specifies the parameters for executing a code snippet.
type ExecuteParams struct {
	// Code is the hosted source to evaluate.
	Code string `json:"code"`

	// Namespace is the namespace the code is evaluated in. It is created
	// when nothing provides it.
	// If empty, the executor's default namespace is used.
	Namespace string `json:"namespace,omitempty"`

	// Timeout specifies the maximum duration for execution.
	// If zero, the executor's default timeout is used.
	Timeout time.Duration `json:"timeout"`

	// MaxCalls limits the number of named function calls allowed.
	// If zero, the executor's configured limit applies (or unlimited if none).
	MaxCalls int `json:"maxCalls,omitempty"`
}

// ExecuteResult contains the outcome of executing a code snippet.
type ExecuteResult struct {
	// Value is the value of the last form, converted to plain Go values.
	Value any `json:"value,omitempty"`

	// Printed is the readable form of the last value.
	Printed string `json:"printed"`

	// Stdout contains any output written by print functions.
	Stdout string `json:"stdout,omitempty"`

	// Calls records the named function calls made during execution.
	Calls []CallRecord `json:"calls,omitempty"`

	// DurationMs is the total execution time in milliseconds.
	DurationMs int64 `json:"durationMs"`
}
