package code

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonwraymond/hostcall/lisp"
)

// DefaultNamespace is the namespace snippets run in by default.
const DefaultNamespace = "user"

// Config holds the configuration for a code executor.
type Config struct {
	// Runtime hosts the namespaces snippets are evaluated in.
	// Required unless Engine is set.
	Runtime *lisp.Runtime

	// Engine is the pluggable code execution engine.
	// Default: a HostedEngine over Runtime.
	Engine Engine

	// DefaultNamespace is used when ExecuteParams.Namespace is empty.
	// Defaults to "user" if empty.
	DefaultNamespace string

	// DefaultTimeout is the default execution timeout when not specified
	// in ExecuteParams. If zero, no default timeout is applied.
	DefaultTimeout time.Duration

	// MaxCalls limits the maximum number of named function calls per
	// execution. Zero means unlimited.
	MaxCalls int

	// Logger is an optional logger for observability.
	Logger Logger
}

// Validate checks that all required fields are set.
// Returns ErrConfiguration if any required field is missing.
func (c *Config) Validate() error {
	var missing []string

	if c.Runtime == nil && c.Engine == nil {
		missing = append(missing, "Runtime or Engine")
	}
	if c.DefaultTimeout < 0 {
		return fmt.Errorf("%w: negative DefaultTimeout", ErrConfiguration)
	}
	if c.MaxCalls < 0 {
		return fmt.Errorf("%w: negative MaxCalls", ErrConfiguration)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s",
			ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}

// applyDefaults sets default values for optional fields.
func (c *Config) applyDefaults() {
	if c.DefaultNamespace == "" {
		c.DefaultNamespace = DefaultNamespace
	}
	if c.Engine == nil {
		c.Engine = NewHostedEngine(c.Runtime)
	}
}
