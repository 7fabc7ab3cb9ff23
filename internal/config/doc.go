// Package config loads hostcall settings.
//
// Settings come from, in increasing precedence: built-in defaults, a CUE
// file (hostcall.cue) validated against the embedded #Config schema, and
// HOSTCALL_* environment variables (HOSTCALL_EVAL_MAX_CALLS for
// eval.max_calls). The file is looked up in the user config directory and
// then the working directory unless a path is given explicitly.
package config
