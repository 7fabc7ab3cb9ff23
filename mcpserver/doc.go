// Package mcpserver exposes the symbols of an invoker as MCP tools.
//
// Each loaded symbol becomes a tool named "<ns>.<munged name>" taking
// {"args": [...]} and returning the printed hosted result as text. Hosted
// errors come back as tool results with IsError set. With an executor
// configured, an extra "eval" tool evaluates hosted source.
package mcpserver
