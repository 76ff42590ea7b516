// Package mcp provides an MCP (Model Context Protocol) server adapter for grasp.
// It lets AI assistants load a document, read its summary, ask questions
// and run a comprehension challenge.
package mcp

import "errors"

// ErrMissingSessionService is returned when the session service is not provided.
var ErrMissingSessionService = errors.New("mcp: session service is required")
