// Package mcp provides an MCP (Model Context Protocol) server adapter for
// the evidence engine. It lets AI assistants list evidence, inspect single
// files and record assessment outcomes.
package mcp

import "errors"

// ErrMissingEvidenceService is returned when the evidence service is not provided.
var ErrMissingEvidenceService = errors.New("mcp: evidence service is required")
