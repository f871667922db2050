// Package mcp provides an MCP (Model Context Protocol) server adapter for ClearPath.
// It lets AI assistants retrieve passages, route queries and ask questions
// against the indexed corpus.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

// ErrMissingRouterService is returned when the router service is not provided.
var ErrMissingRouterService = errors.New("mcp: router service is required")
