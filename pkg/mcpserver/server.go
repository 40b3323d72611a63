//go:build !mcp

// Package mcpserver exposes drover's two run modes as MCP tools so other
// agents can drive sandboxed computers over the Model Context Protocol.
// Without the mcp build tag this file stands in for the SDK-backed server
// so the package always compiles.
package mcpserver

import (
	"context"
	"errors"

	"github.com/drover-ai/drover/pkg/adapters/llm"
	"github.com/drover-ai/drover/pkg/adapters/sandbox"
	"github.com/drover-ai/drover/pkg/drover"
)

// Server is the no-op stand-in used when the mcp build tag is not set.
type Server struct{}

// New builds the placeholder server.
func New(_ llm.Client, _ sandbox.Provisioner, _ drover.Config, _ string) *Server {
	return &Server{}
}

// Run reports that MCP support is not compiled in.
func (s *Server) Run(_ context.Context) error {
	return errors.New("mcp support not built; rebuild with -tags mcp")
}
