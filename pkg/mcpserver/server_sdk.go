//go:build mcp

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/drover-ai/drover/pkg/adapters/llm"
	"github.com/drover-ai/drover/pkg/adapters/sandbox"
	"github.com/drover-ai/drover/pkg/drover"
)

// Server wraps an MCP server bound to one model client and provisioner.
type Server struct {
	srv    *mcp.Server
	client llm.Client
	prov   sandbox.Provisioner
	cfg    drover.Config
}

// New builds the server and registers the drover tools.
func New(client llm.Client, prov sandbox.Provisioner, cfg drover.Config, version string) *Server {
	s := &Server{
		srv:    mcp.NewServer(&mcp.Implementation{Name: "drover", Version: version}, nil),
		client: client,
		prov:   prov,
		cfg:    cfg,
	}
	s.srv.AddTool(&mcp.Tool{
		Name:        "drover_launch",
		Description: "Run a computer-use agent on a sandboxed instance with an open-ended instruction and return its report.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"instruction": map[string]any{"type": "string"},
				"url":         map[string]any{"type": "string"},
				"size":        map[string]any{"type": "string", "enum": []string{"small", "medium", "large"}},
			},
			"required": []string{"instruction"},
		},
	}, s.handleLaunch)
	s.srv.AddTool(&mcp.Tool{
		Name:        "drover_extract",
		Description: "Run a computer-use agent to retrieve information matching a JSON Schema and return the validated JSON.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"schema": map[string]any{"type": "object"},
				"cmd":    map[string]any{"type": "string"},
				"url":    map[string]any{"type": "string"},
				"size":   map[string]any{"type": "string", "enum": []string{"small", "medium", "large"}},
			},
			"required": []string{"schema"},
		},
	}, s.handleExtract)
	return s
}

// Run serves MCP over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.srv.Run(ctx, &mcp.StdioTransport{})
}

type launchArgs struct {
	Instruction string `json:"instruction"`
	URL         string `json:"url"`
	Size        string `json:"size"`
}

func (s *Server) handleLaunch(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args launchArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return nil, fmt.Errorf("bad arguments: %w", err)
	}
	answer, err := drover.Launch(ctx, s.client, s.prov, s.cfg, drover.LaunchRequest{
		Instruction: args.Instruction,
		URL:         args.URL,
		Size:        sandbox.Size(args.Size),
	})
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		}, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: answer}},
	}, nil
}

type extractArgs struct {
	Schema json.RawMessage `json:"schema"`
	Cmd    string          `json:"cmd"`
	URL    string          `json:"url"`
	Size   string          `json:"size"`
}

func (s *Server) handleExtract(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args extractArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return nil, fmt.Errorf("bad arguments: %w", err)
	}
	out, err := drover.ExtractJSON(ctx, s.client, s.prov, s.cfg, args.Schema, drover.ExtractRequest{
		URL:     args.URL,
		Command: args.Cmd,
		Size:    sandbox.Size(args.Size),
	})
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		}, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(out)}},
	}, nil
}
