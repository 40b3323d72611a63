package agent

import (
	"context"

	"github.com/drover-ai/drover/pkg/adapters/sandbox"
)

// ToolKind distinguishes how a tool is surfaced to the model.
type ToolKind string

const (
	// KindComputer is the pointer/keyboard/screenshot surface.
	KindComputer ToolKind = "computer"
	// KindBash runs shell commands inside the sandbox.
	KindBash ToolKind = "bash"
	// KindEditor views and edits files inside the sandbox.
	KindEditor ToolKind = "editor"
)

// ToolDescriptor declares the static interface of a tool.
// InputSchema is a JSON Schema (draft 2020-12) in UTF-8 bytes.
type ToolDescriptor struct {
	Name        string   `json:"name"`
	Kind        ToolKind `json:"kind"`
	Description string   `json:"description,omitempty"`
	InputSchema []byte   `json:"input_schema"`
}

// Outcome is the normalized result of one tool invocation. Output and
// Base64Image carry success payloads; Error carries the failure text when
// IsError is set. System is auxiliary text never shown to the model.
type Outcome struct {
	Output      string
	Error       string
	Base64Image string
	System      string
	IsError     bool
}

// Tool defines a callable unit the model can request by name. Invoke
// receives the raw arguments from the model's tool_use block and the
// sandbox session the run is bound to.
type Tool interface {
	// Describe returns the public descriptor (name, kind, schema).
	Describe() ToolDescriptor
	// Invoke executes the tool. Transport and sandbox failures are folded
	// into an Outcome with IsError set; a non-nil error means the tool
	// could not run at all.
	Invoke(ctx context.Context, args map[string]any, session sandbox.Session) (*Outcome, error)
}
