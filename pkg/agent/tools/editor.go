package tools

import (
	"context"
	"fmt"

	"github.com/drover-ai/drover/pkg/adapters/sandbox"
	"github.com/drover-ai/drover/pkg/agent"
)

var editorSchema = []byte(`{
  "type": "object",
  "properties": {
    "command": {
      "type": "string",
      "enum": ["view", "create", "str_replace", "insert", "undo_edit"]
    },
    "path": {"type": "string"},
    "file_text": {"type": "string"},
    "view_range": {
      "type": "array",
      "items": {"type": "integer"},
      "minItems": 2,
      "maxItems": 2
    },
    "old_str": {"type": "string"},
    "new_str": {"type": "string"},
    "insert_line": {"type": "integer"}
  },
  "required": ["command", "path"],
  "additionalProperties": false
}`)

// Editor views and edits files on the instance.
type Editor struct{}

func (Editor) Describe() agent.ToolDescriptor {
	return agent.ToolDescriptor{
		Name:        "str_replace_editor",
		Kind:        agent.KindEditor,
		Description: "View, create, and edit files on the instance.",
		InputSchema: editorSchema,
	}
}

func (Editor) Invoke(ctx context.Context, args map[string]any, session sandbox.Session) (*agent.Outcome, error) {
	if session == nil {
		return nil, fmt.Errorf("editor: nil session")
	}
	req := sandbox.EditRequest{
		Command:  stringArg(args, "command"),
		Path:     stringArg(args, "path"),
		FileText: stringArg(args, "file_text"),
		OldStr:   stringArg(args, "old_str"),
		NewStr:   stringArg(args, "new_str"),
	}
	if req.Command == "" || req.Path == "" {
		return nil, fmt.Errorf("editor: missing command or path")
	}
	viewRange, err := intSliceArg(args, "view_range")
	if err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}
	req.ViewRange = viewRange
	insertLine, err := intPtrArg(args, "insert_line")
	if err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}
	req.InsertLine = insertLine
	res, err := session.Edit(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("editor %s: %w", req.Command, err)
	}
	return fromSurface(res), nil
}
