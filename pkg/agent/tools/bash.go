package tools

import (
	"context"
	"fmt"

	"github.com/drover-ai/drover/pkg/adapters/sandbox"
	"github.com/drover-ai/drover/pkg/agent"
)

var bashSchema = []byte(`{
  "type": "object",
  "properties": {
    "command": {"type": "string"},
    "restart": {"type": "boolean"}
  },
  "additionalProperties": false
}`)

// Bash runs commands in the instance's persistent shell.
type Bash struct{}

func (Bash) Describe() agent.ToolDescriptor {
	return agent.ToolDescriptor{
		Name:        "bash",
		Kind:        agent.KindBash,
		Description: "Run a shell command in the instance. Set restart to recycle the shell.",
		InputSchema: bashSchema,
	}
}

func (Bash) Invoke(ctx context.Context, args map[string]any, session sandbox.Session) (*agent.Outcome, error) {
	if session == nil {
		return nil, fmt.Errorf("bash: nil session")
	}
	command := stringArg(args, "command")
	restart := boolArg(args, "restart")
	if command == "" && !restart {
		return nil, fmt.Errorf("bash: missing command")
	}
	res, err := session.Bash(ctx, command, restart)
	if err != nil {
		return nil, fmt.Errorf("bash: %w", err)
	}
	return fromSurface(res), nil
}
