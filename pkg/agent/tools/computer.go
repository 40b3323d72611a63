package tools

import (
	"context"
	"fmt"

	"github.com/drover-ai/drover/pkg/adapters/sandbox"
	"github.com/drover-ai/drover/pkg/agent"
)

var computerSchema = []byte(`{
  "type": "object",
  "properties": {
    "action": {
      "type": "string",
      "enum": ["key", "type", "mouse_move", "left_click", "left_click_drag", "right_click", "middle_click", "double_click", "screenshot", "cursor_position"]
    },
    "coordinate": {
      "type": "array",
      "items": {"type": "integer"},
      "minItems": 2,
      "maxItems": 2
    },
    "text": {"type": "string"}
  },
  "required": ["action"],
  "additionalProperties": false
}`)

// Computer drives the instance's pointer, keyboard, and screenshot surface.
type Computer struct{}

func (Computer) Describe() agent.ToolDescriptor {
	return agent.ToolDescriptor{
		Name:        "computer",
		Kind:        agent.KindComputer,
		Description: "Interact with the instance's screen, mouse, and keyboard.",
		InputSchema: computerSchema,
	}
}

func (Computer) Invoke(ctx context.Context, args map[string]any, session sandbox.Session) (*agent.Outcome, error) {
	if session == nil {
		return nil, fmt.Errorf("computer: nil session")
	}
	action := stringArg(args, "action")
	if action == "" {
		return nil, fmt.Errorf("computer: missing action")
	}
	coordinate, err := intSliceArg(args, "coordinate")
	if err != nil {
		return nil, fmt.Errorf("computer: %w", err)
	}
	res, err := session.Computer(ctx, action, coordinate, stringArg(args, "text"))
	if err != nil {
		return nil, fmt.Errorf("computer %s: %w", action, err)
	}
	return fromSurface(res), nil
}
