package agent

import (
	"github.com/drover-ai/drover/pkg/adapters/llm"
)

// NormalizeOutcome converts a tool outcome into the tool_result block the
// model sees. Errors are reported verbatim with the error flag set. On
// success the text part precedes the image part; their order is part of
// the protocol. Callers hold the block back entirely when dispatch yielded
// no outcome; there is no result shape for an absent one.
func NormalizeOutcome(o *Outcome, toolUseID string) llm.Block {
	if o.IsError {
		return llm.ErrorResultBlock(toolUseID, o.Error)
	}
	var parts []llm.ContentPart
	if o.Output != "" {
		parts = append(parts, llm.ContentPart{Type: "text", Text: o.Output})
	}
	if o.Base64Image != "" {
		parts = append(parts, llm.ContentPart{
			Type: "image",
			Source: &llm.ImageSource{
				Type:      "base64",
				MediaType: "image/png",
				Data:      o.Base64Image,
			},
		})
	}
	return llm.ToolResultBlock(toolUseID, parts...)
}
