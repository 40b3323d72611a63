package anthropic

import (
	"testing"

	"github.com/drover-ai/drover/pkg/adapters/llm"
)

func TestBuildMessagesRoles(t *testing.T) {
	msgs := buildMessages([]llm.Message{
		llm.UserMessage(llm.TextBlock("hi")),
		llm.AssistantMessage(llm.ToolUseBlock("tu_1", "bash", map[string]any{"command": "ls"})),
	})
	if len(msgs) != 2 {
		t.Fatalf("got %d messages", len(msgs))
	}
	if string(msgs[0].Role) != "user" || string(msgs[1].Role) != "assistant" {
		t.Fatalf("roles = %s, %s", msgs[0].Role, msgs[1].Role)
	}
}

func TestBuildToolResultError(t *testing.T) {
	u := buildToolResult(llm.ErrorResultBlock("tu_1", "command failed"))
	if u.OfToolResult == nil {
		t.Fatalf("union = %+v", u)
	}
	if u.OfToolResult.ToolUseID != "tu_1" {
		t.Fatalf("tool_use_id = %q", u.OfToolResult.ToolUseID)
	}
	if !u.OfToolResult.IsError.Value {
		t.Fatal("is_error not set")
	}
}

func TestBuildToolResultTextThenImage(t *testing.T) {
	u := buildToolResult(llm.ToolResultBlock("tu_2",
		llm.ContentPart{Type: "text", Text: "clicked"},
		llm.ContentPart{Type: "image", Source: &llm.ImageSource{Type: "base64", MediaType: "image/png", Data: "aW1n"}},
	))
	if u.OfToolResult == nil {
		t.Fatalf("union = %+v", u)
	}
	content := u.OfToolResult.Content
	if len(content) != 2 {
		t.Fatalf("got %d parts", len(content))
	}
	if content[0].OfText == nil || content[0].OfText.Text != "clicked" {
		t.Fatalf("first part = %+v", content[0])
	}
	img := content[1].OfImage
	if img == nil || img.Source.OfBase64 == nil || img.Source.OfBase64.Data != "aW1n" {
		t.Fatalf("second part = %+v", content[1])
	}
}

func TestBuildTools(t *testing.T) {
	tools, err := buildTools([]llm.ToolDef{{
		Name:        "bash",
		Description: "run a command",
		InputSchema: []byte(`{"type":"object","properties":{"command":{"type":"string"}},"required":["command"],"additionalProperties":false}`),
	}})
	if err != nil {
		t.Fatal(err)
	}
	if len(tools) != 1 || tools[0].OfTool == nil {
		t.Fatalf("tools = %+v", tools)
	}
	tool := tools[0].OfTool
	if tool.Name != "bash" {
		t.Fatalf("name = %q", tool.Name)
	}
	if tool.InputSchema.Properties == nil {
		t.Fatal("properties not carried over")
	}
	if len(tool.InputSchema.Required) != 1 || tool.InputSchema.Required[0] != "command" {
		t.Fatalf("required = %v", tool.InputSchema.Required)
	}
	if v, ok := tool.InputSchema.ExtraFields["additionalProperties"]; !ok || v != false {
		t.Fatalf("additionalProperties lost: extra = %v", tool.InputSchema.ExtraFields)
	}
}

func TestBuildToolsRejectsBadSchema(t *testing.T) {
	if _, err := buildTools([]llm.ToolDef{{Name: "x", InputSchema: []byte(`{`)}}); err == nil {
		t.Fatal("expected error for malformed schema")
	}
}

func TestFactoryRequiresKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := Factory(t.Context(), nil); err == nil {
		t.Fatal("expected error without api key")
	}
}
