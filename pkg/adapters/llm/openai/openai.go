// Package openai adapts the OpenAI Chat Completions API to the llm contract.
// The block protocol is translated to the chat tool-call shape: tool_use
// blocks become assistant tool_calls, tool_result blocks become tool
// messages keyed by call id. Image parts are dropped on this provider.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	oa "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/drover-ai/drover/pkg/adapters/llm"
)

const defaultModel = "gpt-5-mini"

type clientWrapper struct {
	client oa.Client
	model  string
}

func (c *clientWrapper) Name() string { return "openai" }

func (c *clientWrapper) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	model := c.model
	if req.Model != "" {
		model = req.Model
	}

	params := oa.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: buildMessages(req.System, req.Messages),
		Tools:    buildTools(req.Tools),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = oa.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return llm.Response{}, err
	}
	if len(resp.Choices) == 0 {
		return llm.Response{}, fmt.Errorf("openai: empty choices")
	}
	choice := resp.Choices[0]

	out := llm.Response{
		StopReason: choice.FinishReason,
		Model:      model,
		Usage: llm.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}
	if choice.Message.Content != "" {
		out.Content = append(out.Content, llm.TextBlock(choice.Message.Content))
	}
	for _, tc := range choice.Message.ToolCalls {
		input := map[string]any{}
		if args := tc.Function.Arguments; args != "" {
			_ = json.Unmarshal([]byte(args), &input)
		}
		out.Content = append(out.Content, llm.ToolUseBlock(tc.ID, tc.Function.Name, input))
	}
	return out, nil
}

func buildMessages(system string, messages []llm.Message) []oa.ChatCompletionMessageParamUnion {
	out := make([]oa.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if system != "" {
		out = append(out, oa.SystemMessage(system))
	}
	for _, m := range messages {
		switch m.Role {
		case llm.RoleAssistant:
			out = append(out, buildAssistant(m))
		default:
			// User turns split into plain text and tool messages; the chat
			// protocol carries tool results as a distinct role.
			var texts []string
			for _, b := range m.Content {
				switch b.Type {
				case llm.BlockText:
					texts = append(texts, b.Text)
				case llm.BlockToolResult:
					out = append(out, oa.ToolMessage(toolResultText(b), b.ToolUseID))
				}
			}
			if len(texts) > 0 {
				out = append(out, oa.UserMessage(strings.Join(texts, "\n")))
			}
		}
	}
	return out
}

func buildAssistant(m llm.Message) oa.ChatCompletionMessageParamUnion {
	msg := oa.ChatCompletionAssistantMessageParam{}
	var texts []string
	for _, b := range m.Content {
		switch b.Type {
		case llm.BlockText:
			texts = append(texts, b.Text)
		case llm.BlockToolUse:
			args, _ := json.Marshal(b.Input)
			msg.ToolCalls = append(msg.ToolCalls, oa.ChatCompletionMessageToolCallUnionParam{
				OfFunction: &oa.ChatCompletionMessageFunctionToolCallParam{
					ID: b.ID,
					Function: oa.ChatCompletionMessageFunctionToolCallFunctionParam{
						Name:      b.Name,
						Arguments: string(args),
					},
				},
			})
		}
	}
	if len(texts) > 0 {
		msg.Content.OfString = oa.String(strings.Join(texts, "\n"))
	}
	return oa.ChatCompletionMessageParamUnion{OfAssistant: &msg}
}

func toolResultText(b llm.Block) string {
	if b.IsError {
		return b.ErrorText
	}
	var texts []string
	for _, part := range b.Content {
		if part.Type == "text" && part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	if len(texts) == 0 {
		return "(no output)"
	}
	return strings.Join(texts, "\n")
}

func buildTools(defs []llm.ToolDef) []oa.ChatCompletionToolUnionParam {
	out := make([]oa.ChatCompletionToolUnionParam, 0, len(defs))
	for _, def := range defs {
		fn := shared.FunctionDefinitionParam{Name: def.Name}
		if def.Description != "" {
			fn.Description = oa.String(def.Description)
		}
		if len(def.InputSchema) > 0 {
			schema := map[string]any{}
			if err := json.Unmarshal(def.InputSchema, &schema); err == nil {
				fn.Parameters = shared.FunctionParameters(schema)
			}
		}
		out = append(out, oa.ChatCompletionFunctionTool(fn))
	}
	return out
}

// Factory registers the OpenAI provider: cfg keys: api_key, model.
func Factory(ctx context.Context, cfg map[string]any) (llm.Client, error) { // nolint: revive
	_ = ctx
	apiKey := os.Getenv("OPENAI_API_KEY")
	if v, ok := cfg["api_key"].(string); ok && v != "" {
		apiKey = v
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai: missing API key; set OPENAI_API_KEY or cfg.api_key")
	}
	model := defaultModel
	if v, ok := cfg["model"].(string); ok && v != "" {
		model = v
	}
	return &clientWrapper{client: oa.NewClient(option.WithAPIKey(apiKey)), model: model}, nil
}

func init() {
	_ = llm.Register("openai", Factory)
}
