// Package anthropic adapts the Anthropic Messages API to the llm contract.
// It is the default provider: the llm block protocol is this API's native
// content-block protocol, so translation is one-to-one.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/drover-ai/drover/pkg/adapters/llm"
)

const (
	defaultModel     = "claude-sonnet-4-5"
	defaultMaxTokens = 4096
)

type clientWrapper struct {
	client    sdk.Client
	model     string
	maxTokens int
}

func (c *clientWrapper) Name() string { return "anthropic" }

func (c *clientWrapper) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	model := c.model
	if req.Model != "" {
		model = req.Model
	}
	maxTokens := c.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	tools, err := buildTools(req.Tools)
	if err != nil {
		return llm.Response{}, err
	}
	params := sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  buildMessages(req.Messages),
		Tools:     tools,
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return llm.Response{}, err
	}

	out := llm.Response{
		StopReason: string(msg.StopReason),
		Model:      model,
		Usage: llm.Usage{
			InputTokens:  msg.Usage.InputTokens,
			OutputTokens: msg.Usage.OutputTokens,
		},
	}
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case sdk.TextBlock:
			out.Content = append(out.Content, llm.TextBlock(v.Text))
		case sdk.ToolUseBlock:
			input := map[string]any{}
			if len(v.Input) > 0 {
				_ = json.Unmarshal(v.Input, &input)
			}
			out.Content = append(out.Content, llm.ToolUseBlock(v.ID, v.Name, input))
		}
	}
	return out, nil
}

func buildMessages(messages []llm.Message) []sdk.MessageParam {
	out := make([]sdk.MessageParam, 0, len(messages))
	for _, m := range messages {
		blocks := make([]sdk.ContentBlockParamUnion, 0, len(m.Content))
		for _, b := range m.Content {
			switch b.Type {
			case llm.BlockText:
				blocks = append(blocks, sdk.NewTextBlock(b.Text))
			case llm.BlockToolUse:
				blocks = append(blocks, sdk.NewToolUseBlock(b.ID, b.Input, b.Name))
			case llm.BlockToolResult:
				blocks = append(blocks, buildToolResult(b))
			}
		}
		if m.Role == llm.RoleAssistant {
			out = append(out, sdk.NewAssistantMessage(blocks...))
		} else {
			out = append(out, sdk.NewUserMessage(blocks...))
		}
	}
	return out
}

func buildToolResult(b llm.Block) sdk.ContentBlockParamUnion {
	if b.IsError {
		return sdk.NewToolResultBlock(b.ToolUseID, b.ErrorText, true)
	}
	tr := sdk.ToolResultBlockParam{ToolUseID: b.ToolUseID}
	for _, part := range b.Content {
		switch part.Type {
		case "text":
			tr.Content = append(tr.Content, sdk.ToolResultBlockParamContentUnion{
				OfText: &sdk.TextBlockParam{Text: part.Text},
			})
		case "image":
			if part.Source == nil {
				continue
			}
			tr.Content = append(tr.Content, sdk.ToolResultBlockParamContentUnion{
				OfImage: &sdk.ImageBlockParam{
					Source: sdk.ImageBlockParamSourceUnion{
						OfBase64: &sdk.Base64ImageSourceParam{
							MediaType: sdk.Base64ImageSourceMediaType(part.Source.MediaType),
							Data:      part.Source.Data,
						},
					},
				},
			})
		}
	}
	return sdk.ContentBlockParamUnion{OfToolResult: &tr}
}

func buildTools(defs []llm.ToolDef) ([]sdk.ToolUnionParam, error) {
	out := make([]sdk.ToolUnionParam, 0, len(defs))
	for _, def := range defs {
		schema, err := encodeSchema(def.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %s: bad input schema: %w", def.Name, err)
		}
		param := sdk.ToolParam{
			Name:        def.Name,
			InputSchema: schema,
		}
		if def.Description != "" {
			param.Description = sdk.String(def.Description)
		}
		out = append(out, sdk.ToolUnionParam{OfTool: &param})
	}
	return out, nil
}

// encodeSchema carries the declared schema over keyword for keyword.
// Keywords beyond properties and required ride in ExtraFields so the wire
// schema keeps constraints like additionalProperties.
func encodeSchema(raw []byte) (sdk.ToolInputSchemaParam, error) {
	var schema sdk.ToolInputSchemaParam
	if len(raw) == 0 {
		return schema, nil
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return sdk.ToolInputSchemaParam{}, err
	}
	for key, val := range doc {
		var err error
		switch key {
		case "type":
			// tool input is always an object; the param marshals that itself
		case "properties":
			err = json.Unmarshal(val, &schema.Properties)
		case "required":
			err = json.Unmarshal(val, &schema.Required)
		default:
			var v any
			if err = json.Unmarshal(val, &v); err == nil {
				if schema.ExtraFields == nil {
					schema.ExtraFields = map[string]any{}
				}
				schema.ExtraFields[key] = v
			}
		}
		if err != nil {
			return sdk.ToolInputSchemaParam{}, err
		}
	}
	return schema, nil
}

// Factory creates an Anthropic client. cfg keys: api_key, model, max_tokens.
func Factory(ctx context.Context, cfg map[string]any) (llm.Client, error) { // nolint: revive
	_ = ctx
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if v, ok := cfg["api_key"].(string); ok && v != "" {
		apiKey = v
	}
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic: missing API key; set ANTHROPIC_API_KEY or cfg.api_key")
	}
	model := defaultModel
	if v, ok := cfg["model"].(string); ok && v != "" {
		model = v
	}
	maxTokens := defaultMaxTokens
	if v, ok := cfg["max_tokens"].(int); ok && v > 0 {
		maxTokens = v
	} else if v, ok := cfg["max_tokens"].(float64); ok && v > 0 {
		maxTokens = int(v)
	}
	return &clientWrapper{
		client:    sdk.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

func init() {
	_ = llm.Register("anthropic", Factory)
}
