// Package gemini adapts the Gemini API to the llm contract using function
// calling. tool_use blocks become FunctionCall parts and tool_result blocks
// become FunctionResponse parts; screenshots ride along as inline image data.
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	genai "google.golang.org/genai"

	"github.com/drover-ai/drover/pkg/adapters/llm"
)

const defaultModel = "gemini-2.5-flash"

type clientWrapper struct {
	client *genai.Client
	model  string
}

func (c *clientWrapper) Name() string { return "gemini" }

func (c *clientWrapper) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	model := c.model
	if req.Model != "" {
		model = req.Model
	}

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if len(req.Tools) > 0 {
		cfg.Tools = buildTools(req.Tools)
	}

	// Gemini correlates results by function name, not call id; keep the
	// name for each id so tool_result blocks can be translated back.
	names := map[string]string{}
	for _, m := range req.Messages {
		for _, b := range m.Content {
			if b.Type == llm.BlockToolUse {
				names[b.ID] = b.Name
			}
		}
	}

	res, err := c.client.Models.GenerateContent(ctx, model, buildContents(req.Messages, names), cfg)
	if err != nil {
		return llm.Response{}, err
	}
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return llm.Response{}, fmt.Errorf("gemini: empty candidates")
	}
	cand := res.Candidates[0]

	out := llm.Response{StopReason: string(cand.FinishReason), Model: model}
	if res.UsageMetadata != nil {
		out.Usage = llm.Usage{
			InputTokens:  int64(res.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(res.UsageMetadata.CandidatesTokenCount),
		}
	}
	for _, part := range cand.Content.Parts {
		switch {
		case part.Text != "":
			out.Content = append(out.Content, llm.TextBlock(part.Text))
		case part.FunctionCall != nil:
			id := part.FunctionCall.ID
			if id == "" {
				id = "call_" + uuid.NewString()
			}
			out.Content = append(out.Content, llm.ToolUseBlock(id, part.FunctionCall.Name, part.FunctionCall.Args))
		}
	}
	return out, nil
}

func buildContents(messages []llm.Message, names map[string]string) []*genai.Content {
	out := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := genai.RoleUser
		if m.Role == llm.RoleAssistant {
			role = genai.RoleModel
		}
		content := &genai.Content{Role: role}
		for _, b := range m.Content {
			switch b.Type {
			case llm.BlockText:
				content.Parts = append(content.Parts, &genai.Part{Text: b.Text})
			case llm.BlockToolUse:
				content.Parts = append(content.Parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{ID: b.ID, Name: b.Name, Args: b.Input},
				})
			case llm.BlockToolResult:
				content.Parts = append(content.Parts, buildFunctionResponse(b, names)...)
			}
		}
		if len(content.Parts) > 0 {
			out = append(out, content)
		}
	}
	return out
}

func buildFunctionResponse(b llm.Block, names map[string]string) []*genai.Part {
	response := map[string]any{}
	if b.IsError {
		response["error"] = b.ErrorText
	} else {
		for _, part := range b.Content {
			if part.Type == "text" && part.Text != "" {
				response["output"] = part.Text
				break
			}
		}
	}
	parts := []*genai.Part{{
		FunctionResponse: &genai.FunctionResponse{
			ID:       b.ToolUseID,
			Name:     names[b.ToolUseID],
			Response: response,
		},
	}}
	for _, part := range b.Content {
		if part.Type != "image" || part.Source == nil {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(part.Source.Data)
		if err != nil {
			continue
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: part.Source.MediaType, Data: data},
		})
	}
	return parts
}

func buildTools(defs []llm.ToolDef) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, def := range defs {
		decl := &genai.FunctionDeclaration{Name: def.Name, Description: def.Description}
		if len(def.InputSchema) > 0 {
			var schema any
			if err := json.Unmarshal(def.InputSchema, &schema); err == nil {
				decl.ParametersJsonSchema = schema
			}
		}
		decls = append(decls, decl)
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// Factory creates a Gemini client using GOOGLE_API_KEY by default.
func Factory(ctx context.Context, cfg map[string]any) (llm.Client, error) { // nolint: revive
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if v, ok := cfg["api_key"].(string); ok && v != "" {
		apiKey = v
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: missing API key; set GOOGLE_API_KEY or cfg.api_key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	model := defaultModel
	if v, ok := cfg["model"].(string); ok && v != "" {
		model = v
	}
	return &clientWrapper{client: client, model: model}, nil
}

func init() {
	_ = llm.Register("gemini", Factory)
}
