// Package llm defines a provider-neutral completion contract for tool-using
// conversations. Turns carry ordered content blocks (text, tool_use,
// tool_result) rather than flat strings because the model protocol is
// order-sensitive for multi-part content.
package llm

import (
	"context"
	"fmt"
	"sync"
)

// Roles of a conversation turn.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Block type discriminators.
const (
	BlockText       = "text"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
)

// ImageSource is a base64-encoded image payload inside a tool result part.
type ImageSource struct {
	Type      string `json:"type"` // always "base64"
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// ContentPart is one element of a multi-part tool result: a text part or an
// image part. Part order is significant and preserved end to end.
type ContentPart struct {
	Type   string       `json:"type"` // "text" | "image"
	Text   string       `json:"text,omitempty"`
	Source *ImageSource `json:"source,omitempty"`
}

// Block is one typed unit within a turn.
type Block struct {
	Type string `json:"type"`

	// text
	Text string `json:"text,omitempty"`

	// tool_use
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`

	// tool_result
	ToolUseID string        `json:"tool_use_id,omitempty"`
	IsError   bool          `json:"is_error,omitempty"`
	ErrorText string        `json:"error_text,omitempty"`
	Content   []ContentPart `json:"content,omitempty"`
}

// TextBlock builds a plain text block.
func TextBlock(text string) Block {
	return Block{Type: BlockText, Text: text}
}

// ToolUseBlock builds a tool invocation request block.
func ToolUseBlock(id, name string, input map[string]any) Block {
	return Block{Type: BlockToolUse, ID: id, Name: name, Input: input}
}

// ToolResultBlock builds a successful tool result carrying ordered parts.
func ToolResultBlock(toolUseID string, parts ...ContentPart) Block {
	return Block{Type: BlockToolResult, ToolUseID: toolUseID, Content: parts}
}

// ErrorResultBlock builds a failed tool result whose content is the bare
// error string; the model decides how to recover.
func ErrorResultBlock(toolUseID, errText string) Block {
	return Block{Type: BlockToolResult, ToolUseID: toolUseID, IsError: true, ErrorText: errText}
}

// Message is one role-tagged turn of the conversation.
type Message struct {
	Role    string  `json:"role"`
	Content []Block `json:"content"`
}

// UserMessage builds a user turn from blocks.
func UserMessage(blocks ...Block) Message {
	return Message{Role: RoleUser, Content: blocks}
}

// AssistantMessage builds an assistant turn from blocks.
func AssistantMessage(blocks ...Block) Message {
	return Message{Role: RoleAssistant, Content: blocks}
}

// ToolDef advertises one callable tool to the model.
// InputSchema is a JSON Schema (draft 2020-12) in UTF-8 bytes.
type ToolDef struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	InputSchema []byte `json:"input_schema"`
}

// Request is one completion call: the full history so far, the system
// prompt, and the advertised tool set.
type Request struct {
	Model     string
	System    string
	Messages  []Message
	Tools     []ToolDef
	MaxTokens int
}

// Usage reports token consumption when the provider makes it available.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Response is the model's reply: ordered content blocks plus metadata.
type Response struct {
	Content    []Block
	StopReason string
	Usage      Usage
	Model      string
}

// Client defines a minimal tool-using completion interface.
type Client interface {
	// Name returns the provider name (e.g. "anthropic").
	Name() string
	// Complete requests one completion for the given history.
	Complete(ctx context.Context, req Request) (Response, error)
}

// Factory constructs a Client from provider-specific config.
type Factory func(ctx context.Context, cfg map[string]any) (Client, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers a Client factory under a provider name.
func Register(name string, f Factory) error {
	if name == "" {
		return fmt.Errorf("llm: empty provider name")
	}
	if f == nil {
		return fmt.Errorf("llm: nil factory for %q", name)
	}
	regMu.Lock()
	defer regMu.Unlock()
	if _, exists := factories[name]; exists {
		return fmt.Errorf("llm: provider %q already registered", name)
	}
	factories[name] = f
	return nil
}

// Resolve gets a registered factory by name.
func Resolve(name string) (Factory, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	f, ok := factories[name]
	return f, ok
}

// New constructs a Client for a registered provider.
func New(ctx context.Context, provider string, cfg map[string]any) (Client, error) {
	f, ok := Resolve(provider)
	if !ok {
		return nil, fmt.Errorf("llm: unknown provider %q", provider)
	}
	return f(ctx, cfg)
}

// Range iterates all registered factories.
func Range(fn func(name string, f Factory)) {
	regMu.RLock()
	defer regMu.RUnlock()
	for n, f := range factories {
		fn(n, f)
	}
}
