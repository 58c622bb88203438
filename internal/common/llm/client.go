// Package llm is the model invocation boundary. Callers depend on ChatModel
// and TextModel; provider SDKs stay behind this package.
package llm

import (
	"context"
	"fmt"
	"strings"

	"weekend-planner/internal/common/config"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one conversation turn. Assistant turns may carry tool calls and
// tool turns answer exactly one call by ToolCallID.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolSpec describes a callable tool. Parameters is a JSON schema object;
// nil means the tool takes no arguments.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

type ChatRequest struct {
	System   string
	Messages []Message
	Tools    []ToolSpec
}

// ChatResponse is either a final answer (no ToolCalls) or a request to run tools.
type ChatResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// ChatModel is a tool-calling chat model.
type ChatModel interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// TextModel is a single-shot system+user completion.
type TextModel interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// NewTextModel builds the configured provider for secondary calls.
func NewTextModel(cfg config.LLMConfig, model config.ModelConfig) (TextModel, error) {
	timeout := config.GetDuration(cfg.Timeout)
	switch model.Provider {
	case "openai":
		return NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, model, timeout), nil
	case "anthropic":
		return NewAnthropicClient(cfg.Anthropic.APIKey, cfg.Anthropic.BaseURL, model, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", model.Provider)
	}
}

// CleanJSONResponse strips Markdown code fences and surrounding prose from a
// model reply that should be a JSON object or array.
func CleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```JSON")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some model responses include extra prose around JSON.
	open := strings.IndexAny(content, "[{")
	if open < 0 {
		return content
	}
	closer := "}"
	if content[open] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(content, closer)
	if end > open {
		content = content[open : end+1]
	}
	return content
}
