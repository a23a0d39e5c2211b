// Package llm provides a typed wrapper over an OpenAI-compatible
// chat-completion endpoint (C1 in spec §4.1), supporting plain chat and
// native function-calling, with retry-with-backoff on transient
// failures.
package llm

import (
	"context"

	"github.com/X-Luffy/Law-Agent/pkg/models"
)

// ToolChoice selects how the model is allowed to use tools, matching the
// closed set in spec §4.1.
type ToolChoice string

const (
	ToolChoiceAuto     ToolChoice = "auto"
	ToolChoiceNone     ToolChoice = "none"
	ToolChoiceRequired ToolChoice = "required"
)

// ToolSchema is the JSON-schema-compatible function definition shape the
// LLM provider's tool-calling format expects (spec §6).
type ToolSchema struct {
	Type     string         `json:"type"` // "function"
	Function FunctionSchema `json:"function"`
}

// FunctionSchema describes one callable function.
type FunctionSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolCallResponse is the result of a chat_with_tools call: either a
// final textual answer (empty ToolCalls) or one or more tool
// invocations the caller must execute (spec §4.1).
type ToolCallResponse struct {
	Content   string
	ToolCalls []models.ToolCall
}

// Client is the interface the rest of the runtime programs against,
// letting tests substitute a fake without touching a real endpoint.
type Client interface {
	// Chat sends messages and returns the model's plain-text reply.
	Chat(ctx context.Context, messages []models.Message, system string, temperature float32, maxTokens int) (string, error)

	// ChatWithTools sends messages plus a tool catalog and returns either
	// a final answer or pending tool calls. Empty ToolCalls means the
	// content is the final textual answer.
	ChatWithTools(ctx context.Context, messages []models.Message, system string, tools []ToolSchema, choice ToolChoice, temperature float32, maxTokens int) (*ToolCallResponse, error)
}
