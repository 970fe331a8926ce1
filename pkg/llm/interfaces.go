// Package llm provides chat-completion clients for OpenAI-compatible and Anthropic endpoints.
package llm

import (
	"context"
)

// Role tags a message in a chat request.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry of a chat request.
type Message struct {
	Role    Role
	Content string
}

// ChatRequest is a single request/response model call.
type ChatRequest struct {
	// Model overrides the client's configured model when non-empty.
	Model       string
	Messages    []Message
	Temperature float64
	// MaxTokens caps the completion; 0 uses the provider default.
	MaxTokens int
}

// ChatResponse is the free-form text returned by the model plus usage stats.
type ChatResponse struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChatClient is the language-model call used by SQL generation and result explanation.
// Use this interface for dependency injection to enable mocking in tests.
type ChatClient interface {
	// Chat sends the messages and returns the model's reply.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// GetModel returns the configured model name.
	GetModel() string

	// GetEndpoint returns the configured endpoint.
	GetEndpoint() string
}

// Ensure clients implement ChatClient at compile time.
var (
	_ ChatClient = (*OpenAIClient)(nil)
	_ ChatClient = (*AnthropicClient)(nil)
)
