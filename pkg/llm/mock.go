package llm

import (
	"context"
)

// MockClient is a configurable mock for testing LLM functionality.
// Set the function fields to control behavior in tests.
type MockClient struct {
	// ChatFunc is called when Chat is invoked.
	// If nil, returns an empty response and nil error.
	ChatFunc func(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Model is returned by GetModel. Defaults to "mock-model".
	Model string

	// Endpoint is returned by GetEndpoint. Defaults to "http://mock-endpoint".
	Endpoint string

	// Call tracking for verification
	ChatCalls int
	Requests  []*ChatRequest
}

var _ ChatClient = (*MockClient)(nil)

// NewMockClient creates a new mock with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		Model:    "mock-model",
		Endpoint: "http://mock-endpoint",
	}
}

// NewMockClientWithReply returns a mock that always answers with content.
func NewMockClientWithReply(content string) *MockClient {
	m := NewMockClient()
	m.ChatFunc = func(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
		return &ChatResponse{Content: content, Model: m.GetModel()}, nil
	}
	return m
}

// Chat implements ChatClient.
func (m *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	m.ChatCalls++
	m.Requests = append(m.Requests, req)
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, req)
	}
	return &ChatResponse{}, nil
}

// LastRequest returns the most recent request, or nil if Chat was never called.
func (m *MockClient) LastRequest() *ChatRequest {
	if len(m.Requests) == 0 {
		return nil
	}
	return m.Requests[len(m.Requests)-1]
}

// GetModel implements ChatClient.
func (m *MockClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

// GetEndpoint implements ChatClient.
func (m *MockClient) GetEndpoint() string {
	if m.Endpoint == "" {
		return "http://mock-endpoint"
	}
	return m.Endpoint
}
