package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-askdb/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-askdb/pkg/retry"
)

func TestNewChatClient_SelectsProvider(t *testing.T) {
	client, err := NewChatClient(&Config{
		Provider: "openai",
		Endpoint: "https://api.groq.com/openai/v1",
		Model:    "llama-3.1-8b-instant",
	}, nil, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, client)
	assert.Equal(t, "llama-3.1-8b-instant", client.GetModel())

	client, err = NewChatClient(&Config{
		Provider: "Anthropic",
		Model:    "claude-3-5-haiku-latest",
		APIKey:   "sk-ant-test",
	}, nil, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &AnthropicClient{}, client)
}

func TestNewChatClient_UnknownProvider(t *testing.T) {
	_, err := NewChatClient(&Config{Provider: "bedrock", Model: "m"}, nil, zap.NewNop())
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedProvider)
}

func TestNewChatClient_WrapsWithRetries(t *testing.T) {
	client, err := NewChatClient(&Config{
		Endpoint: "http://localhost:11434/v1",
		Model:    "llama3",
	}, &retry.Config{MaxRetries: 2, InitialDelay: time.Millisecond}, zap.NewNop())
	require.NoError(t, err)

	assert.IsType(t, &RetryingClient{}, client)
	assert.Equal(t, "http://localhost:11434/v1", client.GetEndpoint())
}

func TestRetryingClient_RetriesTransientErrors(t *testing.T) {
	mock := NewMockClient()
	mock.ChatFunc = func(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
		if mock.ChatCalls < 3 {
			return nil, NewError(ErrorTypeRateLimit, "rate limited", true, errors.New("HTTP 429"))
		}
		return &ChatResponse{Content: "SELECT 1;"}, nil
	}

	client := NewRetryingClient(mock, &retry.Config{MaxRetries: 3, InitialDelay: time.Millisecond, Multiplier: 1}, zap.NewNop())

	resp, err := client.Chat(context.Background(), &ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1;", resp.Content)
	assert.Equal(t, 3, mock.ChatCalls)
}

func TestRetryingClient_StopsOnPermanentErrors(t *testing.T) {
	mock := NewMockClient()
	mock.ChatFunc = func(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
		return nil, NewError(ErrorTypeAuth, "authentication failed", false, nil)
	}

	client := NewRetryingClient(mock, &retry.Config{MaxRetries: 3, InitialDelay: time.Millisecond}, zap.NewNop())

	_, err := client.Chat(context.Background(), &ChatRequest{})
	assert.Equal(t, ErrorTypeAuth, GetErrorType(err))
	assert.Equal(t, 1, mock.ChatCalls)
}
