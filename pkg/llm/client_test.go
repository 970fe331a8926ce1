package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestContextAwareTransport_InjectsRequestID(t *testing.T) {
	turnID := uuid.New()
	var receivedHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedHeader = r.Header.Get(requestIDHeader)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := &http.Client{Transport: &contextAwareTransport{base: http.DefaultTransport}}

	req, err := http.NewRequestWithContext(WithRequestID(context.Background(), turnID), http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, turnID.String(), receivedHeader)
}

func TestContextAwareTransport_NoHeaderWithoutRequestID(t *testing.T) {
	var headerPresent bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, headerPresent = r.Header[requestIDHeader]
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := &http.Client{Transport: &contextAwareTransport{base: http.DefaultTransport}}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.False(t, headerPresent)
}

func TestNewOpenAIClient_Validation(t *testing.T) {
	_, err := NewOpenAIClient(&Config{Model: "m"}, zap.NewNop())
	assert.ErrorContains(t, err, "endpoint is required")

	_, err = NewOpenAIClient(&Config{Endpoint: "http://localhost"}, zap.NewNop())
	assert.ErrorContains(t, err, "model is required")
}

func TestOpenAIClient_Chat(t *testing.T) {
	var body struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "llama-3.1-8b-instant",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "SELECT 1;"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15}
		}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(&Config{
		Endpoint: server.URL + "/",
		Model:    "llama-3.1-8b-instant",
		APIKey:   "gsk_test",
	}, zap.NewNop())
	require.NoError(t, err)

	resp, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "You are a SQL expert."},
			{Role: RoleUser, Content: "count rows"},
		},
		Temperature: 0.3,
	})
	require.NoError(t, err)

	assert.Equal(t, "SELECT 1;", resp.Content)
	assert.Equal(t, 12, resp.PromptTokens)
	assert.Equal(t, 15, resp.TotalTokens)
	assert.Equal(t, "Bearer gsk_test", authHeader)
	assert.Equal(t, "llama-3.1-8b-instant", body.Model)
	assert.InDelta(t, 0.3, body.Temperature, 0.0001)
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "system", body.Messages[0].Role)
	assert.Equal(t, "count rows", body.Messages[1].Content)
}

func TestOpenAIClient_Chat_ClassifiesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Invalid API Key", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(&Config{Endpoint: server.URL, Model: "m", APIKey: "bad"}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), &ChatRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.Error(t, err)

	var llmErr *Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, ErrorTypeAuth, llmErr.Type)
	assert.Equal(t, http.StatusUnauthorized, llmErr.StatusCode)
	assert.Equal(t, "m", llmErr.Model)
	assert.False(t, llmErr.Retryable)
}

func TestAnthropicClient_Chat(t *testing.T) {
	var body struct {
		Model    string `json:"model"`
		System   string `json:"system"`
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
		MaxTokens int `json:"max_tokens"`
	}
	var apiKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		apiKey = r.Header.Get("x-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-latest",
			"content": [{"type": "text", "text": "Four employees work in Sales."}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 40, "output_tokens": 8}
		}`))
	}))
	defer server.Close()

	client, err := NewAnthropicClient(&Config{
		Endpoint: server.URL,
		Model:    "claude-3-5-haiku-latest",
		APIKey:   "sk-ant-test",
	}, zap.NewNop())
	require.NoError(t, err)

	resp, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "You are a data analyst."},
			{Role: RoleUser, Content: "Explain"},
		},
		Temperature: 0.7,
	})
	require.NoError(t, err)

	assert.Equal(t, "Four employees work in Sales.", resp.Content)
	assert.Equal(t, 48, resp.TotalTokens)
	assert.Equal(t, "sk-ant-test", apiKey)
	assert.Equal(t, "You are a data analyst.", body.System)
	assert.Equal(t, defaultAnthropicMaxTokens, body.MaxTokens)
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "user", body.Messages[0].Role)
}

func TestNewAnthropicClient_RequiresKey(t *testing.T) {
	_, err := NewAnthropicClient(&Config{Model: "claude"}, zap.NewNop())
	assert.ErrorContains(t, err, "api key is required")
}
