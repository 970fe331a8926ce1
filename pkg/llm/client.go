package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient provides access to OpenAI-compatible chat endpoints (OpenAI, Groq, vLLM, Ollama).
type OpenAIClient struct {
	client    *openai.Client
	endpoint  string
	model     string
	maxTokens int
	logger    *zap.Logger
}

// Config holds configuration for creating an LLM client.
type Config struct {
	Provider  string // "openai" (any OpenAI-compatible endpoint) or "anthropic"
	Endpoint  string // Base URL, e.g., "https://api.groq.com/openai/v1"
	Model     string // Model name, e.g., "llama-3.1-8b-instant"
	APIKey    string // Optional for local endpoints
	MaxTokens int    // Default completion cap; 0 uses the provider default
}

// NewOpenAIClient creates a new OpenAI-compatible LLM client.
func NewOpenAIClient(cfg *Config, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")
	clientConfig.HTTPClient = &http.Client{Transport: &contextAwareTransport{base: http.DefaultTransport}}

	return &OpenAIClient{
		client:    openai.NewClientWithConfig(clientConfig),
		endpoint:  cfg.Endpoint,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger.Named("llm"),
	}, nil
}

// Chat generates a chat completion.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	promptLen := 0
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
		promptLen += len(m.Content)
	}

	c.logger.Debug("LLM request",
		zap.String("model", model),
		zap.Int("messages", len(messages)),
		zap.Int("prompt_len", promptLen),
		zap.Float64("temperature", req.Temperature))

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   maxTokens,
	})
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.String("model", model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, c.parseError(err, model)
	}

	if len(resp.Choices) == 0 {
		return nil, NewErrorWithContext(ErrorTypeResponse, "no choices in response", false, nil, model, c.endpoint, 0)
	}

	c.logger.Info("LLM request completed",
		zap.String("model", model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return &ChatResponse{
		Content:          resp.Choices[0].Message.Content,
		Model:            model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// GetModel returns the configured model name.
func (c *OpenAIClient) GetModel() string {
	return c.model
}

// GetEndpoint returns the configured endpoint.
func (c *OpenAIClient) GetEndpoint() string {
	return c.endpoint
}

// parseError categorizes OpenAI API errors, preferring the structured status code.
func (c *OpenAIClient) parseError(err error, model string) error {
	llmErr := ClassifyError(err)
	llmErr.Model = model
	llmErr.Endpoint = c.endpoint
	return llmErr
}
