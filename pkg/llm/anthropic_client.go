package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// defaultAnthropicMaxTokens is required by the Messages API; it has no server default.
const defaultAnthropicMaxTokens = 2048

// AnthropicClient provides access to the Anthropic Messages API.
type AnthropicClient struct {
	client    *anthropic.Client
	endpoint  string
	model     string
	maxTokens int
	logger    *zap.Logger
}

// NewAnthropicClient creates a new Anthropic client.
// An empty endpoint uses the library's default base URL.
func NewAnthropicClient(cfg *Config, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required for anthropic")
	}

	opts := []anthropic.ClientOption{
		anthropic.WithHTTPClient(&http.Client{Transport: &contextAwareTransport{base: http.DefaultTransport}}),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(cfg.Endpoint, "/")))
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	return &AnthropicClient{
		client:    anthropic.NewClient(cfg.APIKey, opts...),
		endpoint:  cfg.Endpoint,
		model:     cfg.Model,
		maxTokens: maxTokens,
		logger:    logger.Named("llm"),
	}, nil
}

// Chat sends the conversation to the Messages API.
// System messages are concatenated into the request's system prompt.
func (c *AnthropicClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	var system []string
	messages := make([]anthropic.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			messages = append(messages, anthropic.NewAssistantTextMessage(m.Content))
		default:
			messages = append(messages, anthropic.NewUserTextMessage(m.Content))
		}
	}

	temperature := float32(req.Temperature)

	c.logger.Debug("LLM request",
		zap.String("model", model),
		zap.Int("messages", len(messages)),
		zap.Float64("temperature", req.Temperature))

	start := time.Now()

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(model),
		System:      strings.Join(system, "\n\n"),
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.String("model", model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		llmErr := ClassifyError(err)
		llmErr.Model = model
		llmErr.Endpoint = c.endpoint
		return nil, llmErr
	}

	content := ""
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			content = *block.Text
			break
		}
	}

	c.logger.Info("LLM request completed",
		zap.String("model", model),
		zap.Int("prompt_tokens", resp.Usage.InputTokens),
		zap.Int("completion_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return &ChatResponse{
		Content:          content,
		Model:            model,
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
		TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}, nil
}

// GetModel returns the configured model name.
func (c *AnthropicClient) GetModel() string {
	return c.model
}

// GetEndpoint returns the configured endpoint.
func (c *AnthropicClient) GetEndpoint() string {
	return c.endpoint
}
