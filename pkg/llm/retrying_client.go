package llm

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-askdb/pkg/retry"
)

// RetryingClient retries transient model failures (timeouts, 429, 5xx) with backoff.
// Permanent failures such as bad credentials return on the first attempt.
type RetryingClient struct {
	next   ChatClient
	cfg    *retry.Config
	logger *zap.Logger
}

var _ ChatClient = (*RetryingClient)(nil)

// NewRetryingClient wraps next with bounded retries.
func NewRetryingClient(next ChatClient, cfg *retry.Config, logger *zap.Logger) *RetryingClient {
	return &RetryingClient{
		next:   next,
		cfg:    cfg,
		logger: logger.Named("llm-retry"),
	}
}

// Chat implements ChatClient.
func (c *RetryingClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	attempt := 0
	return retry.DoIfRetryableWithResult(ctx, c.cfg, func() (*ChatResponse, error) {
		attempt++
		if attempt > 1 {
			c.logger.Warn("Retrying LLM request",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", c.cfg.MaxRetries),
				zap.String("model", c.next.GetModel()))
		}
		return c.next.Chat(ctx, req)
	})
}

// GetModel implements ChatClient.
func (c *RetryingClient) GetModel() string {
	return c.next.GetModel()
}

// GetEndpoint implements ChatClient.
func (c *RetryingClient) GetEndpoint() string {
	return c.next.GetEndpoint()
}
