package llm

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-askdb/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-askdb/pkg/retry"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// NewChatClient creates a client for the configured provider.
// When retryCfg allows retries the client is wrapped in a RetryingClient.
func NewChatClient(cfg *Config, retryCfg *retry.Config, logger *zap.Logger) (ChatClient, error) {
	var (
		client ChatClient
		err    error
	)

	switch strings.ToLower(cfg.Provider) {
	case "", ProviderOpenAI:
		client, err = NewOpenAIClient(cfg, logger)
	case ProviderAnthropic:
		client, err = NewAnthropicClient(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedProvider, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", cfg.Provider, err)
	}

	if retryCfg.Disabled() {
		return client, nil
	}
	return NewRetryingClient(client, retryCfg, logger), nil
}
