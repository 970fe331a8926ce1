package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-askdb/pkg/format"
	"github.com/ekaya-inc/ekaya-askdb/pkg/llm"
	"github.com/ekaya-inc/ekaya-askdb/pkg/logging"
	"github.com/ekaya-inc/ekaya-askdb/pkg/models"
	"github.com/ekaya-inc/ekaya-askdb/pkg/prompts"
)

// DefaultExplanationSettings favors fluent prose over repeatability.
var DefaultExplanationSettings = ModelSettings{Model: "deepseek-r1-distill-llama-70b", Temperature: 0.7}

// ResultExplainer summarizes a result set in plain language.
type ResultExplainer interface {
	// Explain asks the model to answer question from the CSV form of result.
	// Failures are returned as a *StageError for StageExplanation.
	Explain(ctx context.Context, question string, result *models.QueryResult) (string, error)
}

type resultExplainer struct {
	client   llm.ChatClient
	settings ModelSettings
	logger   *zap.Logger
}

// NewResultExplainer creates a result explainer.
func NewResultExplainer(client llm.ChatClient, settings ModelSettings, logger *zap.Logger) ResultExplainer {
	return &resultExplainer{
		client:   client,
		settings: settings,
		logger:   logger.Named("result-explainer"),
	}
}

var _ ResultExplainer = (*resultExplainer)(nil)

func (x *resultExplainer) Explain(ctx context.Context, question string, result *models.QueryResult) (string, error) {
	req := &llm.ChatRequest{
		Model: x.settings.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompts.ResultExplanationSystemMessage},
			{Role: llm.RoleUser, Content: prompts.BuildResultExplanationPrompt(question, format.CSV(result))},
		},
		Temperature: x.settings.Temperature,
		MaxTokens:   x.settings.MaxTokens,
	}

	resp, err := x.client.Chat(ctx, req)
	if err != nil {
		x.logger.Error("Explanation call failed",
			zap.String("model", x.settings.Model),
			zap.String("error", logging.SanitizeError(err)))
		return "", newStageError(StageExplanation, err)
	}

	if thinking := llm.ExtractThinking(resp.Content); thinking != "" {
		x.logger.Debug("Dropped reasoning from explanation",
			zap.Int("thinking_chars", len(thinking)))
	}

	explanation := llm.StripThinking(resp.Content)
	if strings.TrimSpace(explanation) == "" {
		return "", newStageError(StageExplanation, errors.New("model returned an empty explanation"))
	}

	return explanation, nil
}
