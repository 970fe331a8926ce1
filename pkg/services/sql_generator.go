package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-askdb/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-askdb/pkg/llm"
	"github.com/ekaya-inc/ekaya-askdb/pkg/logging"
	"github.com/ekaya-inc/ekaya-askdb/pkg/models"
	"github.com/ekaya-inc/ekaya-askdb/pkg/prompts"
	sqlpolicy "github.com/ekaya-inc/ekaya-askdb/pkg/sql"
)

// ModelSettings are the per-call sampling settings of one model call site.
type ModelSettings struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// DefaultGenerationSettings is a low-randomness setting so repeated questions
// tend to produce the same statement shape.
var DefaultGenerationSettings = ModelSettings{Model: "llama-3.1-8b-instant", Temperature: 0.3}

// SQLGenerator turns a question plus schema metadata into one SQL statement.
type SQLGenerator interface {
	// GenerateSQL prompts the model and extracts the first SELECT ... ; span from its reply.
	// Failures are returned as a *StageError for StageGeneration with Kind transport,
	// no_sql, or policy.
	GenerateSQL(ctx context.Context, question string, metadata *models.SchemaMetadata, dialect datasource.Dialect) (*models.GeneratedQuery, error)
}

type sqlGenerator struct {
	client   llm.ChatClient
	settings ModelSettings
	policy   sqlpolicy.Policy
	logger   *zap.Logger
}

// NewSQLGenerator creates a generator that checks every extracted statement against policy.
func NewSQLGenerator(client llm.ChatClient, settings ModelSettings, policy sqlpolicy.Policy, logger *zap.Logger) SQLGenerator {
	return &sqlGenerator{
		client:   client,
		settings: settings,
		policy:   policy,
		logger:   logger.Named("sql-generator"),
	}
}

var _ SQLGenerator = (*sqlGenerator)(nil)

func (g *sqlGenerator) GenerateSQL(ctx context.Context, question string, metadata *models.SchemaMetadata, dialect datasource.Dialect) (*models.GeneratedQuery, error) {
	req := &llm.ChatRequest{
		Model: g.settings.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompts.SQLGenerationSystemMessage},
			{Role: llm.RoleUser, Content: prompts.BuildSQLGenerationPrompt(question, metadata, dialect)},
		},
		Temperature: g.settings.Temperature,
		MaxTokens:   g.settings.MaxTokens,
	}

	resp, err := g.client.Chat(ctx, req)
	if err != nil {
		g.logger.Error("SQL generation call failed",
			zap.String("model", g.model()),
			zap.String("error", logging.SanitizeError(err)))
		return nil, newGenerationError(KindTransport, err)
	}

	statement, err := sqlpolicy.ExtractStatement(resp.Content)
	if err != nil {
		g.logger.Warn("No SQL statement in model output",
			zap.String("model", g.model()),
			zap.String("output", logging.TruncateString(resp.Content, 500)))
		return nil, newGenerationError(KindNoSQL, err)
	}

	stmtType, err := g.policy.Check(statement)
	if err != nil {
		var policyErr *sqlpolicy.PolicyError
		if errors.As(err, &policyErr) {
			g.logger.Warn("Generated statement rejected by policy",
				zap.String("type", string(policyErr.Type)),
				zap.String("sql", logging.SanitizeQuery(statement)),
				zap.String("reason", policyErr.Reason))
		}
		return nil, newGenerationError(KindPolicy, err)
	}

	model := resp.Model
	if model == "" {
		model = g.model()
	}

	g.logger.Info("Generated SQL",
		zap.String("model", model),
		zap.String("type", string(stmtType)),
		zap.String("sql", logging.SanitizeQuery(statement)))

	return &models.GeneratedQuery{
		SQL:         statement,
		Type:        stmtType,
		Model:       model,
		RawResponse: resp.Content,
	}, nil
}

func (g *sqlGenerator) model() string {
	if g.settings.Model != "" {
		return g.settings.Model
	}
	return g.client.GetModel()
}
