package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-askdb/pkg/adapters/datasource"
	_ "github.com/ekaya-inc/ekaya-askdb/pkg/adapters/datasource/mssql" // registers the mssql adapter
	"github.com/ekaya-inc/ekaya-askdb/pkg/config"
	"github.com/ekaya-inc/ekaya-askdb/pkg/llm"
	"github.com/ekaya-inc/ekaya-askdb/pkg/logging"
	"github.com/ekaya-inc/ekaya-askdb/pkg/retry"
	"github.com/ekaya-inc/ekaya-askdb/pkg/services"
	sqlpolicy "github.com/ekaya-inc/ekaya-askdb/pkg/sql"
)

// app holds what every command needs after the config is loaded.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newApp(configPath, version string) (*app, error) {
	cfg, err := config.Load(configPath, version)
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	return &app{cfg: cfg, logger: logger}, nil
}

// connect opens the configured datasource.
func (a *app) connect(ctx context.Context) (datasource.Connection, error) {
	conn, err := datasource.NewConnection(ctx, a.cfg.Datasource.Type, a.cfg.Datasource.DatasourceMap(), a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %s", a.cfg.Datasource.Type, logging.SanitizeError(err))
	}
	return conn, nil
}

// close flushes buffered log entries.
func (a *app) close() {
	_ = a.logger.Sync()
}

// buildPipeline wires both model endpoints, the statement policy, and the four stages.
func buildPipeline(cfg *config.Config, logger *zap.Logger) (*services.Pipeline, error) {
	verbs, err := sqlpolicy.ParseVerbs(cfg.Policy.AllowedVerbs)
	if err != nil {
		return nil, fmt.Errorf("policy.allowed_verbs: %w", err)
	}
	policy := sqlpolicy.Policy{AllowedVerbs: verbs, CheckLiterals: cfg.Policy.CheckLiterals}
	if len(verbs) == 0 {
		logger.Warn("Statement verb allow-list is empty; generated SQL of any type will be executed")
	}

	retryCfg := &retry.Config{
		MaxRetries:       cfg.Retry.MaxRetries,
		InitialDelay:     cfg.Retry.InitialDelay,
		MaxDelay:         cfg.Retry.MaxDelay,
		Multiplier:       2.0,
		JitterFactor:     0.1,
		MaxSameErrorType: 3,
	}

	generation := cfg.Generation.Endpoint()
	genClient, err := newChatClient(generation, retryCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("generation model: %w", err)
	}

	explanation := cfg.Explanation.Endpoint()
	explainClient, err := newChatClient(explanation, retryCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("explanation model: %w", err)
	}

	return services.NewPipeline(
		services.NewSchemaMetadataProvider(logger),
		services.NewSQLGenerator(genClient, settingsOf(generation), policy, logger),
		services.NewQueryExecutor(logger),
		services.NewResultExplainer(explainClient, settingsOf(explanation), logger),
		logger,
	), nil
}

func newChatClient(ep config.ModelEndpoint, retryCfg *retry.Config, logger *zap.Logger) (llm.ChatClient, error) {
	return llm.NewChatClient(&llm.Config{
		Provider:  ep.Provider,
		Endpoint:  ep.BaseURL,
		Model:     ep.Model,
		APIKey:    ep.APIKey,
		MaxTokens: ep.MaxTokens,
	}, retryCfg, logger)
}

func settingsOf(ep config.ModelEndpoint) services.ModelSettings {
	return services.ModelSettings{Model: ep.Model, Temperature: ep.Temperature, MaxTokens: ep.MaxTokens}
}

// openSession connects, discovers schemas, and selects schema when given.
func (a *app) openSession(ctx context.Context, schema string) (datasource.Connection, *services.Session, error) {
	conn, err := a.connect(ctx)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	session, err := services.NewSession(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, nil, errors.New(logging.SanitizeError(err))
	}
	a.logger.Debug("Session opened",
		zap.String("session_id", session.ID.String()),
		zap.Int("schemas", len(session.Schemas())),
		zap.Duration("elapsed", time.Since(start)))

	if schema != "" {
		if err := session.SelectSchema(schema); err != nil {
			conn.Close()
			return nil, nil, err
		}
	}
	return conn, session, nil
}
