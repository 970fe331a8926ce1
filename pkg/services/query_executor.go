package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-askdb/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-askdb/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-askdb/pkg/logging"
	"github.com/ekaya-inc/ekaya-askdb/pkg/models"
)

// QueryExecutor runs a generated statement and materializes its rows.
type QueryExecutor interface {
	// Execute runs query against executor. Engine errors are returned verbatim
	// inside a *StageError for StageExecution and are never retried.
	Execute(ctx context.Context, executor datasource.QueryExecutor, query *models.GeneratedQuery) (*models.QueryResult, error)
}

type queryExecutor struct {
	logger *zap.Logger
}

// NewQueryExecutor creates a query executor.
func NewQueryExecutor(logger *zap.Logger) QueryExecutor {
	return &queryExecutor{
		logger: logger.Named("query-executor"),
	}
}

var _ QueryExecutor = (*queryExecutor)(nil)

func (e *queryExecutor) Execute(ctx context.Context, executor datasource.QueryExecutor, query *models.GeneratedQuery) (*models.QueryResult, error) {
	if executor == nil {
		return nil, newStageError(StageExecution, apperrors.ErrNotConnected)
	}

	start := time.Now()
	raw, err := executor.Query(ctx, query.SQL)
	if err != nil {
		e.logger.Error("Query execution failed",
			zap.String("sql", logging.SanitizeQuery(query.SQL)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, newStageError(StageExecution, err)
	}

	result := &models.QueryResult{
		Columns: make([]models.ResultColumn, len(raw.Columns)),
		Rows:    raw.Rows,
	}
	for i, c := range raw.Columns {
		result.Columns[i] = models.ResultColumn{Name: c.Name, Type: c.Type}
	}
	if result.Rows == nil {
		result.Rows = []map[string]any{}
	}

	e.logger.Info("Query executed",
		zap.Int("rows", result.RowCount()),
		zap.Int("columns", len(result.Columns)),
		zap.Duration("elapsed", time.Since(start)))

	return result, nil
}
