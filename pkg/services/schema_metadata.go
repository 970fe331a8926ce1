package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-askdb/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-askdb/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-askdb/pkg/logging"
	"github.com/ekaya-inc/ekaya-askdb/pkg/models"
)

// SchemaMetadataProvider builds the column/type map used to ground SQL generation.
type SchemaMetadataProvider interface {
	// ExtractMetadata reads the live catalog for schema. Nothing is cached between calls.
	// Failures are returned as a *StageError for StageMetadata.
	ExtractMetadata(ctx context.Context, catalog datasource.CatalogReader, schema string) (*models.SchemaMetadata, error)
}

type schemaMetadataProvider struct {
	logger *zap.Logger
}

// NewSchemaMetadataProvider creates a metadata provider.
func NewSchemaMetadataProvider(logger *zap.Logger) SchemaMetadataProvider {
	return &schemaMetadataProvider{
		logger: logger.Named("schema-metadata"),
	}
}

var _ SchemaMetadataProvider = (*schemaMetadataProvider)(nil)

func (p *schemaMetadataProvider) ExtractMetadata(ctx context.Context, catalog datasource.CatalogReader, schema string) (*models.SchemaMetadata, error) {
	if catalog == nil {
		return nil, newStageError(StageMetadata, apperrors.ErrNotConnected)
	}

	start := time.Now()
	columns, err := catalog.ListColumns(ctx, schema)
	if err != nil {
		p.logger.Error("Catalog query failed",
			zap.String("schema", schema),
			zap.String("error", logging.SanitizeError(err)))
		return nil, newStageError(StageMetadata, err)
	}

	metadata := models.NewSchemaMetadata(schema)
	for _, c := range columns {
		metadata.Add(models.ColumnRef{Schema: c.SchemaName, Table: c.TableName, Column: c.ColumnName}, c.DataType)
	}

	if metadata.IsEmpty() {
		return nil, newStageError(StageMetadata, fmt.Errorf("%w: no base table columns in %q", apperrors.ErrUnknownSchema, schema))
	}

	p.logger.Debug("Extracted schema metadata",
		zap.String("schema", schema),
		zap.Int("columns", metadata.Len()),
		zap.Duration("elapsed", time.Since(start)))

	return metadata, nil
}
