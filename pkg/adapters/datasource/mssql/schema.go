package mssql

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-askdb/pkg/adapters/datasource"
)

const listBaseTablesQuery = `SELECT TABLE_SCHEMA, TABLE_NAME
FROM INFORMATION_SCHEMA.TABLES
WHERE TABLE_TYPE = 'BASE TABLE'
ORDER BY TABLE_SCHEMA, TABLE_NAME`

const listColumnsQuery = `SELECT c.TABLE_SCHEMA, c.TABLE_NAME, c.COLUMN_NAME, c.DATA_TYPE, c.ORDINAL_POSITION
FROM INFORMATION_SCHEMA.COLUMNS c
JOIN INFORMATION_SCHEMA.TABLES t
  ON t.TABLE_SCHEMA = c.TABLE_SCHEMA AND t.TABLE_NAME = c.TABLE_NAME
WHERE c.TABLE_SCHEMA = @schema AND t.TABLE_TYPE = 'BASE TABLE'
ORDER BY c.TABLE_NAME, c.ORDINAL_POSITION`

// ListBaseTables returns every base table as schema/table pairs. Views are excluded.
func (a *Adapter) ListBaseTables(ctx context.Context) ([]datasource.TableMetadata, error) {
	rows, err := a.db.QueryContext(ctx, listBaseTablesQuery)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []datasource.TableMetadata
	for rows.Next() {
		var t datasource.TableMetadata
		if err := rows.Scan(&t.SchemaName, &t.TableName); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}

	a.logger.Debug("Listed base tables", zap.Int("count", len(tables)))
	return tables, nil
}

// ListColumns returns the columns of every base table in schemaName.
func (a *Adapter) ListColumns(ctx context.Context, schemaName string) ([]datasource.ColumnMetadata, error) {
	rows, err := a.db.QueryContext(ctx, listColumnsQuery, sql.Named("schema", schemaName))
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var columns []datasource.ColumnMetadata
	for rows.Next() {
		var c datasource.ColumnMetadata
		if err := rows.Scan(&c.SchemaName, &c.TableName, &c.ColumnName, &c.DataType, &c.OrdinalPosition); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}

	a.logger.Debug("Listed columns",
		zap.String("schema", schemaName),
		zap.Int("count", len(columns)))
	return columns, nil
}
