package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	mssqldb "github.com/microsoft/go-mssqldb"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-askdb/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-askdb/pkg/logging"
)

// Query executes sqlQuery inside a transaction that is always rolled back,
// so a statement that slips past policy cannot persist changes.
// Every row is materialized before returning.
func (a *Adapter) Query(ctx context.Context, sqlQuery string) (*datasource.QueryExecutionResult, error) {
	start := time.Now()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			a.logger.Warn("Rollback failed", zap.Error(rbErr))
		}
	}()

	rows, err := tx.QueryContext(ctx, sqlQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("Query executed",
		zap.String("sql", logging.SanitizeQuery(sqlQuery)),
		zap.Int("rows", result.RowCount),
		zap.Duration("elapsed", time.Since(start)))

	return result, nil
}

// scanRows materializes rows, keeping the select-list column order.
func scanRows(rows *sql.Rows) (*datasource.QueryExecutionResult, error) {
	columnNames, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to get column types: %w", err)
	}

	names := uniqueColumnNames(columnNames)
	columns := make([]datasource.ColumnInfo, len(names))
	dbTypes := make([]string, len(names))
	for i, name := range names {
		dbTypes[i] = columnTypes[i].DatabaseTypeName()
		columns[i] = datasource.ColumnInfo{
			Name: name,
			Type: mapSQLServerType(dbTypes[i]),
		}
	}

	resultRows := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(names))
		valuePtrs := make([]any, len(names))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		rowMap := make(map[string]any, len(names))
		for i, name := range names {
			rowMap[name] = convertValue(values[i], dbTypes[i])
		}
		resultRows = append(resultRows, rowMap)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &datasource.QueryExecutionResult{
		Columns:  columns,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}

// convertValue turns driver byte slices into readable values.
// Text, decimal and money columns arrive as []byte; GUIDs arrive in SQL Server's mixed-endian layout.
func convertValue(val any, dbType string) any {
	b, ok := val.([]byte)
	if !ok {
		return val
	}

	switch {
	case isUniqueIdentifier(dbType):
		var id mssqldb.UniqueIdentifier
		if err := id.Scan(b); err == nil {
			return id.String()
		}
		return b
	case isStringType(dbType), isNumericType(dbType), dbType == "":
		return string(b)
	default:
		return b
	}
}
