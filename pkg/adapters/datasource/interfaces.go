package datasource

import "context"

// ConnectionTester tests database connectivity.
// Each implementation owns its connection and must be closed when done.
type ConnectionTester interface {
	// TestConnection verifies the database is reachable with valid credentials.
	// Returns nil if connection is healthy, error otherwise.
	TestConnection(ctx context.Context) error

	// Close releases the database connection.
	Close() error
}

// CatalogReader reads the database catalog for schema discovery and prompt metadata.
type CatalogReader interface {
	// ListBaseTables returns every base table (views excluded) as schema/table pairs.
	ListBaseTables(ctx context.Context) ([]TableMetadata, error)

	// ListColumns returns every column of every base table in schemaName.
	// The schema name is passed as a bound parameter, never interpolated.
	ListColumns(ctx context.Context, schemaName string) ([]ColumnMetadata, error)
}

// QueryExecutor runs generated SQL against the database.
type QueryExecutor interface {
	// Query executes sqlQuery and materializes the full result set.
	// Implementations run the statement in a transaction that is always rolled back.
	Query(ctx context.Context, sqlQuery string) (*QueryExecutionResult, error)
}

// Connection is an open datasource able to serve a chat session.
type Connection interface {
	ConnectionTester
	CatalogReader
	QueryExecutor

	// Dialect names the SQL dialect generated queries must use.
	Dialect() Dialect
}
