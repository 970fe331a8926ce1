package datasource

// Dialect describes the SQL flavor a datasource accepts, as needed for prompting.
type Dialect struct {
	Name           string // e.g. "T-SQL"
	RowLimitClause string // e.g. "TOP"
	// ForbiddenClause is the limiting syntax the dialect does not accept.
	ForbiddenClause string
	IdentifierQuote string // opening and closing quote characters
}

// DialectTSQL is Microsoft SQL Server's dialect.
var DialectTSQL = Dialect{
	Name:            "T-SQL",
	RowLimitClause:  "TOP",
	ForbiddenClause: "LIMIT",
	IdentifierQuote: "[]",
}

// TableMetadata represents a discovered base table.
type TableMetadata struct {
	SchemaName string
	TableName  string
}

// ColumnMetadata represents a discovered database column.
type ColumnMetadata struct {
	SchemaName      string
	TableName       string
	ColumnName      string
	DataType        string
	OrdinalPosition int
}

// ColumnInfo describes a column in a query result.
type ColumnInfo struct {
	Name string
	Type string // Normalized type name
}

// QueryExecutionResult contains a fully materialized query result.
// Column order matches the statement's select list.
type QueryExecutionResult struct {
	Columns  []ColumnInfo
	Rows     []map[string]any
	RowCount int
}
