package models

// StatementType is the leading verb class of a SQL statement.
type StatementType string

const (
	StatementSelect  StatementType = "SELECT"
	StatementWith    StatementType = "WITH"
	StatementInsert  StatementType = "INSERT"
	StatementUpdate  StatementType = "UPDATE"
	StatementDelete  StatementType = "DELETE"
	StatementMerge   StatementType = "MERGE"
	StatementExec    StatementType = "EXEC"
	StatementDDL     StatementType = "DDL" // CREATE, ALTER, DROP, TRUNCATE
	StatementUnknown StatementType = "UNKNOWN"
)

// IsReadOnly returns true for statement types that cannot modify data.
func (t StatementType) IsReadOnly() bool {
	return t == StatementSelect || t == StatementWith
}

// GeneratedQuery is a single terminated SQL statement extracted from model output.
type GeneratedQuery struct {
	// SQL is the extracted span, including the terminating semicolon.
	SQL string `json:"sql"`
	// Type is the detected statement class.
	Type StatementType `json:"type"`
	// Model is the model identifier that produced the statement.
	Model string `json:"model"`
	// RawResponse is the unprocessed model output, kept for logging and debugging.
	RawResponse string `json:"-"`
}
