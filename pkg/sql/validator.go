// Package sql provides SQL extraction, validation, and statement policy utilities.
package sql

import (
	"errors"
	"strings"
)

var (
	// ErrMultipleStatements indicates the query contains multiple SQL statements.
	ErrMultipleStatements = errors.New("multiple SQL statements not allowed; only single statements are permitted")
)

// ValidationResult contains the normalized SQL and any validation errors.
type ValidationResult struct {
	NormalizedSQL string
	Error         error
}

// ValidateAndNormalize checks SQL for multiple statements and strips the trailing semicolon.
//
// The validation order is:
// 1. Strip trailing semicolon and whitespace (normalize)
// 2. Check for multiple statements (any remaining semicolons outside literals, identifiers, and comments)
func ValidateAndNormalize(sqlQuery string) ValidationResult {
	sqlQuery = strings.TrimSpace(sqlQuery)

	if sqlQuery == "" {
		return ValidationResult{NormalizedSQL: sqlQuery}
	}

	normalized := stripTrailingSemicolon(sqlQuery)

	if err := detectMultipleStatements(normalized); err != nil {
		return ValidationResult{Error: err}
	}

	return ValidationResult{NormalizedSQL: normalized}
}

// detectMultipleStatements checks if the SQL contains multiple statements.
// Since the trailing semicolon has already been stripped, any remaining
// semicolon in executable text indicates a batch.
func detectMultipleStatements(sqlQuery string) error {
	if hasSemicolonOutsideStrings(sqlQuery) {
		return ErrMultipleStatements
	}
	return nil
}

// hasSemicolonOutsideStrings returns true if the SQL contains any semicolon
// outside of string literals, quoted identifiers, and comments.
func hasSemicolonOutsideStrings(sqlQuery string) bool {
	return strings.ContainsRune(scan(sqlQuery).code, ';')
}

// stripTrailingSemicolon removes a trailing semicolon and any whitespace after it.
func stripTrailingSemicolon(sqlQuery string) string {
	sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")

	if strings.HasSuffix(sqlQuery, ";") {
		sqlQuery = strings.TrimSuffix(sqlQuery, ";")
		sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	}

	return sqlQuery
}
