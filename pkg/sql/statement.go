package sql

import (
	"regexp"
	"strings"

	"github.com/ekaya-inc/ekaya-askdb/pkg/models"
)

var (
	// writeKeywordPattern finds data-modifying or procedural verbs anywhere in executable text.
	// Catches T-SQL forms a leading-verb check misses, e.g.
	//   WITH doomed AS (SELECT ...) DELETE FROM doomed
	writeKeywordPattern = regexp.MustCompile(`(?i)\b(INSERT|UPDATE|DELETE|MERGE|DROP|ALTER|CREATE|TRUNCATE|EXEC|EXECUTE|GRANT|REVOKE|DENY)\b`)

	// selectIntoPattern finds SELECT ... INTO, which creates a table in SQL Server.
	selectIntoPattern = regexp.MustCompile(`(?i)\bINTO\b`)
)

// DetectStatementType classifies a statement by its leading verb.
// Literals, quoted identifiers, and comments are ignored so that a column named
// [Update] or a string containing 'DELETE' does not change the result.
func DetectStatementType(sqlText string) models.StatementType {
	code := strings.TrimSpace(scan(sqlText).code)
	code = strings.TrimLeft(code, "( \t\r\n")
	upper := strings.ToUpper(code)

	switch {
	case hasVerb(upper, "SELECT"):
		if selectIntoPattern.MatchString(code) {
			return models.StatementDDL
		}
		if writeKeywordPattern.MatchString(code) {
			return models.StatementUnknown
		}
		return models.StatementSelect

	case hasVerb(upper, "WITH"):
		if writeKeywordPattern.MatchString(code) || selectIntoPattern.MatchString(code) {
			return models.StatementUnknown
		}
		return models.StatementWith

	case hasVerb(upper, "INSERT"):
		return models.StatementInsert
	case hasVerb(upper, "UPDATE"):
		return models.StatementUpdate
	case hasVerb(upper, "DELETE"):
		return models.StatementDelete
	case hasVerb(upper, "MERGE"):
		return models.StatementMerge
	case hasVerb(upper, "EXEC"), hasVerb(upper, "EXECUTE"):
		return models.StatementExec

	case hasVerb(upper, "CREATE"),
		hasVerb(upper, "ALTER"),
		hasVerb(upper, "DROP"),
		hasVerb(upper, "TRUNCATE"):
		return models.StatementDDL

	default:
		return models.StatementUnknown
	}
}

// hasVerb reports whether upper starts with verb followed by a non-identifier character.
func hasVerb(upper, verb string) bool {
	if !strings.HasPrefix(upper, verb) {
		return false
	}
	if len(upper) == len(verb) {
		return true
	}
	c := upper[len(verb)]
	return !(c == '_' || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'))
}
