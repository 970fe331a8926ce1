package sql

import (
	"regexp"

	"github.com/ekaya-inc/ekaya-askdb/pkg/apperrors"
)

// selectSpanPattern matches the first SELECT through the first semicolon,
// case-insensitively and across newlines.
var selectSpanPattern = regexp.MustCompile(`(?is)SELECT.*?;`)

// ExtractStatement returns the first SELECT ... ; span found in free-form model output,
// including the terminating semicolon. Returns apperrors.ErrNoSQLFound when there is none;
// the caller reports that rather than guessing.
func ExtractStatement(modelOutput string) (string, error) {
	span := selectSpanPattern.FindString(modelOutput)
	if span == "" {
		return "", apperrors.ErrNoSQLFound
	}
	return span, nil
}
