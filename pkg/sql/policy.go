package sql

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/ekaya-askdb/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-askdb/pkg/models"
)

// Policy decides whether a generated statement may be sent to the database.
type Policy struct {
	// AllowedVerbs is the allow-list of statement classes (e.g. SELECT, WITH).
	// Empty disables the verb check and trusts the model.
	AllowedVerbs []models.StatementType
	// CheckLiterals enables libinjection screening of string literals.
	CheckLiterals bool
}

// DefaultPolicy allows read queries only and screens literals.
func DefaultPolicy() Policy {
	return Policy{
		AllowedVerbs:  []models.StatementType{models.StatementSelect, models.StatementWith},
		CheckLiterals: true,
	}
}

// ParseVerbs converts a comma-separated verb list ("SELECT, with") into statement types.
// Unknown verbs are rejected so a typo cannot silently widen or narrow the policy.
func ParseVerbs(value string) ([]models.StatementType, error) {
	var verbs []models.StatementType
	for _, part := range strings.Split(value, ",") {
		v := strings.ToUpper(strings.TrimSpace(part))
		if v == "" {
			continue
		}
		switch models.StatementType(v) {
		case models.StatementSelect, models.StatementWith, models.StatementInsert,
			models.StatementUpdate, models.StatementDelete, models.StatementMerge,
			models.StatementExec, models.StatementDDL:
			verbs = append(verbs, models.StatementType(v))
		default:
			return nil, fmt.Errorf("unknown statement verb %q", part)
		}
	}
	return verbs, nil
}

// PolicyError is returned when a statement is rejected.
type PolicyError struct {
	Type      models.StatementType
	Reason    string
	Statement string
	// Injection is the flagged literal when the rejection came from literal screening.
	Injection *InjectionCheckResult
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("%s: %s", apperrors.ErrStatementNotAllowed.Error(), e.Reason)
}

// Unwrap lets errors.Is match apperrors.ErrStatementNotAllowed.
func (e *PolicyError) Unwrap() error {
	return apperrors.ErrStatementNotAllowed
}

// Check validates a statement against the policy and returns its detected type.
func (p Policy) Check(sqlText string) (models.StatementType, error) {
	result := ValidateAndNormalize(sqlText)
	if result.Error != nil {
		return models.StatementUnknown, &PolicyError{Type: models.StatementUnknown, Reason: result.Error.Error(), Statement: sqlText}
	}

	stmtType := DetectStatementType(result.NormalizedSQL)

	if len(p.AllowedVerbs) > 0 && !p.allows(stmtType) {
		return stmtType, &PolicyError{
			Type:      stmtType,
			Reason:    fmt.Sprintf("%s statements are not in the allow-list (%s)", stmtType, p.verbList()),
			Statement: sqlText,
		}
	}

	if p.CheckLiterals {
		if hits := CheckLiteralsForInjection(result.NormalizedSQL); len(hits) > 0 {
			return stmtType, &PolicyError{
				Type:      stmtType,
				Reason:    fmt.Sprintf("string literal matches an injection pattern (fingerprint %s)", hits[0].Fingerprint),
				Statement: sqlText,
				Injection: hits[0],
			}
		}
	}

	return stmtType, nil
}

func (p Policy) allows(t models.StatementType) bool {
	for _, v := range p.AllowedVerbs {
		if v == t {
			return true
		}
	}
	return false
}

func (p Policy) verbList() string {
	parts := make([]string, len(p.AllowedVerbs))
	for i, v := range p.AllowedVerbs {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
