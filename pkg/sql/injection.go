package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult describes a string literal that libinjection flagged.
type InjectionCheckResult struct {
	IsSQLi      bool   // True if SQL injection pattern detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	Literal     string // Unescaped literal contents
	Position    int    // Index of the literal within the statement (0-based)
}

// CheckLiteralsForInjection runs libinjection over every single-quoted literal in a
// generated statement. A literal such as 'x'' OR 1=1 --' is legal SQL after escaping,
// but its contents are an injection payload carried in from the question.
//
// Returns nil if every literal is clean.
func CheckLiteralsForInjection(sqlText string) []*InjectionCheckResult {
	var results []*InjectionCheckResult
	for i, lit := range scan(sqlText).literals {
		if lit == "" {
			continue
		}
		isSQLi, fingerprint := libinjection.IsSQLi(lit)
		if isSQLi {
			results = append(results, &InjectionCheckResult{
				IsSQLi:      true,
				Fingerprint: string(fingerprint),
				Literal:     lit,
				Position:    i,
			})
		}
	}
	return results
}
