package logging

import (
	"regexp"
)

const (
	// MaxQueryLogLength is the maximum length of a query to log
	MaxQueryLogLength = 200
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// Matches password=xxx, pwd=xxx, pass=xxx (until next delimiter).
	// Also covers the "password" query parameter of sqlserver:// URLs.
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// Bearer tokens (JWT or opaque) sent to LLM endpoints
	bearerPattern = regexp.MustCompile(`Bearer\s+[A-Za-z0-9\-_.]+`)

	// api_key=xxx style parameters
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)=[A-Za-z0-9\-_]{20,}`)

	// Provider keys that show up verbatim in error bodies: sk-..., sk-ant-..., gsk_...
	providerKeyPattern = regexp.MustCompile(`\b(sk-ant-|sk-|gsk_)[A-Za-z0-9\-_]{16,}`)

	// user:pass@host credentials in sqlserver:// and https:// URLs
	connStringPattern = regexp.MustCompile(`://[^:/\s]+:[^@\s]+@[^/\s?]+`)
)

// SanitizeConnectionString removes sensitive data from connection strings.
// Use this before logging any DSN.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)

	return sanitized
}

// SanitizeError sanitizes error messages that might contain credentials.
// Database driver and LLM transport errors both go through this before logging
// or being shown to the user.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeMessage(err.Error())
}

// SanitizeMessage applies the error redaction rules to a plain string.
func SanitizeMessage(msg string) string {
	sanitized := passwordPattern.ReplaceAllString(msg, "${1}="+RedactedText)
	sanitized = bearerPattern.ReplaceAllString(sanitized, "Bearer "+RedactedText)
	sanitized = apiKeyPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = providerKeyPattern.ReplaceAllString(sanitized, "${1}"+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)
	return sanitized
}

// SanitizeQuery truncates and sanitizes a SQL query for logging.
func SanitizeQuery(query string) string {
	if query == "" {
		return ""
	}

	sanitized := TruncateString(query, MaxQueryLogLength)
	sanitized = passwordPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = apiKeyPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)

	return sanitized
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
