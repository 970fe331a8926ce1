// Package audit provides security audit logging for SIEM consumption.
// It logs security-relevant events about generated SQL in structured JSON format
// for easy parsing and integration with security information and event management systems.
package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-askdb/pkg/logging"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventSQLInjectionAttempt is logged when libinjection flags a literal in generated SQL.
	EventSQLInjectionAttempt SecurityEventType = "sql_injection_attempt"
	// EventStatementRejected is logged when a generated statement is outside the verb allow-list.
	EventStatementRejected SecurityEventType = "statement_rejected"
	// EventQueryExecution is logged for every generated statement that was executed.
	EventQueryExecution SecurityEventType = "query_execution"
)

// SecurityEvent represents an auditable security event with all relevant context
// for SIEM ingestion and analysis.
type SecurityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	SessionID uuid.UUID         `json:"session_id"`
	TurnID    uuid.UUID         `json:"turn_id"`
	Schema    string            `json:"schema,omitempty"`
	Details   any               `json:"details"`
	Severity  string            `json:"severity"` // info, warning, critical
}

// TurnRef identifies the turn an event belongs to.
type TurnRef struct {
	SessionID uuid.UUID
	TurnID    uuid.UUID
	Schema    string
}

// SQLInjectionDetails contains specifics of a flagged literal.
type SQLInjectionDetails struct {
	Literal     string `json:"literal"`
	Fingerprint string `json:"fingerprint"` // libinjection fingerprint for pattern analysis
	SQL         string `json:"sql"`
}

// StatementRejectedDetails describes a statement the policy refused to run.
type StatementRejectedDetails struct {
	StatementType string `json:"statement_type"`
	Reason        string `json:"reason"`
	SQL           string `json:"sql"`
}

// QueryExecutionDetails describes an executed statement.
type QueryExecutionDetails struct {
	StatementType string `json:"statement_type"`
	SQL           string `json:"sql"`
	Rows          int    `json:"rows"`
}

// SecurityAuditor logs security events for SIEM consumption.
// Events are logged in structured JSON format with appropriate severity levels.
type SecurityAuditor struct {
	logger *zap.Logger
}

// NewSecurityAuditor creates a new security auditor with a dedicated logger namespace.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{logger: logger.Named("security_audit")}
}

func (a *SecurityAuditor) event(eventType SecurityEventType, ref TurnRef, severity string, details any) string {
	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		SessionID: ref.SessionID,
		TurnID:    ref.TurnID,
		Schema:    ref.Schema,
		Details:   details,
		Severity:  severity,
	}
	// Marshaling known types does not fail.
	eventJSON, _ := json.Marshal(event)
	return string(eventJSON)
}

func refFields(ref TurnRef) []zap.Field {
	return []zap.Field{
		zap.String("session_id", ref.SessionID.String()),
		zap.String("turn_id", ref.TurnID.String()),
		zap.String("schema", ref.Schema),
	}
}

// LogInjectionAttempt records generated SQL whose literal matched an injection pattern.
// Logged at ERROR level with "critical" severity: the payload most likely came from the question.
func (a *SecurityAuditor) LogInjectionAttempt(ref TurnRef, details SQLInjectionDetails) {
	details.SQL = logging.SanitizeQuery(details.SQL)
	eventJSON := a.event(EventSQLInjectionAttempt, ref, "critical", details)

	a.logger.Error("SQL injection attempt detected",
		append(refFields(ref),
			zap.String("event_json", eventJSON),
			zap.String("fingerprint", details.Fingerprint),
			zap.String("severity", "critical"))...)
}

// LogStatementRejected records a generated statement outside the allow-list.
// Logged at WARN level: models produce these without any malicious input.
func (a *SecurityAuditor) LogStatementRejected(ref TurnRef, details StatementRejectedDetails) {
	details.SQL = logging.SanitizeQuery(details.SQL)
	eventJSON := a.event(EventStatementRejected, ref, "warning", details)

	a.logger.Warn("Generated statement rejected",
		append(refFields(ref),
			zap.String("event_json", eventJSON),
			zap.String("statement_type", details.StatementType),
			zap.String("severity", "warning"))...)
}

// LogQueryExecution records an executed statement for the audit trail.
func (a *SecurityAuditor) LogQueryExecution(ref TurnRef, details QueryExecutionDetails) {
	details.SQL = logging.SanitizeQuery(details.SQL)
	eventJSON := a.event(EventQueryExecution, ref, "info", details)

	a.logger.Info("Query executed",
		append(refFields(ref),
			zap.String("event_json", eventJSON),
			zap.Int("rows", details.Rows),
			zap.String("severity", "info"))...)
}
