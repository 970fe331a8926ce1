package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/ekaya-inc/ekaya-askdb/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-askdb/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-askdb/pkg/models"
)

// Greeting is the assistant turn every transcript starts with.
const Greeting = "How can I help you with your database today?"

// Session is the explicit per-user context passed into each pipeline call:
// the connection, the schemas discovered on it, the selected schema, and the transcript.
// A session serves one turn at a time.
type Session struct {
	ID         uuid.UUID
	conn       datasource.Connection
	tables     map[string][]string
	schemas    []string
	selected   string
	transcript *models.Transcript
}

// NewSession discovers the schemas that contain base tables and seeds the transcript
// with the greeting. The session uses conn but does not own it.
func NewSession(ctx context.Context, conn datasource.Connection) (*Session, error) {
	if conn == nil {
		return nil, apperrors.ErrNotConnected
	}

	baseTables, err := conn.ListBaseTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover schemas: %w", err)
	}

	tables := make(map[string][]string)
	for _, t := range baseTables {
		tables[t.SchemaName] = append(tables[t.SchemaName], t.TableName)
	}

	schemas := make([]string, 0, len(tables))
	for name, names := range tables {
		sort.Strings(names)
		schemas = append(schemas, name)
	}
	sort.Strings(schemas)

	s := &Session{
		ID:         uuid.New(),
		conn:       conn,
		tables:     tables,
		schemas:    schemas,
		transcript: models.NewTranscript(),
	}
	s.transcript.Append(models.NewConversationTurn(models.TurnRoleAssistant, Greeting))

	return s, nil
}

// Connection returns the session's connection handle.
func (s *Session) Connection() datasource.Connection {
	return s.conn
}

// Schemas returns the discovered schema names in sorted order.
func (s *Session) Schemas() []string {
	out := make([]string, len(s.schemas))
	copy(out, s.schemas)
	return out
}

// HasSchema reports whether name was discovered on this connection.
func (s *Session) HasSchema(name string) bool {
	_, ok := s.tables[name]
	return ok
}

// Tables returns the base tables of schema in sorted order.
func (s *Session) Tables(schema string) ([]string, error) {
	names, ok := s.tables[schema]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownSchema, schema)
	}
	out := make([]string, len(names))
	copy(out, names)
	return out, nil
}

// SelectSchema sets the schema later questions are asked against.
func (s *Session) SelectSchema(name string) error {
	if !s.HasSchema(name) {
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownSchema, name)
	}
	s.selected = name
	return nil
}

// SelectedSchema returns the current schema, or "" if none is selected.
func (s *Session) SelectedSchema() string {
	return s.selected
}

// Transcript returns the session transcript.
func (s *Session) Transcript() *models.Transcript {
	return s.transcript
}
