package models

import (
	"fmt"
	"sort"
	"strings"
)

// ColumnRef identifies a column by schema, table, and column name.
type ColumnRef struct {
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Column string `json:"column"`
}

// Key returns the fully-qualified bracketed path, e.g. [Employees].[Employees].[Salary].
func (c ColumnRef) Key() string {
	return fmt.Sprintf("[%s].[%s].[%s]", c.Schema, c.Table, c.Column)
}

// SchemaMetadata maps fully-qualified column paths to declared data types for one schema.
// It is built fresh for every question and never cached.
type SchemaMetadata struct {
	Schema  string            `json:"schema"`
	Columns map[string]string `json:"columns"`
}

// NewSchemaMetadata creates an empty metadata map for a schema.
func NewSchemaMetadata(schema string) *SchemaMetadata {
	return &SchemaMetadata{
		Schema:  schema,
		Columns: make(map[string]string),
	}
}

// Add records the declared type of a column.
func (m *SchemaMetadata) Add(ref ColumnRef, dataType string) {
	m.Columns[ref.Key()] = dataType
}

// Len returns the number of columns.
func (m *SchemaMetadata) Len() int {
	return len(m.Columns)
}

// IsEmpty returns true if no columns were found.
func (m *SchemaMetadata) IsEmpty() bool {
	return len(m.Columns) == 0
}

// Keys returns the column paths sorted so prompt text is stable across calls.
func (m *SchemaMetadata) Keys() []string {
	keys := make([]string, 0, len(m.Columns))
	for k := range m.Columns {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders one "path: type" line per column in key order.
func (m *SchemaMetadata) String() string {
	var b strings.Builder
	for _, k := range m.Keys() {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(m.Columns[k])
		b.WriteString("\n")
	}
	return b.String()
}
