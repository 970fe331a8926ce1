package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAndNormalize_ValidQueries(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple select without semicolon",
			input:    "SELECT 1",
			expected: "SELECT 1",
		},
		{
			name:     "simple select with trailing semicolon",
			input:    "SELECT 1;",
			expected: "SELECT 1",
		},
		{
			name:     "select with leading and trailing whitespace",
			input:    "  SELECT 1;  ",
			expected: "SELECT 1",
		},
		{
			name:     "top clause with bracketed identifiers",
			input:    "SELECT TOP 5 e.[Name] AS employee_name FROM [Employees].[Employees] e;",
			expected: "SELECT TOP 5 e.[Name] AS employee_name FROM [Employees].[Employees] e",
		},
		{
			name:     "semicolon inside literal",
			input:    "SELECT e.Name FROM Employees e WHERE e.Note = 'a;b';",
			expected: "SELECT e.Name FROM Employees e WHERE e.Note = 'a;b'",
		},
		{
			name:     "semicolon inside bracketed identifier",
			input:    "SELECT t.[odd;name] FROM [dbo].[t] t",
			expected: "SELECT t.[odd;name] FROM [dbo].[t] t",
		},
		{
			name:     "doubled quote escape",
			input:    "SELECT e.Name FROM Employees e WHERE e.Name = 'O''Brien';",
			expected: "SELECT e.Name FROM Employees e WHERE e.Name = 'O''Brien'",
		},
		{
			name:     "semicolon inside comment",
			input:    "SELECT 1 -- first; second\n;",
			expected: "SELECT 1 -- first; second",
		},
		{
			name:     "multi-line statement",
			input:    "SELECT e.Name\nFROM Employees e\nORDER BY e.Salary DESC;",
			expected: "SELECT e.Name\nFROM Employees e\nORDER BY e.Salary DESC",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only",
			input:    "   ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateAndNormalize(tt.input)
			require.NoError(t, result.Error)
			assert.Equal(t, tt.expected, result.NormalizedSQL)
		})
	}
}

func TestValidateAndNormalize_MultipleStatements(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "two selects", input: "SELECT 1; SELECT 2"},
		{name: "two selects with trailing", input: "SELECT 1; SELECT 2;"},
		{name: "no space after semicolon", input: "SELECT 1;SELECT 2"},
		{name: "drop table attempt", input: "SELECT 1; DROP TABLE Employees"},
		{name: "literal then real separator", input: "SELECT 'a;b'; DELETE FROM Employees"},
		{name: "block comment then separator", input: "SELECT 1 /* ; */; SELECT 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateAndNormalize(tt.input)
			assert.ErrorIs(t, result.Error, ErrMultipleStatements)
		})
	}
}

func TestHasSemicolonOutsideStrings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "no semicolons", input: "SELECT 1", expected: false},
		{name: "separator", input: "SELECT 1; SELECT 2", expected: true},
		{name: "single quoted literal", input: "SELECT 'a;b'", expected: false},
		{name: "N prefixed literal", input: "SELECT N'a;b'", expected: false},
		{name: "double quoted identifier", input: `SELECT "a;b"`, expected: false},
		{name: "bracketed identifier with escaped bracket", input: "SELECT [a]];b]", expected: false},
		{name: "doubled quote", input: "SELECT 'it''s;here'", expected: false},
		{name: "line comment", input: "SELECT 1 -- ; trailing", expected: false},
		{name: "block comment", input: "SELECT /* ; */ 1", expected: false},
		{name: "backslash is not an escape in T-SQL", input: `SELECT 'test\';more'`, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, hasSemicolonOutsideStrings(tt.input))
		})
	}
}

func TestStripTrailingSemicolon(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "no semicolon", input: "SELECT 1", expected: "SELECT 1"},
		{name: "trailing semicolon", input: "SELECT 1;", expected: "SELECT 1"},
		{name: "whitespace before semicolon", input: "SELECT 1 ;", expected: "SELECT 1"},
		{name: "only one semicolon stripped", input: "SELECT 1;;", expected: "SELECT 1;"},
		{name: "tabs and newlines", input: "SELECT 1;\t\n", expected: "SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripTrailingSemicolon(tt.input))
		})
	}
}

func TestScan_CollectsLiterals(t *testing.T) {
	r := scan("SELECT e.Name FROM [dbo].[Employees] e WHERE e.Dept = N'Sales' AND e.Name <> 'O''Brien' -- 'ignored'")
	assert.Equal(t, []string{"Sales", "O'Brien"}, r.literals)
	assert.NotContains(t, r.code, "Employees")
	assert.NotContains(t, r.code, "ignored")
}
