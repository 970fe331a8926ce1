package format

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ekaya-inc/ekaya-askdb/pkg/models"
)

func employeesResult() *models.QueryResult {
	return &models.QueryResult{
		Columns: []models.ResultColumn{
			{Name: "employee_name", Type: "VARCHAR"},
			{Name: "salary", Type: "NUMERIC"},
			{Name: "manager", Type: "VARCHAR"},
		},
		Rows: []map[string]any{
			{"employee_name": "Alice Johnson", "salary": "125000.00", "manager": nil},
			{"employee_name": "Smith, Bob", "salary": "72000.50", "manager": "Alice Johnson"},
		},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(employeesResult())

	assert.True(t, strings.HasPrefix(md, "| employee_name | salary | manager |"))
	assert.Contains(t, md, "| Alice Johnson | 125000.00 | NULL |")
	assert.Contains(t, md, "| Smith, Bob | 72000.50 | Alice Johnson |")
}

func TestCSV(t *testing.T) {
	csv := CSV(employeesResult())

	lines := strings.Split(csv, "\n")
	assert.Equal(t, "employee_name,salary,manager", lines[0])
	assert.Equal(t, "Alice Johnson,125000.00,NULL", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], `"Smith`), "cells with commas are quoted: %s", lines[2])
	assert.True(t, strings.HasSuffix(lines[2], `",72000.50,Alice Johnson`))
}

func TestCSV_PreservesColumnOrder(t *testing.T) {
	result := &models.QueryResult{
		Columns: []models.ResultColumn{{Name: "z"}, {Name: "a"}},
		Rows:    []map[string]any{{"a": 1, "z": 2}},
	}

	assert.Equal(t, "z,a\n2,1", CSV(result))
}

func TestTerminal(t *testing.T) {
	out := Terminal(employeesResult())

	assert.Contains(t, out, "employee_name")
	assert.Contains(t, out, "Alice Johnson")
	assert.Contains(t, out, "(2 rows)")
}

func TestEmptyResult(t *testing.T) {
	result := &models.QueryResult{
		Columns: []models.ResultColumn{{Name: "order_id"}},
		Rows:    []map[string]any{},
	}

	assert.Equal(t, "order_id", CSV(result))
	assert.Contains(t, Terminal(result), "(0 rows)")
}

func TestCellString(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, "NULL", CellString(nil))
	assert.Equal(t, "0x0102ff", CellString([]byte{0x01, 0x02, 0xff}))
	assert.Equal(t, "2024-03-09 14:30:00", CellString(ts))
	assert.Equal(t, "2024-03-09T14:30:00.5+01:00", CellString(time.Date(2024, 3, 9, 14, 30, 0, 500000000, time.FixedZone("", 3600))))
	assert.Equal(t, "0.1", CellString(0.1))
	assert.Equal(t, "42", CellString(int64(42)))
	assert.Equal(t, "true", CellString(true))
}
