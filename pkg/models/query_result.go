package models

// ResultColumn describes one column of a result set.
type ResultColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// QueryResult is a fully materialized result set.
// Column order is the order declared by the statement; each row maps column name to value.
type QueryResult struct {
	Columns []ResultColumn   `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// ColumnNames returns the column names in declared order.
func (r *QueryResult) ColumnNames() []string {
	names := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		names[i] = c.Name
	}
	return names
}

// RowCount returns the number of rows.
func (r *QueryResult) RowCount() int {
	return len(r.Rows)
}

// Values returns the row values ordered by the declared columns.
func (r *QueryResult) Values() [][]any {
	out := make([][]any, len(r.Rows))
	for i, row := range r.Rows {
		vals := make([]any, len(r.Columns))
		for j, c := range r.Columns {
			vals[j] = row[c.Name]
		}
		out[i] = vals
	}
	return out
}
