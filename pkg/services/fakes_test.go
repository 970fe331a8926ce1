package services

import (
	"context"

	"github.com/ekaya-inc/ekaya-askdb/pkg/adapters/datasource"
)

// fakeConnection is an in-memory datasource.Connection.
type fakeConnection struct {
	tables     []datasource.TableMetadata
	columns    map[string][]datasource.ColumnMetadata
	tablesErr  error
	columnsErr error
	queryFunc  func(sqlQuery string) (*datasource.QueryExecutionResult, error)

	columnCalls []string
	queries     []string
}

var _ datasource.Connection = (*fakeConnection)(nil)

func (f *fakeConnection) TestConnection(ctx context.Context) error { return nil }
func (f *fakeConnection) Close() error                             { return nil }
func (f *fakeConnection) Dialect() datasource.Dialect              { return datasource.DialectTSQL }

func (f *fakeConnection) ListBaseTables(ctx context.Context) ([]datasource.TableMetadata, error) {
	if f.tablesErr != nil {
		return nil, f.tablesErr
	}
	return f.tables, nil
}

func (f *fakeConnection) ListColumns(ctx context.Context, schemaName string) ([]datasource.ColumnMetadata, error) {
	f.columnCalls = append(f.columnCalls, schemaName)
	if f.columnsErr != nil {
		return nil, f.columnsErr
	}
	return f.columns[schemaName], nil
}

func (f *fakeConnection) Query(ctx context.Context, sqlQuery string) (*datasource.QueryExecutionResult, error) {
	f.queries = append(f.queries, sqlQuery)
	if f.queryFunc != nil {
		return f.queryFunc(sqlQuery)
	}
	return &datasource.QueryExecutionResult{}, nil
}

// employeesConnection serves an Employees schema with one table and a Sales schema.
func employeesConnection() *fakeConnection {
	return &fakeConnection{
		tables: []datasource.TableMetadata{
			{SchemaName: "Sales", TableName: "Orders"},
			{SchemaName: "Employees", TableName: "Employees"},
			{SchemaName: "Sales", TableName: "Customers"},
		},
		columns: map[string][]datasource.ColumnMetadata{
			"Employees": {
				{SchemaName: "Employees", TableName: "Employees", ColumnName: "EmployeeID", DataType: "int", OrdinalPosition: 1},
				{SchemaName: "Employees", TableName: "Employees", ColumnName: "Name", DataType: "nvarchar", OrdinalPosition: 2},
				{SchemaName: "Employees", TableName: "Employees", ColumnName: "Salary", DataType: "money", OrdinalPosition: 3},
			},
		},
		queryFunc: func(string) (*datasource.QueryExecutionResult, error) {
			return &datasource.QueryExecutionResult{
				Columns: []datasource.ColumnInfo{
					{Name: "employee_name", Type: "VARCHAR"},
					{Name: "salary", Type: "NUMERIC"},
				},
				Rows: []map[string]any{
					{"employee_name": "Alice Johnson", "salary": "125000.00"},
					{"employee_name": "Carla Gomez", "salary": "98000.00"},
					{"employee_name": "Bob Smith", "salary": "72000.50"},
					{"employee_name": "Dan Wu", "salary": "54000.00"},
				},
				RowCount: 4,
			}, nil
		},
	}
}

const employeesSQL = "SELECT e.Name AS employee_name, CAST(e.Salary AS DECIMAL(10,2)) AS salary\nFROM Employees.Employees e\nORDER BY e.Salary DESC;"

const employeesModelReply = "Here is the query:\n```sql\n" + employeesSQL + "\n```\nIt sorts by salary."
