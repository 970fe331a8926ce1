// Package testhelpers provides a shared SQL Server container for integration tests.
package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver
	"github.com/testcontainers/testcontainers-go"
	tcmssql "github.com/testcontainers/testcontainers-go/modules/mssql"
)

const (
	// MSSQLTestImage is the SQL Server image used for integration tests.
	MSSQLTestImage = "mcr.microsoft.com/mssql/server:2022-CU17-ubuntu-22.04"

	testPassword = "H3ll0@W0rld"
	testDatabase = "askdb_test"
)

// seedStatements create two schemas and a view, which must not show up as a base table.
var seedStatements = []string{
	"CREATE DATABASE " + testDatabase,
	"USE " + testDatabase,
	"EXEC('CREATE SCHEMA Employees')",
	"EXEC('CREATE SCHEMA Sales')",
	`CREATE TABLE Employees.Employees (
		EmployeeID INT PRIMARY KEY,
		Name NVARCHAR(100) NOT NULL,
		Department NVARCHAR(50) NOT NULL,
		Salary MONEY NOT NULL
	)`,
	`INSERT INTO Employees.Employees (EmployeeID, Name, Department, Salary) VALUES
		(1, N'Alice Johnson', N'Engineering', 125000.00),
		(2, N'Bob Smith', N'Sales', 72000.50),
		(3, N'Carla Gomez', N'Engineering', 98000.00),
		(4, N'Dan Wu', N'Support', 54000.00)`,
	`CREATE TABLE Sales.Orders (
		OrderID INT PRIMARY KEY,
		EmployeeID INT NOT NULL,
		Amount DECIMAL(10,2) NOT NULL,
		OrderedAt DATETIME2 NOT NULL
	)`,
	"EXEC('CREATE VIEW Sales.BigOrders AS SELECT OrderID, Amount FROM Sales.Orders WHERE Amount > 1000')",
}

// TestMSSQL holds a shared SQL Server container seeded with test schemas.
type TestMSSQL struct {
	Container *tcmssql.MSSQLServerContainer
	DB        *sql.DB
	// Config is the datasource config map accepted by the mssql adapter.
	Config map[string]any
}

var (
	sharedMSSQL     *TestMSSQL
	sharedMSSQLOnce sync.Once
	sharedMSSQLErr  error
)

// GetTestMSSQL returns a shared SQL Server container for integration tests.
// The container is created once and reused across all tests in the run.
func GetTestMSSQL(t *testing.T) *TestMSSQL {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedMSSQLOnce.Do(func() {
		sharedMSSQL, sharedMSSQLErr = setupTestMSSQL()
	})

	if sharedMSSQLErr != nil {
		t.Fatalf("Failed to setup test SQL Server: %v", sharedMSSQLErr)
	}

	return sharedMSSQL
}

func setupTestMSSQL() (*TestMSSQL, error) {
	ctx := context.Background()

	ctr, err := tcmssql.Run(ctx,
		MSSQLTestImage,
		tcmssql.WithAcceptEULA(),
		tcmssql.WithPassword(testPassword),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	tm, err := seedContainer(ctx, ctr)
	if err != nil {
		_ = testcontainers.TerminateContainer(ctr)
		return nil, err
	}
	return tm, nil
}

func seedContainer(ctx context.Context, ctr *tcmssql.MSSQLServerContainer) (*TestMSSQL, error) {
	connStr, err := ctr.ConnectionString(ctx, "encrypt=false", "TrustServerCertificate=true")
	if err != nil {
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	db, err := sql.Open("sqlserver", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}
	// Single connection so USE applies to every seed statement.
	db.SetMaxOpenConns(1)

	// Verify connection with retry
	for i := 0; i < 20; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to ping test container: %w", err)
	}

	for _, stmt := range seedStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to seed test database: %w", err)
		}
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := ctr.MappedPort(ctx, "1433")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &TestMSSQL{
		Container: ctr,
		DB:        db,
		Config: map[string]any{
			"host":                     host,
			"port":                     port.Int(),
			"database":                 testDatabase,
			"auth_method":              "sql",
			"user":                     "sa",
			"password":                 testPassword,
			"encrypt":                  false,
			"trust_server_certificate": true,
		},
	}, nil
}
