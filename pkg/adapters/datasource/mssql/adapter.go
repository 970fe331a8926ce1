package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/microsoft/go-mssqldb"         // SQL Server driver
	_ "github.com/microsoft/go-mssqldb/azuread" // Azure AD support
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-askdb/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-askdb/pkg/logging"
	"github.com/ekaya-inc/ekaya-askdb/pkg/retry"
)

// Adapter is a live SQL Server connection serving one chat session.
type Adapter struct {
	config  *Config
	db      *sql.DB
	logger  *zap.Logger
	ownedDB bool // true if we opened the DB and must close it
}

// Ensure Adapter implements Connection at compile time.
var _ datasource.Connection = (*Adapter)(nil)

// NewAdapter opens and pings a SQL Server connection.
// Supports SQL Authentication (username/password) and Service Principal (Azure AD client credentials).
// Transient ping failures are retried briefly; login failures return at once.
func NewAdapter(ctx context.Context, cfg *Config, logger *zap.Logger) (*Adapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var db *sql.DB
	var err error
	switch cfg.AuthMethod {
	case AuthMethodSQL:
		db, err = createSQLAuthConnection(cfg)
	case AuthMethodServicePrincipal:
		db, err = createServicePrincipalConnection(cfg)
	default:
		return nil, fmt.Errorf("unsupported auth method: %s", cfg.AuthMethod)
	}
	if err != nil {
		return nil, fmt.Errorf("create connection: %w", err)
	}

	// One statement at a time per session.
	db.SetMaxOpenConns(1)

	if err := retry.DoIfRetryable(ctx, retry.DefaultConfig(), func() error {
		return db.PingContext(ctx)
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("connection test failed: %s", logging.SanitizeError(err))
	}

	logger.Info("Connected to SQL Server",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("auth_method", cfg.AuthMethod))

	return &Adapter{
		config:  cfg,
		db:      db,
		logger:  logger.Named("mssql"),
		ownedDB: true,
	}, nil
}

// NewAdapterFromDB wraps an already-open *sql.DB. The caller keeps ownership of db.
func NewAdapterFromDB(db *sql.DB, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		config: &Config{},
		db:     db,
		logger: logger.Named("mssql"),
	}
}

// baseQuery holds the options shared by every auth method.
func baseQuery(cfg *Config) url.Values {
	query := url.Values{}
	query.Add("database", cfg.Database)

	if cfg.Encrypt {
		query.Add("encrypt", "true")
	} else {
		query.Add("encrypt", "false")
	}
	if cfg.TrustServerCertificate {
		query.Add("TrustServerCertificate", "true")
	}
	if cfg.ConnectionTimeout > 0 {
		query.Add("connection timeout", fmt.Sprintf("%d", cfg.ConnectionTimeout))
	}
	if cfg.ReadOnlyIntent {
		query.Add("ApplicationIntent", "ReadOnly")
	}
	query.Add("app name", "ekaya-askdb")
	return query
}

// buildSQLAuthConnString builds the sqlserver:// URL for SQL Server authentication.
func buildSQLAuthConnString(cfg *Config) string {
	return fmt.Sprintf("sqlserver://%s:%s@%s:%d?%s",
		url.QueryEscape(cfg.Username),
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		baseQuery(cfg).Encode(),
	)
}

// buildServicePrincipalConnString builds the URL for Azure AD client-credential authentication.
func buildServicePrincipalConnString(cfg *Config) string {
	query := baseQuery(cfg)
	query.Add("fedauth", "ActiveDirectoryServicePrincipal")
	query.Add("user id", fmt.Sprintf("%s@%s", cfg.ClientID, cfg.TenantID))
	query.Add("password", cfg.ClientSecret)

	return fmt.Sprintf("sqlserver://%s:%d?%s", cfg.Host, cfg.Port, query.Encode())
}

// createSQLAuthConnection creates a connection using SQL Server authentication.
func createSQLAuthConnection(cfg *Config) (*sql.DB, error) {
	db, err := sql.Open("sqlserver", buildSQLAuthConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("open SQL auth connection: %w", err)
	}
	return db, nil
}

// createServicePrincipalConnection creates a connection using Azure AD Service Principal.
func createServicePrincipalConnection(cfg *Config) (*sql.DB, error) {
	// For Azure AD, use azuresql driver
	db, err := sql.Open("azuresql", buildServicePrincipalConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("open service principal connection: %w", err)
	}
	return db, nil
}

// TestConnection verifies the database is reachable with valid credentials.
func (a *Adapter) TestConnection(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var result int
	if err := a.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("test query failed: %w", err)
	}

	return nil
}

// Dialect implements datasource.Connection.
func (a *Adapter) Dialect() datasource.Dialect {
	return datasource.DialectTSQL
}

// Close releases the connection if the adapter opened it.
func (a *Adapter) Close() error {
	if a.ownedDB && a.db != nil {
		return a.db.Close()
	}
	return nil
}

// DB returns the underlying *sql.DB.
func (a *Adapter) DB() *sql.DB {
	return a.db
}
