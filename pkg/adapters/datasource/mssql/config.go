package mssql

import (
	"fmt"
)

const (
	AuthMethodSQL              = "sql"
	AuthMethodServicePrincipal = "service_principal"
)

// Config contains SQL Server-specific connection options.
type Config struct {
	Host     string
	Port     int
	Database string

	// AuthMethod determines which authentication to use
	// Options: "sql", "service_principal"
	AuthMethod string

	// SQL Authentication fields
	Username string
	Password string

	// Service Principal (Azure AD) fields
	TenantID     string
	ClientID     string
	ClientSecret string

	// Connection options
	Encrypt                bool
	TrustServerCertificate bool
	ConnectionTimeout      int
	// ReadOnlyIntent routes the session to a readable secondary where one exists.
	ReadOnlyIntent bool
}

// DefaultPort returns the default SQL Server port.
func DefaultPort() int {
	return 1433
}

// DefaultConnectionTimeout returns the default connection timeout in seconds.
func DefaultConnectionTimeout() int {
	return 30
}

// FromMap creates a Config from a generic config map and auto-detects auth method.
func FromMap(config map[string]any) (*Config, error) {
	cfg := &Config{
		Port:              DefaultPort(),
		Encrypt:           true,
		ConnectionTimeout: DefaultConnectionTimeout(),
	}

	if host, ok := config["host"].(string); ok && host != "" {
		cfg.Host = host
	} else {
		return nil, fmt.Errorf("host is required")
	}

	if port, ok := intValue(config["port"]); ok {
		cfg.Port = port
	}

	if database, ok := config["database"].(string); ok && database != "" {
		cfg.Database = database
	} else {
		return nil, fmt.Errorf("database is required")
	}

	if encrypt, ok := config["encrypt"].(bool); ok {
		cfg.Encrypt = encrypt
	} else if encryptStr, ok := config["encrypt"].(string); ok {
		// Support string values: "true", "false", "strict"
		cfg.Encrypt = encryptStr == "true" || encryptStr == "strict"
	}

	if trust, ok := config["trust_server_certificate"].(bool); ok {
		cfg.TrustServerCertificate = trust
	}

	if timeout, ok := intValue(config["connection_timeout"]); ok {
		cfg.ConnectionTimeout = timeout
	}

	if readOnly, ok := config["read_only_intent"].(bool); ok {
		cfg.ReadOnlyIntent = readOnly
	}

	// Auto-detect auth method or use explicitly provided
	if authMethod, ok := config["auth_method"].(string); ok && authMethod != "" {
		cfg.AuthMethod = authMethod
	} else if _, hasClientID := config["client_id"].(string); hasClientID {
		cfg.AuthMethod = AuthMethodServicePrincipal
	} else if user, hasUser := config["user"].(string); hasUser && user != "" {
		cfg.AuthMethod = AuthMethodSQL
	} else {
		return nil, fmt.Errorf("could not auto-detect auth method; no credentials provided")
	}

	switch cfg.AuthMethod {
	case AuthMethodSQL:
		if user, ok := config["user"].(string); ok && user != "" {
			cfg.Username = user
		} else {
			return nil, fmt.Errorf("user is required for SQL authentication")
		}
		// Password can be empty for some scenarios
		if password, ok := config["password"].(string); ok {
			cfg.Password = password
		}

	case AuthMethodServicePrincipal:
		for key, dst := range map[string]*string{
			"tenant_id":     &cfg.TenantID,
			"client_id":     &cfg.ClientID,
			"client_secret": &cfg.ClientSecret,
		} {
			v, ok := config[key].(string)
			if !ok {
				return nil, fmt.Errorf("%s is required for service principal authentication", key)
			}
			*dst = v
		}

	default:
		return nil, fmt.Errorf("invalid auth method: %s (must be sql or service_principal)", cfg.AuthMethod)
	}

	return cfg, nil
}

// Validate checks if the config has all required fields for the selected auth method.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	switch c.AuthMethod {
	case AuthMethodSQL:
		if c.Username == "" {
			return fmt.Errorf("user is required for SQL authentication")
		}
	case AuthMethodServicePrincipal:
		if c.TenantID == "" || c.ClientID == "" || c.ClientSecret == "" {
			return fmt.Errorf("tenant_id, client_id and client_secret are required for service principal")
		}
	default:
		return fmt.Errorf("invalid auth method: %s", c.AuthMethod)
	}

	return nil
}

// intValue accepts YAML/env ints and JSON float64 numbers.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
