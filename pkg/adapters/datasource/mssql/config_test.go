package mssql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMap_SQLAuth(t *testing.T) {
	cfg, err := FromMap(map[string]any{
		"host":               "db.internal",
		"port":               float64(14330),
		"database":           "AdventureWorks",
		"user":               "reader",
		"password":           "p@ss:word",
		"encrypt":            "strict",
		"connection_timeout": 5,
		"read_only_intent":   true,
	})
	require.NoError(t, err)

	assert.Equal(t, AuthMethodSQL, cfg.AuthMethod)
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 14330, cfg.Port)
	assert.Equal(t, "reader", cfg.Username)
	assert.Equal(t, "p@ss:word", cfg.Password)
	assert.True(t, cfg.Encrypt)
	assert.Equal(t, 5, cfg.ConnectionTimeout)
	assert.True(t, cfg.ReadOnlyIntent)
	assert.NoError(t, cfg.Validate())
}

func TestFromMap_Defaults(t *testing.T) {
	cfg, err := FromMap(map[string]any{
		"host":     "localhost",
		"database": "master",
		"user":     "sa",
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultPort(), cfg.Port)
	assert.Equal(t, DefaultConnectionTimeout(), cfg.ConnectionTimeout)
	assert.True(t, cfg.Encrypt)
	assert.False(t, cfg.TrustServerCertificate)
}

func TestFromMap_ServicePrincipal(t *testing.T) {
	cfg, err := FromMap(map[string]any{
		"host":          "srv.database.windows.net",
		"database":      "sales",
		"tenant_id":     "tenant",
		"client_id":     "client",
		"client_secret": "secret",
	})
	require.NoError(t, err)

	assert.Equal(t, AuthMethodServicePrincipal, cfg.AuthMethod)
	assert.Equal(t, "client", cfg.ClientID)
	assert.NoError(t, cfg.Validate())
}

func TestFromMap_Errors(t *testing.T) {
	tests := []struct {
		name    string
		config  map[string]any
		wantErr string
	}{
		{"missing host", map[string]any{"database": "d", "user": "u"}, "host is required"},
		{"missing database", map[string]any{"host": "h", "user": "u"}, "database is required"},
		{"no credentials", map[string]any{"host": "h", "database": "d"}, "could not auto-detect auth method"},
		{"bad auth method", map[string]any{"host": "h", "database": "d", "auth_method": "kerberos"}, "invalid auth method"},
		{"partial service principal", map[string]any{"host": "h", "database": "d", "client_id": "c"}, "is required for service principal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Validate_Port(t *testing.T) {
	cfg := &Config{Host: "h", Database: "d", Port: 70000, AuthMethod: AuthMethodSQL, Username: "u"}
	assert.ErrorContains(t, cfg.Validate(), "invalid port")
}
