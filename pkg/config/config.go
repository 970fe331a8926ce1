package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when no --config flag is given.
const DefaultPath = "config.yaml"

// redacted replaces secrets in rendered config.
const redacted = "[REDACTED]"

// Config holds all configuration for askdb.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Target database
	Datasource DatasourceConfig `yaml:"datasource"`

	// Model endpoints for the two model calls of a turn
	Generation  GenerationConfig  `yaml:"generation"`
	Explanation ExplanationConfig `yaml:"explanation"`

	// Statement policy applied to generated SQL before execution
	Policy PolicyConfig `yaml:"policy"`

	// Retry policy for model calls (off by default)
	Retry RetryConfig `yaml:"retry"`
}

// DatasourceConfig holds the SQL Server connection settings.
type DatasourceConfig struct {
	Type                   string `yaml:"type" env:"DATASOURCE_TYPE" env-default:"mssql"`
	Host                   string `yaml:"host" env:"MSSQL_HOST" env-default:"localhost"`
	Port                   int    `yaml:"port" env:"MSSQL_PORT" env-default:"1433"`
	Database               string `yaml:"database" env:"MSSQL_DATABASE" env-default:""`
	AuthMethod             string `yaml:"auth_method" env:"MSSQL_AUTH_METHOD" env-default:"sql"`
	User                   string `yaml:"user" env:"MSSQL_USER" env-default:""`
	Password               string `yaml:"-" env:"MSSQL_PASSWORD"` // Secret - not in YAML
	TenantID               string `yaml:"tenant_id" env:"MSSQL_TENANT_ID" env-default:""`
	ClientID               string `yaml:"client_id" env:"MSSQL_CLIENT_ID" env-default:""`
	ClientSecret           string `yaml:"-" env:"MSSQL_CLIENT_SECRET"` // Secret - not in YAML
	Encrypt                bool   `yaml:"encrypt" env:"MSSQL_ENCRYPT" env-default:"true"`
	TrustServerCertificate bool   `yaml:"trust_server_certificate" env:"MSSQL_TRUST_SERVER_CERTIFICATE" env-default:"false"`
	ConnectionTimeout      int    `yaml:"connection_timeout" env:"MSSQL_CONNECTION_TIMEOUT" env-default:"30"`
	ReadOnlyIntent         bool   `yaml:"read_only_intent" env:"MSSQL_READ_ONLY_INTENT" env-default:"false"`
}

// GenerationConfig is the model endpoint that writes SQL.
type GenerationConfig struct {
	Provider    string  `yaml:"provider" env:"GENERATION_PROVIDER" env-default:"openai"`
	BaseURL     string  `yaml:"base_url" env:"GENERATION_BASE_URL" env-default:"https://api.groq.com/openai/v1"`
	Model       string  `yaml:"model" env:"GENERATION_MODEL" env-default:"llama-3.1-8b-instant"`
	Temperature float64 `yaml:"temperature" env:"GENERATION_TEMPERATURE" env-default:"0.3"`
	MaxTokens   int     `yaml:"max_tokens" env:"GENERATION_MAX_TOKENS" env-default:"0"`
	APIKey      string  `yaml:"-" env:"GENERATION_API_KEY"` // Secret - not in YAML
}

// ExplanationConfig is the model endpoint that explains results.
type ExplanationConfig struct {
	Provider    string  `yaml:"provider" env:"EXPLANATION_PROVIDER" env-default:"openai"`
	BaseURL     string  `yaml:"base_url" env:"EXPLANATION_BASE_URL" env-default:"https://api.groq.com/openai/v1"`
	Model       string  `yaml:"model" env:"EXPLANATION_MODEL" env-default:"deepseek-r1-distill-llama-70b"`
	Temperature float64 `yaml:"temperature" env:"EXPLANATION_TEMPERATURE" env-default:"0.7"`
	MaxTokens   int     `yaml:"max_tokens" env:"EXPLANATION_MAX_TOKENS" env-default:"0"`
	APIKey      string  `yaml:"-" env:"EXPLANATION_API_KEY"` // Secret - not in YAML
}

// PolicyConfig controls which generated statements may run.
type PolicyConfig struct {
	// AllowedVerbs is a comma-separated statement allow-list; empty disables the verb check.
	AllowedVerbs  string `yaml:"allowed_verbs" env:"POLICY_ALLOWED_VERBS" env-default:"SELECT,WITH"`
	CheckLiterals bool   `yaml:"check_literals" env:"POLICY_CHECK_LITERALS" env-default:"true"`
}

// RetryConfig bounds retries of transient model failures.
type RetryConfig struct {
	MaxRetries   int           `yaml:"max_retries" env:"RETRY_MAX_RETRIES" env-default:"0"`
	InitialDelay time.Duration `yaml:"initial_delay" env:"RETRY_INITIAL_DELAY" env-default:"500ms"`
	MaxDelay     time.Duration `yaml:"max_delay" env:"RETRY_MAX_DELAY" env-default:"5s"`
}

// ModelEndpoint is the provider-neutral view of a model section.
type ModelEndpoint struct {
	Provider    string
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int
}

// Endpoint returns the generation model endpoint.
func (g GenerationConfig) Endpoint() ModelEndpoint {
	return ModelEndpoint{g.Provider, g.BaseURL, g.Model, g.APIKey, g.Temperature, g.MaxTokens}
}

// Endpoint returns the explanation model endpoint.
func (e ExplanationConfig) Endpoint() ModelEndpoint {
	return ModelEndpoint{e.Provider, e.BaseURL, e.Model, e.APIKey, e.Temperature, e.MaxTokens}
}

// Load reads configuration from path with environment variable overrides.
// A missing file is not an error: configuration then comes from the environment alone.
// The version parameter is injected at build time and set on the returned Config.
func Load(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if path == "" {
		path = DefaultPath
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.Datasource.Host = ResolveHostForContainer(cfg.Datasource.Host)

	return cfg, nil
}

// validate checks ranges that cleanenv cannot express.
func (c *Config) validate() error {
	for name, t := range map[string]float64{
		"generation.temperature":  c.Generation.Temperature,
		"explanation.temperature": c.Explanation.Temperature,
	} {
		if t < 0 || t > 2 {
			return fmt.Errorf("%s must be between 0 and 2, got %v", name, t)
		}
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative")
	}
	if c.Datasource.Port <= 0 || c.Datasource.Port > 65535 {
		return fmt.Errorf("datasource.port is invalid: %d", c.Datasource.Port)
	}
	return nil
}

// DatasourceMap converts the datasource section into the adapter config map.
func (d *DatasourceConfig) DatasourceMap() map[string]any {
	m := map[string]any{
		"host":                     d.Host,
		"port":                     d.Port,
		"database":                 d.Database,
		"auth_method":              d.AuthMethod,
		"encrypt":                  d.Encrypt,
		"trust_server_certificate": d.TrustServerCertificate,
		"connection_timeout":       d.ConnectionTimeout,
		"read_only_intent":         d.ReadOnlyIntent,
	}
	switch d.AuthMethod {
	case "service_principal":
		m["tenant_id"] = d.TenantID
		m["client_id"] = d.ClientID
		m["client_secret"] = d.ClientSecret
	default:
		m["user"] = d.User
		m["password"] = d.Password
	}
	return m
}

// Redacted renders the effective configuration as YAML with secrets masked.
func (c *Config) Redacted() (string, error) {
	type redactedView struct {
		Config  `yaml:",inline"`
		Secrets map[string]string `yaml:"secrets"`
	}

	view := redactedView{
		Config: *c,
		Secrets: map[string]string{
			"MSSQL_PASSWORD":      maskSecret(c.Datasource.Password),
			"MSSQL_CLIENT_SECRET": maskSecret(c.Datasource.ClientSecret),
			"GENERATION_API_KEY":  maskSecret(c.Generation.APIKey),
			"EXPLANATION_API_KEY": maskSecret(c.Explanation.APIKey),
		},
	}

	out, err := yaml.Marshal(view)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(out), nil
}

// maskSecret reports whether a secret is set without revealing it.
func maskSecret(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(unset)"
	}
	return redacted
}
