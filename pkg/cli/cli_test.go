package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-askdb/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-askdb/pkg/config"
	"github.com/ekaya-inc/ekaya-askdb/pkg/models"
	"github.com/ekaya-inc/ekaya-askdb/pkg/services"
)

func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), "test")
	require.NoError(t, err)
	return cfg
}

func TestNewRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd("1.2.3")

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"schemas", "ask", "chat", "ping", "config"}, names)
	assert.Equal(t, "1.2.3", cmd.Version)
}

func TestAskCmd_RequiresSchema(t *testing.T) {
	cmd := NewRootCmd("test")
	cmd.SetArgs([]string{"ask", "List employees"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "schema" not set`)
}

func TestConfigCmd_RedactsSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("datasource:\n  database: \"Employees\"\n"), 0o644))
	t.Setenv("MSSQL_PASSWORD", "hunter2")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetArgs([]string{"config", "--config", path})
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "database: Employees")
	assert.Contains(t, out.String(), "MSSQL_PASSWORD: '[REDACTED]'")
	assert.NotContains(t, out.String(), "hunter2")
}

func TestBuildPipeline(t *testing.T) {
	cfg := loadTestConfig(t)

	pipeline, err := buildPipeline(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, pipeline)
}

func TestBuildPipeline_WithRetries(t *testing.T) {
	cfg := loadTestConfig(t)
	cfg.Retry.MaxRetries = 2

	_, err := buildPipeline(cfg, zap.NewNop())
	assert.NoError(t, err)
}

func TestBuildPipeline_InvalidVerbs(t *testing.T) {
	cfg := loadTestConfig(t)
	cfg.Policy.AllowedVerbs = "SELECT,SELEKT"

	_, err := buildPipeline(cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "policy.allowed_verbs")
}

func TestBuildPipeline_UnknownProvider(t *testing.T) {
	cfg := loadTestConfig(t)
	cfg.Explanation.Provider = "cohere"

	_, err := buildPipeline(cfg, zap.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnsupportedProvider))
	assert.Contains(t, err.Error(), "explanation model")
}

func TestParseChatInput(t *testing.T) {
	tests := map[string]chatCommand{
		"exit":      chatQuit,
		" QUIT ":    chatQuit,
		`\q`:        chatQuit,
		`\schema`:   chatSchema,
		`\tables`:   chatTables,
		`\history`:  chatHistory,
		"?":         chatHelp,
		"List jobs": chatQuestion,
		"":          chatQuestion,
	}
	for input, want := range tests {
		assert.Equal(t, want, parseChatInput(input), input)
	}
}

func testResult() *models.QueryResult {
	return &models.QueryResult{
		Columns: []models.ResultColumn{{Name: "employee_name"}, {Name: "salary"}},
		Rows:    []map[string]any{{"employee_name": "Alice Johnson", "salary": "125000.00"}},
	}
}

func TestRenderOutcome_Success(t *testing.T) {
	var out bytes.Buffer
	renderOutcome(&out, &services.TurnOutcome{
		Query:       &models.GeneratedQuery{SQL: "SELECT e.Name AS employee_name\nFROM Employees.Employees e;"},
		Result:      testResult(),
		Explanation: "Alice Johnson earns the most.",
	}, 0)

	assert.Contains(t, out.String(), "  SELECT e.Name AS employee_name\n  FROM Employees.Employees e;")
	assert.Contains(t, out.String(), "Alice Johnson")
	assert.Contains(t, out.String(), "(1 rows)")
	assert.Contains(t, out.String(), "Alice Johnson earns the most.\n")
}

func TestRenderOutcome_GenerationFailure(t *testing.T) {
	var out bytes.Buffer
	renderOutcome(&out, &services.TurnOutcome{
		Err: &services.StageError{Stage: services.StageGeneration, Kind: services.KindNoSQL, Err: apperrors.ErrNoSQLFound},
	}, 0)

	assert.Equal(t, "Sorry, I couldn't generate a SQL query.\nquery generation failed: no SQL statement found in model output\n", out.String())
}

func TestRenderOutcome_PartialSuccess(t *testing.T) {
	var out bytes.Buffer
	renderOutcome(&out, &services.TurnOutcome{
		Query:  &models.GeneratedQuery{SQL: "SELECT 1;"},
		Result: testResult(),
		Err:    &services.StageError{Stage: services.StageExplanation, Err: errors.New("rate limited")},
	}, 0)

	assert.Contains(t, out.String(), "Alice Johnson")
	assert.Contains(t, out.String(), "explanation failed: rate limited")
}

func TestTypewrite(t *testing.T) {
	var out bytes.Buffer
	typewrite(&out, "héllo", 0)
	assert.Equal(t, "héllo", out.String())

	out.Reset()
	typewrite(&out, "ok", 1)
	assert.Equal(t, "ok", out.String())
}
