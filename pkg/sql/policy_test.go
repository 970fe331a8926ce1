package sql

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-askdb/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-askdb/pkg/models"
)

func TestPolicy_Check_DefaultAllowsReads(t *testing.T) {
	p := DefaultPolicy()

	stmtType, err := p.Check("SELECT TOP 5 e.Name AS employee_name FROM [Employees].[Employees] e ORDER BY e.Salary DESC;")
	require.NoError(t, err)
	assert.Equal(t, models.StatementSelect, stmtType)

	stmtType, err = p.Check("WITH x AS (SELECT 1 AS n) SELECT x.n AS n FROM x;")
	require.NoError(t, err)
	assert.Equal(t, models.StatementWith, stmtType)
}

func TestPolicy_Check_DefaultRejectsWrites(t *testing.T) {
	p := DefaultPolicy()

	for _, stmt := range []string{
		"SELECT e.Name INTO Backup FROM Employees e;",
		"DELETE FROM Employees;",
		"WITH d AS (SELECT 1 AS n) DELETE FROM Employees;",
	} {
		_, err := p.Check(stmt)
		require.Error(t, err, stmt)
		assert.ErrorIs(t, err, apperrors.ErrStatementNotAllowed)

		var policyErr *PolicyError
		require.True(t, errors.As(err, &policyErr))
		assert.Contains(t, policyErr.Reason, "allow-list")
	}
}

func TestPolicy_Check_RejectsBatches(t *testing.T) {
	_, err := DefaultPolicy().Check("SELECT 1; DROP TABLE Employees;")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStatementNotAllowed)
	assert.Contains(t, err.Error(), "multiple SQL statements")
}

func TestPolicy_Check_EmptyAllowListTrustsModel(t *testing.T) {
	p := Policy{}

	stmtType, err := p.Check("DELETE FROM Employees;")
	require.NoError(t, err)
	assert.Equal(t, models.StatementDelete, stmtType)
}

func TestPolicy_Check_LiteralScreening(t *testing.T) {
	stmt := "SELECT e.Name AS employee_name FROM [Employees].[Employees] e WHERE e.Name = '1'' OR ''1''=''1';"

	_, err := DefaultPolicy().Check(stmt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injection pattern")

	var policyErr *PolicyError
	require.ErrorAs(t, err, &policyErr)
	require.NotNil(t, policyErr.Injection)
	assert.NotEmpty(t, policyErr.Injection.Fingerprint)

	noScreen := DefaultPolicy()
	noScreen.CheckLiterals = false
	_, err = noScreen.Check(stmt)
	assert.NoError(t, err)
}

func TestParseVerbs(t *testing.T) {
	verbs, err := ParseVerbs("select, WITH ,")
	require.NoError(t, err)
	assert.Equal(t, []models.StatementType{models.StatementSelect, models.StatementWith}, verbs)

	verbs, err = ParseVerbs("")
	require.NoError(t, err)
	assert.Empty(t, verbs)

	_, err = ParseVerbs("SELECT,SELEKT")
	assert.Error(t, err)
}
