// Package prompts builds the text sent to language models for SQL generation and result explanation.
package prompts

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/ekaya-askdb/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-askdb/pkg/models"
)

// SQLGenerationSystemMessage frames the model for query writing.
const SQLGenerationSystemMessage = "You are a SQL expert."

// BuildSQLGenerationPrompt creates the user prompt for turning a question into one SQL statement.
// Output depends only on its inputs: metadata lines are emitted in sorted key order.
func BuildSQLGenerationPrompt(question string, metadata *models.SchemaMetadata, dialect datasource.Dialect) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("You are a senior SQL developer writing %s.\n\n", dialect.Name))

	prompt.WriteString("## Question\n\n")
	prompt.WriteString(strings.TrimSpace(question))
	prompt.WriteString("\n\n")

	prompt.WriteString(fmt.Sprintf("## Schema %s\n\n", metadata.Schema))
	prompt.WriteString("Each line is a fully-qualified column `[schema].[table].[column]` and its declared type.\n\n")
	prompt.WriteString(metadata.String())
	prompt.WriteString("\n")

	prompt.WriteString("## Rules\n\n")
	prompt.WriteString(fmt.Sprintf("- Use %s syntax only.\n", dialect.Name))
	prompt.WriteString("- Only include columns that are relevant to the question. Never use SELECT *.\n")
	if dialect.RowLimitClause != "" {
		prompt.WriteString(fmt.Sprintf("- To limit rows use %s", dialect.RowLimitClause))
		if dialect.ForbiddenClause != "" {
			prompt.WriteString(fmt.Sprintf(" instead of %s", dialect.ForbiddenClause))
		}
		prompt.WriteString(", and only when the question asks for a number of rows.\n")
	}
	prompt.WriteString("- Give every table an alias and alias every selected column with it, e.g. `p.name AS product_name`.\n")
	prompt.WriteString("- Convert money fields using CAST() when arithmetic or display needs it.\n")
	prompt.WriteString("- Write a single SELECT statement that ends with a semicolon.\n")

	return prompt.String()
}
