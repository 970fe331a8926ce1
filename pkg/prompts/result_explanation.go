package prompts

import (
	"fmt"
	"strings"
)

// ResultExplanationSystemMessage frames the model for summarizing query results.
const ResultExplanationSystemMessage = "You are a data analyst."

// BuildResultExplanationPrompt asks the model to answer question from the CSV rendering of a result.
func BuildResultExplanationPrompt(question, csv string) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("Answer this question: %s\n\n", strings.TrimSpace(question)))
	prompt.WriteString("Based on this data:\n\n")
	if strings.TrimSpace(csv) == "" {
		prompt.WriteString("(no rows)\n")
	} else {
		prompt.WriteString(csv)
		if !strings.HasSuffix(csv, "\n") {
			prompt.WriteString("\n")
		}
	}
	prompt.WriteString("\nUse only this data. Use clear language and highlight key insights.\n")

	return prompt.String()
}
