package services

import (
	"strings"

	"github.com/ekaya-inc/ekaya-askdb/pkg/format"
)

// GenerationFailedMessage opens the reply when no usable statement was produced.
const GenerationFailedMessage = "Sorry, I couldn't generate a SQL query."

// renderReply assembles the single assistant turn for an outcome.
// A successful turn is the SQL block, the result table, and the explanation.
// An explanation failure keeps the SQL block and the table and reports the failure
// in place of the explanation.
func renderReply(o *TurnOutcome) string {
	var b strings.Builder

	if o.Err != nil && o.Err.Stage == StageGeneration {
		b.WriteString(GenerationFailedMessage)
		b.WriteString("\n\n")
		b.WriteString(o.Err.UserMessage())
		return b.String()
	}
	if o.Err != nil && o.Err.Stage == StageMetadata {
		return o.Err.UserMessage()
	}

	if o.Query != nil {
		writeSQLBlock(&b, o.Query.SQL)
	}

	if o.Result != nil {
		b.WriteString("\n\n")
		b.WriteString(format.Markdown(o.Result))
	}

	switch {
	case o.Err != nil:
		b.WriteString("\n\n")
		b.WriteString(o.Err.UserMessage())
	case o.Explanation != "":
		b.WriteString("\n\n")
		b.WriteString(o.Explanation)
	}

	return b.String()
}

func writeSQLBlock(b *strings.Builder, sql string) {
	b.WriteString("Here’s your SQL:\n```sql\n")
	b.WriteString(strings.TrimSpace(sql))
	b.WriteString("\n```")
}
