package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ekaya-inc/ekaya-askdb/pkg/format"
	"github.com/ekaya-inc/ekaya-askdb/pkg/services"
)

// typingDelay paces the typewriter effect for explanations.
const typingDelay = 4 * time.Millisecond

// renderOutcome writes a turn for the terminal: the SQL, a box-drawn result table,
// and the explanation or the failure message. A positive delay types the explanation out.
func renderOutcome(w io.Writer, o *services.TurnOutcome, delay time.Duration) {
	if o.Query != nil {
		fmt.Fprintf(w, "SQL:\n%s\n\n", indent(o.Query.SQL))
	}
	if o.Result != nil {
		fmt.Fprintln(w, format.Terminal(o.Result))
		fmt.Fprintln(w)
	}

	switch {
	case o.Err != nil && o.Err.Stage == services.StageGeneration:
		fmt.Fprintln(w, services.GenerationFailedMessage)
		fmt.Fprintln(w, o.Err.UserMessage())
	case o.Err != nil:
		fmt.Fprintln(w, o.Err.UserMessage())
	default:
		typewrite(w, o.Explanation+"\n", delay)
	}
}

func indent(sql string) string {
	lines := strings.Split(strings.TrimSpace(sql), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}

// typewrite writes text one rune at a time.
func typewrite(w io.Writer, text string, delay time.Duration) {
	if delay <= 0 {
		fmt.Fprint(w, text)
		return
	}
	for _, r := range text {
		fmt.Fprint(w, string(r))
		time.Sleep(delay)
	}
}
