package sql

import "strings"

// scanResult separates a statement into executable text and string literal contents.
type scanResult struct {
	// code is the statement with literals, quoted identifiers, and comments blanked out.
	code string
	// literals holds the unescaped contents of each single-quoted literal, in order.
	literals []string
}

// scan walks a T-SQL statement once, tracking single-quoted literals ('' escapes),
// double-quoted and bracketed identifiers (]] escapes), and -- / /* */ comments.
func scan(sqlText string) scanResult {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
		stateBracket
		stateLineComment
		stateBlockComment
	)

	runes := []rune(sqlText)
	var code strings.Builder
	var literal strings.Builder
	var literals []string
	state := stateNormal

	for i := 0; i < len(runes); i++ {
		c := runes[i]
		var next rune
		if i+1 < len(runes) {
			next = runes[i+1]
		}

		switch state {
		case stateNormal:
			switch {
			case c == '\'':
				state = stateSingleQuote
				literal.Reset()
				code.WriteRune(' ')
			case c == '"':
				state = stateDoubleQuote
				code.WriteRune(' ')
			case c == '[':
				state = stateBracket
				code.WriteRune(' ')
			case c == '-' && next == '-':
				state = stateLineComment
				i++
				code.WriteRune(' ')
			case c == '/' && next == '*':
				state = stateBlockComment
				i++
				code.WriteRune(' ')
			default:
				code.WriteRune(c)
			}
		case stateSingleQuote:
			if c == '\'' {
				if next == '\'' {
					literal.WriteRune('\'')
					i++
					continue
				}
				literals = append(literals, literal.String())
				state = stateNormal
				code.WriteRune(' ')
				continue
			}
			literal.WriteRune(c)
		case stateDoubleQuote:
			if c == '"' {
				state = stateNormal
			}
		case stateBracket:
			if c == ']' {
				if next == ']' {
					i++
					continue
				}
				state = stateNormal
			}
		case stateLineComment:
			if c == '\n' {
				state = stateNormal
				code.WriteRune('\n')
			}
		case stateBlockComment:
			if c == '*' && next == '/' {
				state = stateNormal
				i++
			}
		}
	}

	// An unterminated literal is still screened.
	if state == stateSingleQuote {
		literals = append(literals, literal.String())
	}

	return scanResult{code: code.String(), literals: literals}
}
