package llm

import (
	"regexp"
	"strings"
)

// thinkTagPattern matches <think>...</think> blocks emitted by reasoning models.
var thinkTagPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

// thinkContentPattern extracts the content inside <think>...</think> tags.
var thinkContentPattern = regexp.MustCompile(`(?s)<think>(.*?)</think>`)

// ExtractThinking extracts the content from <think>...</think> tags in an LLM response.
// Returns empty string if no thinking tags are found.
func ExtractThinking(response string) string {
	matches := thinkContentPattern.FindStringSubmatch(response)
	if len(matches) >= 2 {
		return strings.TrimSpace(matches[1])
	}
	return ""
}

// StripThinking removes every <think>...</think> block and trims the remainder.
// An unclosed <think> is left alone.
func StripThinking(response string) string {
	return strings.TrimSpace(thinkTagPattern.ReplaceAllString(response, ""))
}
