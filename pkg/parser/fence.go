package parser

import (
	"regexp"
	"strings"
)

// openingFenceRegex matches an opening code fence, e.g. ``` or ```json.
// The language identifier (if present) must be a single token.
var openingFenceRegex = regexp.MustCompile("^```(\\S*)\\s*$")

// StripCodeFences removes a Markdown code fence wrapping the whole response.
// Only a fence at the very start and a fence at the very end of the trimmed
// response are stripped; backtick sequences inside the content are left
// alone, and an unbalanced fence never corrupts the content. The operation
// is idempotent.
func StripCodeFences(response string) string {
	s := strings.TrimSpace(response)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	nl := strings.IndexByte(s, '\n')
	if nl < 0 {
		// Single line such as "```" or "```json": nothing wrapped.
		if openingFenceRegex.MatchString(s) {
			return ""
		}
		return s
	}
	if !openingFenceRegex.MatchString(s[:nl]) {
		// Leading backticks but not a fence line, e.g. "```inline code```".
		return s
	}
	body := s[nl+1:]

	// A closing fence must be the last non-blank line of the response.
	trimmed := strings.TrimRight(body, " \t\r\n")
	if last := lastLine(trimmed); strings.TrimSpace(last) == "```" {
		trimmed = trimmed[:len(trimmed)-len(last)]
	}
	return strings.TrimSpace(trimmed)
}

func lastLine(s string) string {
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		return s[idx+1:]
	}
	return s
}

// ExtractJSON returns the JSON document embedded in an LLM response. It
// strips a wrapping code fence first and then falls back to the span between
// the first opening brace and the last closing brace, which tolerates models
// that preface the JSON with prose.
func ExtractJSON(response string) string {
	s := StripCodeFences(response)
	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		return s
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
