package utils

import "strings"

// ExtractJSON strips a markdown code fence from a model response, returning
// the inner JSON payload. Responses without a fence are returned trimmed.
func ExtractJSON(s string) string {
	trimmed := strings.TrimSpace(s)
	start := strings.Index(trimmed, "```")
	if start == -1 {
		return trimmed
	}
	rest := trimmed[start+3:]
	if strings.HasPrefix(rest, "json") {
		rest = rest[len("json"):]
	}
	end := strings.Index(rest, "```")
	if end == -1 {
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(rest[:end])
}
