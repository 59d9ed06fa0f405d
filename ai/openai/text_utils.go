package openai

import "strings"

// cleanCompletion trims whitespace and strips a surrounding markdown code fence.
func cleanCompletion(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop a language tag on the opening fence line
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], " \t") {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// tokenOrNone returns "none" for an empty key so local OpenAI-compatible
// services that don't require authentication still accept the request.
func tokenOrNone(key string) string {
	if key == "" {
		return "none"
	}
	return key
}
