package utils

import (
	"regexp"
	"strings"
)

// Patterns for markup that must never reach storage: script/iframe blocks,
// javascript: URIs, and inline event handlers.
var (
	scriptTagRe    = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	iframeTagRe    = regexp.MustCompile(`(?is)<iframe\b[^>]*>.*?</iframe\s*>`)
	openScriptRe   = regexp.MustCompile(`(?i)<(/?)(script|iframe)\b[^>]*>`)
	jsURIRe        = regexp.MustCompile(`(?i)javascript\s*:`)
	eventHandlerRe = regexp.MustCompile(`(?i)\son\w+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
)

// SanitizeText strips executable markup from free-text input before storage.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	s = scriptTagRe.ReplaceAllString(s, "")
	s = iframeTagRe.ReplaceAllString(s, "")
	s = openScriptRe.ReplaceAllString(s, "") // unbalanced tags
	s = jsURIRe.ReplaceAllString(s, "")
	s = eventHandlerRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// SanitizeSlice sanitizes every element of a free-text slice, dropping
// entries that end up empty.
func SanitizeSlice(in []string) []string {
	var out []string
	for _, s := range in {
		if cleaned := SanitizeText(s); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}
