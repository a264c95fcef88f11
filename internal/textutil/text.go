package textutil

import (
	"regexp"
	"strings"
)

var (
	htmlTag      = regexp.MustCompile(`<[^>]*>?`)
	jsScheme     = regexp.MustCompile(`(?i)javascript:`)
	eventHandler = regexp.MustCompile(`on\w+="[^"]*"`)
)

// Truncate shortens text to at most maxRunes runes, appending "..." when
// anything was cut.
func Truncate(text string, maxRunes int) string {
	r := []rune(text)
	if maxRunes < 0 || len(r) <= maxRunes {
		return text
	}
	return string(r[:maxRunes]) + "..."
}

// Sanitize strips HTML tags, javascript: URLs and inline event handlers
// from user-supplied text before it is echoed or logged.
func Sanitize(html string) string {
	s := htmlTag.ReplaceAllString(html, "")
	s = jsScheme.ReplaceAllString(s, "")
	s = eventHandler.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
