package service

import (
	"html"
	"regexp"
	"strings"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// sanitizeText strips HTML tags, trims whitespace, and escapes what remains.
// Applied to every free-text field that reaches a public page.
func sanitizeText(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	return html.EscapeString(s)
}

func sanitizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	clean := sanitizeText(*s)
	return &clean
}
