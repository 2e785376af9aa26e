package utils

import (
	"regexp"
	"strings"
)

var (
	slugStrip  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugHyphen = regexp.MustCompile(`[\s-]+`)
)

// Slugify turns a title into a URL slug: lowercased, stripped of
// punctuation, whitespace collapsed to hyphens, truncated to maxLen.
func Slugify(s string, maxLen int) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugHyphen.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if maxLen > 0 && len(s) > maxLen {
		s = strings.Trim(s[:maxLen], "-")
	}

	return s
}
