package sanitize

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy

	whitespace = regexp.MustCompile(`\s+`)
)

func getStrictPolicy() *bluemonday.Policy {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// Text strips every HTML tag, decodes entities, and collapses runs of whitespace.
// The result is plain text; templates escape it again on output.
func Text(input string) string {
	value := strings.TrimSpace(input)
	if value == "" {
		return ""
	}
	stripped := html.UnescapeString(getStrictPolicy().Sanitize(value))
	return strings.TrimSpace(whitespace.ReplaceAllString(stripped, " "))
}

// Multiline is Text that keeps line breaks, for descriptions.
func Multiline(input string) string {
	lines := strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, Text(line))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// URL returns the trimmed value when it is an absolute http(s) URL, else "".
func URL(input string) string {
	value := strings.TrimSpace(input)
	lower := strings.ToLower(value)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return value
	}
	return ""
}
