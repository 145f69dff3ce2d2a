// Package slug converts display names to URL segments and back.
package slug

import (
	"regexp"
	"strings"
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	nonWord    = regexp.MustCompile(`[^\w-]+`)
	dashRuns   = regexp.MustCompile(`--+`)
	wordStart  = regexp.MustCompile(`\b\w`)
)

// Of returns the slug of s, for example "Nike Space" becomes "nike-space".
func Of(s string) string {
	s = strings.ToLower(s)
	s = whitespace.ReplaceAllString(s, "-")
	s = nonWord.ReplaceAllString(s, "")
	s = dashRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Title is a best effort reversal of Of, used when no stored name matches.
func Title(slug string) string {
	s := strings.ReplaceAll(slug, "-", " ")
	return wordStart.ReplaceAllStringFunc(s, strings.ToUpper)
}

// Match returns the first candidate whose slug equals the slug of s.
func Match(s string, candidates []string) (string, bool) {
	want := Of(s)
	for _, c := range candidates {
		if Of(c) == want {
			return c, true
		}
	}

	return "", false
}

// Path joins the slugs of parts with slashes and a leading slash.
func Path(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(Of(p))
	}

	return b.String()
}
