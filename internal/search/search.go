// Package search implements title prefix matching for category views.
package search

import (
	"strings"

	"github.com/erazemk/playlist/internal/model"
)

// Sanitize keeps only ASCII letters, digits and spaces, collapses runs of
// spaces into one and trims the result.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ':
			if !space {
				b.WriteByte(' ')
			}
			space = true
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
			space = false
		}
	}
	return strings.TrimSpace(b.String())
}

// Matches reports whether the sanitized title starts with the sanitized
// query, ignoring case. An empty query matches every title.
func Matches(query, title string) bool {
	return matches(normalize(query), title)
}

// Filter returns a predicate selecting the games whose title matches query.
func Filter(query string) func(model.Game) bool {
	q := normalize(query)
	return func(g model.Game) bool {
		return matches(q, g.Title)
	}
}

func normalize(s string) string {
	return strings.ToLower(Sanitize(s))
}

func matches(normalizedQuery, title string) bool {
	if normalizedQuery == "" {
		return true
	}
	return strings.HasPrefix(normalize(title), normalizedQuery)
}
