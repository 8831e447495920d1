// Package utils provides shared utilities for text, math, and logging.
package utils

import (
	"strings"
	"time"
	"unicode"
)

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Words lowercases s and splits it into alphanumeric words.
func Words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// WordSet returns the set of lowercase alphanumeric words in s.
func WordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range Words(s) {
		set[w] = true
	}
	return set
}

// DaysSince parses a published-at string and returns whole days elapsed until
// now. Accepts RFC 3339 and plain "2006-01-02" dates. Returns nil when the
// string is empty or unparseable.
func DaysSince(published string, now time.Time) *int {
	if published == "" {
		return nil
	}
	var ts time.Time
	var err error
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z", "2006-01-02"} {
		ts, err = time.Parse(layout, published)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil
	}
	days := int(now.Sub(ts).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return &days
}
