// Package naming resolves Graphite metric names for job counters.
package naming

import "strings"

// Replacement is substituted for every character outside the safe set.
const Replacement = '_'

// Sanitize replaces every rune outside [A-Za-z0-9_-] with '_'.
// Substitution is one-for-one: nothing is dropped and adjacent
// replacements are never merged.
func Sanitize(segment string) string {
	var b strings.Builder

	b.Grow(len(segment))

	for _, r := range segment {
		if isSafe(r) {
			b.WriteRune(r)

			continue
		}

		b.WriteRune(Replacement)
	}

	return b.String()
}

// ValidSegment reports whether s is a non-empty run of safe characters.
func ValidSegment(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !isSafe(r) {
			return false
		}
	}

	return true
}

// ValidName reports whether s is one or more valid segments joined by '.'.
func ValidName(s string) bool {
	if s == "" {
		return false
	}

	for _, seg := range strings.Split(s, ".") {
		if !ValidSegment(seg) {
			return false
		}
	}

	return true
}

func isSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-':
		return true
	default:
		return false
	}
}
