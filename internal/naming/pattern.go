package naming

import "strings"

// pattern is a compiled '*' wildcard matcher. The zero value and "*"
// match everything.
type pattern struct {
	parts         []string
	anchoredStart bool
	anchoredEnd   bool
	matchAll      bool
}

func compilePattern(raw string) pattern {
	p := strings.TrimSpace(raw)
	if p == "" || p == "*" {
		return pattern{matchAll: true}
	}

	return pattern{
		parts:         strings.Split(p, "*"),
		anchoredStart: !strings.HasPrefix(p, "*"),
		anchoredEnd:   !strings.HasSuffix(p, "*"),
	}
}

func (p pattern) match(value string) bool {
	if p.matchAll {
		return true
	}

	// No wildcard at all: exact comparison.
	if len(p.parts) == 1 {
		return value == p.parts[0]
	}

	cursor := 0
	first := 0
	last := len(p.parts)

	if p.anchoredStart {
		if !strings.HasPrefix(value, p.parts[0]) {
			return false
		}

		cursor = len(p.parts[0])
		first = 1
	}

	if p.anchoredEnd {
		last--
	}

	for _, segment := range p.parts[first:last] {
		if segment == "" {
			continue
		}

		offset := strings.Index(value[cursor:], segment)
		if offset < 0 {
			return false
		}

		cursor += offset + len(segment)
	}

	if p.anchoredEnd {
		end := p.parts[len(p.parts)-1]

		return len(value)-cursor >= len(end) && strings.HasSuffix(value, end)
	}

	return true
}
