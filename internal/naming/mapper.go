package naming

import "fmt"

// Mapper resolves metric names from an ordered rule list.
type Mapper struct {
	rules []compiledRule
}

// Compile validates rules and returns a Mapper that evaluates them in
// the given order.
func Compile(rules []Rule) (*Mapper, error) {
	m := &Mapper{rules: make([]compiledRule, 0, len(rules))}

	for i, r := range rules {
		c, err := compileRule(r)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}

		m.rules = append(m.rules, c)
	}

	return m, nil
}

// Resolve returns the metric name (without prefix) for a counter. The
// second return value is false when the counter must be skipped, which
// happens only when it carries no value.
//
// The first matching rule determines the name. Without a match the name
// is the sanitized group followed by the sanitized counter.
func (m *Mapper) Resolve(group, counter string, value *int64) (string, bool) {
	if value == nil {
		return "", false
	}

	for i := range m.rules {
		if name, ok := m.rules[i].resolve(group, counter); ok {
			return name, true
		}
	}

	return Fallback(group, counter), true
}

// Len returns the number of compiled rules.
func (m *Mapper) Len() int {
	return len(m.rules)
}

// Fallback is the name used when no rule matches.
func Fallback(group, counter string) string {
	return sanitizeNonEmpty(group) + "." + sanitizeNonEmpty(counter)
}

// sanitizeNonEmpty is Sanitize, except that empty input yields a single
// replacement character so the result is always a valid segment.
func sanitizeNonEmpty(s string) string {
	if s == "" {
		return string(Replacement)
	}

	return Sanitize(s)
}
