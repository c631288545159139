package naming

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind selects how a Rule turns a counter into a metric name.
type Kind string

// Rule kinds.
const (
	// KindStatic maps one (group, counter) pair to a literal name.
	KindStatic Kind = "static"
	// KindRename rewrites counter names with a regular expression template.
	KindRename Kind = "rename"
	// KindImplicit uses the sanitized counter name under an optional base.
	KindImplicit Kind = "implicit"
)

// Rule is one configured mapping entry. Rules are evaluated in order
// and the first match wins.
type Rule struct {
	// Kind is one of static, rename or implicit.
	Kind Kind `yaml:"kind" toml:"kind"`

	// Group is a '*' wildcard matched against the counter group name.
	// Empty matches any group.
	Group string `yaml:"group" toml:"group"`

	// Counter selects counters within the group. For static rules it is
	// a '*' wildcard, for rename rules a regular expression. Ignored by
	// implicit rules.
	Counter string `yaml:"counter" toml:"counter"`

	// Name is the literal metric name (static), the expansion template
	// (rename) or the optional base name (implicit).
	Name string `yaml:"name" toml:"name"`
}

// templateRef matches $1, $name and ${name} references in a rename template.
var templateRef = regexp.MustCompile(`\$(\{[^}]*\}|[A-Za-z0-9_]+)`)

// compiledRule is a Rule with its patterns precompiled.
type compiledRule struct {
	kind    Kind
	group   pattern
	counter pattern
	expr    *regexp.Regexp
	name    string
}

func compileRule(r Rule) (compiledRule, error) {
	c := compiledRule{
		kind:  Kind(strings.ToLower(strings.TrimSpace(string(r.Kind)))),
		group: compilePattern(r.Group),
		name:  strings.TrimSpace(r.Name),
	}

	switch c.kind {
	case KindStatic:
		if c.name == "" {
			return c, fmt.Errorf("static rule requires a name")
		}

		if !ValidName(c.name) {
			return c, fmt.Errorf("static rule name %q is not a valid metric name", c.name)
		}

		c.counter = compilePattern(r.Counter)
	case KindRename:
		expr, err := regexp.Compile(r.Counter)
		if err != nil {
			return c, fmt.Errorf("compiling rename expression %q: %w", r.Counter, err)
		}

		if c.name == "" {
			return c, fmt.Errorf("rename rule requires a name template")
		}

		// Submatches are sanitized at expansion time, so any reference
		// stands in for a safe segment fragment here.
		if probe := templateRef.ReplaceAllString(c.name, "x"); !ValidName(probe) {
			return c, fmt.Errorf("rename template %q does not produce a valid metric name", c.name)
		}

		for _, ref := range templateRef.FindAllString(c.name, -1) {
			if subexpIndex(refKey(ref), expr.SubexpNames()) < 0 {
				return c, fmt.Errorf("rename template %q references unknown group %s", c.name, ref)
			}
		}

		c.expr = expr
	case KindImplicit:
		if c.name != "" && !ValidName(c.name) {
			return c, fmt.Errorf("implicit rule base %q is not a valid metric name", c.name)
		}
	default:
		return c, fmt.Errorf("unknown rule kind %q", r.Kind)
	}

	return c, nil
}

// resolve returns the metric name for the counter if the rule matches.
func (c *compiledRule) resolve(group, counter string) (string, bool) {
	if !c.group.match(group) {
		return "", false
	}

	switch c.kind {
	case KindStatic:
		if !c.counter.match(counter) {
			return "", false
		}

		return c.name, true
	case KindRename:
		submatches := c.expr.FindStringSubmatchIndex(counter)
		if submatches == nil {
			return "", false
		}

		return c.expand(counter, submatches), true
	case KindImplicit:
		if c.name == "" {
			return sanitizeNonEmpty(counter), true
		}

		return c.name + "." + sanitizeNonEmpty(counter), true
	}

	return "", false
}

// expand substitutes sanitized submatches into the rename template.
func (c *compiledRule) expand(counter string, submatches []int) string {
	names := c.expr.SubexpNames()

	return templateRef.ReplaceAllStringFunc(c.name, func(ref string) string {
		idx := subexpIndex(refKey(ref), names)
		if idx < 0 || submatches[2*idx] < 0 {
			return string(Replacement)
		}

		return sanitizeNonEmpty(counter[submatches[2*idx]:submatches[2*idx+1]])
	})
}

// refKey strips the '$' and optional braces from a template reference.
func refKey(ref string) string {
	key := strings.TrimPrefix(ref, "$")

	return strings.TrimSuffix(strings.TrimPrefix(key, "{"), "}")
}

// subexpIndex maps a numeric or named reference to its submatch index,
// or -1 if the expression has no such group.
func subexpIndex(key string, names []string) int {
	if n, err := strconv.Atoi(key); err == nil {
		if n >= 0 && n < len(names) {
			return n
		}

		return -1
	}

	for i, name := range names {
		if name != "" && name == key {
			return i
		}
	}

	return -1
}
