package counter

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// document is the on-disk counter layout. JSON documents parse too,
// since JSON is valid YAML.
type document struct {
	Groups []struct {
		Name     string `yaml:"name"`
		Counters []struct {
			Name  string  `yaml:"name"`
			Value *string `yaml:"value"`
		} `yaml:"counters"`
	} `yaml:"groups"`
}

// LoadFile reads a counter document from path.
func LoadFile(path string) (Groups, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading counters file %s: %w", path, err)
	}

	groups, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing counters file %s: %w", path, err)
	}

	return groups, nil
}

// Parse decodes a counter document, preserving group and counter order.
// Missing, null or blank values produce counters without a value.
func Parse(data []byte) (Groups, error) {
	var doc document

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	groups := make(Groups, 0, len(doc.Groups))

	for gi, g := range doc.Groups {
		grp := Group{
			Name:     g.Name,
			Counters: make([]Counter, 0, len(g.Counters)),
		}

		for ci, c := range g.Counters {
			value, err := parseValue(c.Value)
			if err != nil {
				return nil, fmt.Errorf("groups[%d].counters[%d] %q: %w", gi, ci, c.Name, err)
			}

			grp.Counters = append(grp.Counters, Counter{Name: c.Name, Value: value})
		}

		groups = append(groups, grp)
	}

	return groups, nil
}

func parseValue(raw *string) (*int64, error) {
	if raw == nil {
		return nil, nil
	}

	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil, nil
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("value %q is not an integer", s)
	}

	return &v, nil
}
