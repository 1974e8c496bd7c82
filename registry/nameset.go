package registry

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// NameSet is an immutable set of type or symbol names
type NameSet struct {
	names map[string]struct{}
}

// NewNameSet creates a set, empty names are ignored
func NewNameSet(names ...string) NameSet {
	set := NameSet{names: make(map[string]struct{}, len(names))}
	for _, name := range names {
		if name != "" {
			set.names[name] = struct{}{}
		}
	}
	return set
}

// Has returns true if name is a member
func (s NameSet) Has(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Len returns the number of members
func (s NameSet) Len() int {
	return len(s.names)
}

// Names returns members in lexicographic order
func (s NameSet) Names() []string {
	result := make([]string, 0, len(s.names))
	for name := range s.names {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// MarshalYAML renders the set as a sorted sequence
func (s NameSet) MarshalYAML() (interface{}, error) {
	return s.Names(), nil
}

// UnmarshalYAML reads a sequence of names
func (s *NameSet) UnmarshalYAML(node *yaml.Node) error {
	var names []string
	if err := node.Decode(&names); err != nil {
		return fmt.Errorf("name set at line %d: %w", node.Line, err)
	}
	*s = NewNameSet(names...)
	return nil
}
