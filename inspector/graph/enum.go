package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// EnumMember represents a single enumerator with its raw, unevaluated value expression
type EnumMember struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr,omitempty"`
	Line int    `yaml:"line,omitempty"`
}

// EnumBlock represents a typedef enum block; only member symbols matter downstream
type EnumBlock struct {
	Tag     string        `yaml:"tag,omitempty"`   // Optional name between 'enum' and '{'
	Alias   string        `yaml:"alias,omitempty"` // typedef alias after '}'
	Members []*EnumMember `yaml:"members"`
	Line    int           `yaml:"line,omitempty"`
}

// Constant is a resolved symbol/value pair
type Constant struct {
	Name  string
	Value int64
}

// ConstantTable is an insertion ordered symbol -> integer mapping.
// Re-assigning an existing symbol replaces its value and keeps its original position.
type ConstantTable struct {
	keys   []string
	values map[string]int64
}

// NewConstantTable creates an empty table
func NewConstantTable() *ConstantTable {
	return &ConstantTable{values: map[string]int64{}}
}

// Put assigns value to name
func (t *ConstantTable) Put(name string, value int64) {
	if t.values == nil {
		t.values = map[string]int64{}
	}
	if _, ok := t.values[name]; !ok {
		t.keys = append(t.keys, name)
	}
	t.values[name] = value
}

// Get returns the value assigned to name
func (t *ConstantTable) Get(name string) (int64, bool) {
	if t == nil {
		return 0, false
	}
	value, ok := t.values[name]
	return value, ok
}

// Len returns the number of symbols
func (t *ConstantTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Keys returns symbols in insertion order
func (t *ConstantTable) Keys() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.keys...)
}

// Constants returns symbol/value pairs in insertion order
func (t *ConstantTable) Constants() []Constant {
	if t == nil {
		return nil
	}
	result := make([]Constant, 0, len(t.keys))
	for _, key := range t.keys {
		result = append(result, Constant{Name: key, Value: t.values[key]})
	}
	return result
}

// Merge copies every constant of other into t, later values win
func (t *ConstantTable) Merge(other *ConstantTable) {
	for _, constant := range other.Constants() {
		t.Put(constant.Name, constant.Value)
	}
}

// MarshalYAML renders the table as an ordered mapping
func (t *ConstantTable) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, constant := range t.Constants() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: constant.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(constant.Value, 10)},
		)
	}
	return node, nil
}

// UnmarshalYAML reads an ordered mapping
func (t *ConstantTable) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("constant table: expected mapping, got %v at line %d", node.Tag, node.Line)
	}
	t.keys = nil
	t.values = map[string]int64{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		var value int64
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("constant table: %s: %w", name, err)
		}
		t.Put(name, value)
	}
	return nil
}

// MarshalJSON renders the table as a compact ordered JSON object
func (t *ConstantTable) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, constant := range t.Constants() {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(constant.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatInt(constant.Value, 10))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
