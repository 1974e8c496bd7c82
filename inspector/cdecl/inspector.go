package cdecl

import (
	"github.com/viant/shimgen/inspector/graph"
)

// Inspector extracts prototypes from header sources
type Inspector struct {
	parser *Parser
}

// NewInspector creates a declaration inspector
func NewInspector(opts ...Option) *Inspector {
	return &Inspector{parser: NewParser(opts...)}
}

// InspectSource parses one header; malformed lines end up in Header.Skipped
func (i *Inspector) InspectSource(name string, src []byte) (*graph.Header, error) {
	header := &graph.Header{Name: name}
	functions, skipped := i.parser.Parse(string(src))
	for _, function := range functions {
		header.AddFunction(function)
	}
	for _, item := range skipped {
		item.Header = name
	}
	header.Skipped = skipped
	return header, nil
}
