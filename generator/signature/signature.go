// Package signature describes every bindable symbol as primitive argument and return tags.
package signature

import (
	"strings"

	"github.com/viant/shimgen/generator/wrapper"
	"github.com/viant/shimgen/inspector/graph"
	"github.com/viant/shimgen/registry"
)

type (
	// Entry is the host-side binding descriptor of one symbol
	Entry struct {
		SymbolName    string         `yaml:"symbol" json:"symbol"`
		OriginalName  string         `yaml:"-" json:"-"`
		ParameterTags []registry.Tag `yaml:"params,flow" json:"params"`
		ReturnTag     registry.Tag   `yaml:"return" json:"return"`
		Header        string         `yaml:"header,omitempty" json:"header,omitempty"`
	}

	// Warning reports a C type that degraded to an opaque buffer
	Warning struct {
		Symbol    string `yaml:"symbol"`
		Parameter string `yaml:"parameter,omitempty"` // Empty for the return type
		Type      string `yaml:"type"`
	}

	// Option configures a Generator
	Option func(*Generator)

	// Generator derives entries from wrapper artifacts
	Generator struct {
		registry    *registry.Registry
		hostLibrary bool
	}
)

// WithHostLibrary suppresses entries for symbols the host runtime already exports
func WithHostLibrary(enabled bool) Option {
	return func(g *Generator) {
		g.hostLibrary = enabled
	}
}

// New creates a generator sharing the wrapper generator's registry
func New(reg *registry.Registry, opts ...Option) *Generator {
	ret := &Generator{registry: reg}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Generate describes one artifact. It returns nil when the symbol is suppressed in host-library mode.
func (g *Generator) Generate(artifact *wrapper.Artifact) (*Entry, []*Warning) {
	if g.hostLibrary && g.registry.HostExports.Has(artifact.OriginalName) {
		return nil, nil
	}
	function := artifact.Function
	entry := &Entry{
		SymbolName:    artifact.WrapperName,
		OriginalName:  artifact.OriginalName,
		ParameterTags: make([]registry.Tag, 0, len(function.Parameters)),
		Header:        artifact.Header,
	}
	var warnings []*Warning
	for i, param := range function.Parameters {
		boxed := i < len(artifact.Boxed) && artifact.Boxed[i]
		tag, ok := g.parameterTag(param, boxed)
		if !ok {
			warnings = append(warnings, &Warning{Symbol: entry.SymbolName, Parameter: param.BareName(), Type: param.Type})
		}
		entry.ParameterTags = append(entry.ParameterTags, tag)
	}
	tag, ok := g.returnTag(function.ReturnType, artifact.BoxedReturn)
	if !ok {
		warnings = append(warnings, &Warning{Symbol: entry.SymbolName, Type: function.ReturnType})
	}
	entry.ReturnTag = tag
	return entry, warnings
}

// GenerateAll describes artifacts in order, dropping suppressed ones
func (g *Generator) GenerateAll(artifacts []*wrapper.Artifact) ([]*Entry, []*Warning) {
	var entries []*Entry
	var warnings []*Warning
	for _, artifact := range artifacts {
		entry, entryWarnings := g.Generate(artifact)
		warnings = append(warnings, entryWarnings...)
		if entry != nil {
			entries = append(entries, entry)
		}
	}
	return entries, warnings
}

// parameterTag resolves a parameter; ok is false when the type degraded to buffer
func (g *Generator) parameterTag(param *graph.Parameter, boxed bool) (registry.Tag, bool) {
	if param.IsArray() {
		return registry.TagPointer, true
	}
	if registry.IsPointerParam(param) {
		if tag, ok := g.registry.Lookup(pointerSpelling(param)); ok {
			return tag, true
		}
		return registry.TagPointer, true
	}
	if boxed {
		return registry.TagPointer, true
	}
	return g.registry.Lookup(param.Type)
}

func (g *Generator) returnTag(returnType string, boxed bool) (registry.Tag, bool) {
	if boxed {
		return registry.TagPointer, true
	}
	if tag, ok := g.registry.Lookup(returnType); ok {
		return tag, true
	}
	if registry.IsPointerType(returnType) {
		return registry.TagPointer, true
	}
	return registry.TagBuffer, false
}

// pointerSpelling moves pointer sigils from the name onto the type: ("const char", "*text") -> "const char*"
func pointerSpelling(param *graph.Parameter) string {
	stars := len(param.Name) - len(strings.TrimLeft(param.Name, "*"))
	return param.Type + strings.Repeat("*", stars)
}
