package registry

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"

	"github.com/janpfeifer/must"
	"github.com/viant/afs"
	"github.com/viant/shimgen/inspector/graph"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultConfig []byte

var defaultRegistry = must.M1(Load(defaultConfig))

// Registry is the single source of truth for classification shared by every generator.
// It must be treated as read-only once loaded.
type Registry struct {
	Version     int                  `yaml:"version"`
	Suffix      string               `yaml:"suffix"`      // Appended to wrapped symbol names
	Structs     NameSet              `yaml:"structs"`     // Aggregates requiring indirection
	Scalars     map[string]Tag       `yaml:"scalars"`     // C spelling -> primitive tag
	Qualifiers  []string             `yaml:"qualifiers"`  // Return type decorations to drop
	HostExports NameSet              `yaml:"hostExports"` // Symbols the host registers natively
	Literals    *graph.ConstantTable `yaml:"literals"`    // Constants not expressed as enums
}

// Default returns a copy of the built-in registry
func Default() *Registry {
	return defaultRegistry.Clone()
}

// Load parses and validates a registry document
func Load(data []byte) (*Registry, error) {
	ret := &Registry{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(ret); err != nil {
		return nil, fmt.Errorf("failed to decode registry: %w", err)
	}
	if err := ret.Init(); err != nil {
		return nil, err
	}
	return ret, nil
}

// LoadURL reads a registry document from any afs supported location
func LoadURL(ctx context.Context, fs afs.Service, URL string) (*Registry, error) {
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry %s: %w", URL, err)
	}
	ret, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", URL, err)
	}
	return ret, nil
}

// Init applies defaults and validates the registry
func (r *Registry) Init() error {
	if r.Version <= 0 {
		return fmt.Errorf("invalid registry version: %d", r.Version)
	}
	if r.Suffix == "" {
		r.Suffix = "Wrapper"
	}
	if r.Scalars == nil {
		r.Scalars = map[string]Tag{}
	}
	normalized := make(map[string]Tag, len(r.Scalars))
	for spelling, tag := range r.Scalars {
		if !tag.Valid() {
			return fmt.Errorf("scalar %q: unknown primitive tag %q", spelling, tag)
		}
		normalized[CanonicalType(spelling)] = tag
	}
	r.Scalars = normalized
	if _, ok := r.Scalars["void"]; !ok {
		r.Scalars["void"] = TagVoid
	}
	for _, name := range r.Structs.Names() {
		if _, ok := r.Scalars[name]; ok {
			return fmt.Errorf("type %q is both a struct and a scalar", name)
		}
	}
	if r.Literals == nil {
		r.Literals = graph.NewConstantTable()
	}
	return nil
}

// Clone returns a deep copy
func (r *Registry) Clone() *Registry {
	ret := &Registry{
		Version:     r.Version,
		Suffix:      r.Suffix,
		Structs:     NewNameSet(r.Structs.Names()...),
		Scalars:     make(map[string]Tag, len(r.Scalars)),
		Qualifiers:  append([]string(nil), r.Qualifiers...),
		HostExports: NewNameSet(r.HostExports.Names()...),
		Literals:    graph.NewConstantTable(),
	}
	for spelling, tag := range r.Scalars {
		ret.Scalars[spelling] = tag
	}
	ret.Literals.Merge(r.Literals)
	return ret
}

// Marshal renders the registry as YAML, used for fingerprinting and dumping the effective config
func (r *Registry) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}
