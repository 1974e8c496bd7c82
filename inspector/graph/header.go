package graph

import "strings"

// Parameter represents a single parameter of a C prototype
type Parameter struct {
	Type              string `yaml:"type"`           // Declared type, pointer stars attached to the type stay here
	Name              string `yaml:"name"`           // Declared name, a leading pointer sigil stays part of the name
	IsPointerDeclared bool   `yaml:"ptr,omitempty"` // Whether the name carries a leading '*'
}

// BareName returns the parameter name without pointer sigils or array suffix
func (p *Parameter) BareName() string {
	name := strings.TrimLeft(p.Name, "*")
	if idx := strings.IndexByte(name, '['); idx != -1 {
		name = name[:idx]
	}
	return name
}

// IsArray returns true if the parameter name carries an array suffix
func (p *Parameter) IsArray() bool {
	return strings.IndexByte(p.Name, '[') != -1
}

// Function represents a parsed single-line C prototype
type Function struct {
	ReturnType string       `yaml:"returnType"`
	Name       string       `yaml:"name"`
	Parameters []*Parameter `yaml:"parameters,omitempty"`
	Line       int          `yaml:"line,omitempty"` // 1-based line in the source header
	Raw        string       `yaml:"-"`
}

// Prototype renders the declaration back in its canonical single-line form
func (f *Function) Prototype() string {
	builder := &strings.Builder{}
	builder.WriteString(f.ReturnType)
	builder.WriteByte(' ')
	builder.WriteString(f.Name)
	builder.WriteByte('(')
	if len(f.Parameters) == 0 {
		builder.WriteString("void")
	}
	for i, param := range f.Parameters {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(param.Type)
		builder.WriteByte(' ')
		builder.WriteString(param.Name)
	}
	builder.WriteByte(')')
	return builder.String()
}

// Skipped records a header line that was not recognized as a declaration
type Skipped struct {
	Header string `yaml:"header,omitempty"`
	Line   int    `yaml:"line"`
	Text   string `yaml:"text"`
	Reason string `yaml:"reason"`
}

// Header represents one input header with its declarations and enum blocks
type Header struct {
	Name      string       // File name
	URL       string       // Location the header was read from
	Functions []*Function  // Prototypes in declaration order
	Enums     []*EnumBlock // typedef enum blocks in source order
	Skipped   []*Skipped   // Lines dropped by the tolerance policy

	functionMap map[string]int // Map of functions for quick lookup
}

// AddFunction appends a function keeping the lookup index current
func (h *Header) AddFunction(function *Function) {
	h.Functions = append(h.Functions, function)
	if h.functionMap == nil {
		return
	}
	if _, ok := h.functionMap[function.Name]; !ok {
		h.functionMap[function.Name] = len(h.Functions) - 1
	}
}

// LookupFunction retrieves the first function declared with the given name
func (h *Header) LookupFunction(name string) *Function {
	if len(h.functionMap) == 0 {
		h.indexFunctions()
	}
	if idx, ok := h.functionMap[name]; ok && idx < len(h.Functions) {
		return h.Functions[idx]
	}
	return nil
}

func (h *Header) indexFunctions() {
	h.functionMap = make(map[string]int, len(h.Functions))
	for i, function := range h.Functions {
		if function == nil {
			continue
		}
		if _, ok := h.functionMap[function.Name]; !ok {
			h.functionMap[function.Name] = i
		}
	}
}
