// Package wrapper generates C shims for declarations that pass or return aggregates by value.
package wrapper

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/viant/shimgen/inspector/graph"
	"github.com/viant/shimgen/registry"
)

// Artifact is the generation outcome for one declaration
type Artifact struct {
	OriginalName     string          // Declared symbol
	WrapperName      string          // Symbol the host binds to, OriginalName when no shim was emitted
	NeedsIndirection bool            // Whether a shim was emitted
	SourceText       string          // C definition of the shim, empty without indirection
	Header           string          // Header the declaration came from
	Function         *graph.Function // Source declaration
	Boxed            []bool          // Per parameter, whether the shim takes it by address
	BoxedReturn      bool            // Whether the shim returns a heap allocated copy
}

// Generator generates wrapper artifacts
type Generator struct {
	registry *registry.Registry
}

// New creates a generator bound to a registry
func New(reg *registry.Registry) *Generator {
	return &Generator{registry: reg}
}

// Generate classifies one declaration and emits a shim when any aggregate crosses the boundary
func (g *Generator) Generate(function *graph.Function) *Artifact {
	ret := &Artifact{
		OriginalName: function.Name,
		WrapperName:  function.Name,
		Function:     function,
		Boxed:        make([]bool, len(function.Parameters)),
		BoxedReturn:  g.registry.IsAggregateReturn(function.ReturnType),
	}
	ret.NeedsIndirection = ret.BoxedReturn
	for i, param := range function.Parameters {
		ret.Boxed[i] = g.registry.IsAggregateParam(param)
		ret.NeedsIndirection = ret.NeedsIndirection || ret.Boxed[i]
	}
	if !ret.NeedsIndirection {
		return ret
	}
	ret.WrapperName = function.Name + g.registry.Suffix
	ret.SourceText = g.render(ret)
	return ret
}

// GenerateAll generates artifacts in declaration order
func (g *Generator) GenerateAll(header string, functions []*graph.Function) []*Artifact {
	result := make([]*Artifact, 0, len(functions))
	for _, function := range functions {
		artifact := g.Generate(function)
		artifact.Header = header
		result = append(result, artifact)
	}
	return result
}

func (g *Generator) render(artifact *Artifact) string {
	function := artifact.Function
	var buf bytes.Buffer

	returnType := function.ReturnType
	if artifact.BoxedReturn {
		returnType += "*"
	}
	params := make([]string, 0, len(function.Parameters))
	args := make([]string, 0, len(function.Parameters))
	for i, param := range function.Parameters {
		if artifact.Boxed[i] {
			params = append(params, fmt.Sprintf("%s* %s", param.Type, param.Name))
			args = append(args, "*"+param.BareName())
			continue
		}
		params = append(params, fmt.Sprintf("%s %s", param.Type, param.Name))
		args = append(args, param.BareName())
	}
	call := fmt.Sprintf("%s(%s)", function.Name, strings.Join(args, ", "))

	fmt.Fprintf(&buf, "%s %s(%s) {\n", returnType, artifact.WrapperName, strings.Join(params, ", "))
	switch {
	case artifact.BoxedReturn:
		boxed := registry.NormalizeType(function.ReturnType)
		fmt.Fprintf(&buf, "\t%s* result = malloc(sizeof(%s));\n", boxed, boxed)
		fmt.Fprintf(&buf, "\t*result = %s;\n", call)
		fmt.Fprintf(&buf, "\treturn result;\n")
	case function.ReturnType == "void":
		fmt.Fprintf(&buf, "\t%s;\n", call)
	default:
		fmt.Fprintf(&buf, "\treturn %s;\n", call)
	}
	fmt.Fprintf(&buf, "}\n")
	return buf.String()
}

// Wrapped returns the original names of artifacts that required a shim
func Wrapped(artifacts []*Artifact) []string {
	var result []string
	for _, artifact := range artifacts {
		if artifact.NeedsIndirection {
			result = append(result, artifact.OriginalName)
		}
	}
	return result
}
