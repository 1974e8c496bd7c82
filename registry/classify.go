package registry

import (
	"strings"

	"github.com/viant/shimgen/inspector/graph"
)

// CanonicalType collapses whitespace and attaches pointer stars to the type: "const char *" -> "const char*"
func CanonicalType(spelling string) string {
	fields := strings.Fields(strings.ReplaceAll(spelling, "*", " * "))
	builder := &strings.Builder{}
	for i, field := range fields {
		if i > 0 && field != "*" {
			builder.WriteByte(' ')
		}
		builder.WriteString(field)
	}
	return builder.String()
}

// NormalizeType strips pointer and array decoration and a leading const
func NormalizeType(spelling string) string {
	if idx := strings.IndexByte(spelling, '['); idx != -1 {
		spelling = spelling[:idx]
	}
	spelling = strings.ReplaceAll(spelling, "*", " ")
	spelling = strings.TrimSpace(spelling)
	if rest, ok := strings.CutPrefix(spelling, "const "); ok {
		spelling = rest
	}
	return strings.Join(strings.Fields(spelling), " ")
}

// IsPointerType returns true if the type spelling itself carries a pointer star
func IsPointerType(spelling string) bool {
	return strings.IndexByte(spelling, '*') != -1
}

// IsPointerParam returns true when a parameter crosses the boundary as an address
func IsPointerParam(param *graph.Parameter) bool {
	return param.IsPointerDeclared || IsPointerType(param.Type) || param.IsArray()
}

// IsAggregateParam returns true when the parameter is a struct passed by value
func (r *Registry) IsAggregateParam(param *graph.Parameter) bool {
	if IsPointerParam(param) {
		return false
	}
	return r.Structs.Has(NormalizeType(param.Type))
}

// IsAggregateReturn returns true when the return type is a struct returned by value
func (r *Registry) IsAggregateReturn(returnType string) bool {
	if IsPointerType(returnType) {
		return false
	}
	return r.Structs.Has(NormalizeType(returnType))
}

// NeedsIndirection returns true if any parameter or the return value must be boxed
func (r *Registry) NeedsIndirection(function *graph.Function) bool {
	if r.IsAggregateReturn(function.ReturnType) {
		return true
	}
	for _, param := range function.Parameters {
		if r.IsAggregateParam(param) {
			return true
		}
	}
	return false
}

// Lookup resolves a C spelling against the primitive table.
// Unknown spellings resolve to TagBuffer with ok == false.
func (r *Registry) Lookup(spelling string) (Tag, bool) {
	canonical := CanonicalType(spelling)
	if tag, ok := r.Scalars[canonical]; ok {
		return tag, true
	}
	if rest, ok := strings.CutPrefix(canonical, "const "); ok {
		if tag, ok := r.Scalars[rest]; ok {
			return tag, true
		}
	}
	return TagBuffer, false
}
