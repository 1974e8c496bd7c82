package emitter

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/viant/shimgen/inspector/graph"
	"gopkg.in/yaml.v3"
)

// DefaultNamespace is the host namespace receiving the constants
const DefaultNamespace = "gui::consts"

// ConstantGroup is one constants domain (core, gui, a third-party header or literals)
type ConstantGroup struct {
	Name  string
	Table *graph.ConstantTable
}

// Constants writes the constants artifact; later groups win on symbol collisions
func Constants(w io.Writer, format Format, namespace, fingerprint string, groups []*ConstantGroup) error {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	switch format {
	case FormatRew:
		return rewConstants(w, namespace, fingerprint, groups)
	case FormatYAML:
		if err := writeBanner(w, "#", fingerprint); err != nil {
			return err
		}
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(Merge(groups)); err != nil {
			return fmt.Errorf("failed to encode constants: %w", err)
		}
		return encoder.Close()
	case FormatJSON:
		data, err := json.Marshal(Merge(groups))
		if err != nil {
			return fmt.Errorf("failed to encode constants: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}
	return fmt.Errorf("unsupported constants format: %q", format)
}

// Merge flattens groups into a single table
func Merge(groups []*ConstantGroup) *graph.ConstantTable {
	ret := graph.NewConstantTable()
	for _, group := range groups {
		ret.Merge(group.Table)
	}
	return ret
}

// rewConstants renders the namespace assignment spreading one object literal per group
func rewConstants(w io.Writer, namespace, fingerprint string, groups []*ConstantGroup) error {
	writer := bufio.NewWriter(w)
	if err := writeBanner(writer, "#", fingerprint); err != nil {
		return err
	}
	fmt.Fprintf(writer, "package %s;\n\nusing namespace rew::ns;\n\n%s:: = {\n", namespace, namespace)
	var parts []string
	for _, group := range groups {
		if group.Table.Len() == 0 {
			continue
		}
		data, err := json.Marshal(group.Table)
		if err != nil {
			return fmt.Errorf("failed to encode %s constants: %w", group.Name, err)
		}
		parts = append(parts, "  ..."+string(data))
	}
	for i, part := range parts {
		writer.WriteString(part)
		if i < len(parts)-1 {
			writer.WriteByte(',')
		}
		writer.WriteByte('\n')
	}
	writer.WriteString("}\n")
	return writer.Flush()
}
