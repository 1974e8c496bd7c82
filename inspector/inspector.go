package inspector

import (
	"fmt"
	"path"
	"strings"

	"github.com/viant/shimgen/inspector/cdecl"
	"github.com/viant/shimgen/inspector/cenum"
	"github.com/viant/shimgen/inspector/graph"
)

// Inspector provides an interface for inspecting header sources
type Inspector interface {
	// InspectSource parses a header from a byte slice
	InspectSource(name string, src []byte) (*graph.Header, error)
}

// Factory creates appropriate inspectors based on header kind
type Factory struct {
	declarations *cdecl.Inspector
	enums        *cenum.Inspector
}

// NewFactory creates a new inspector factory, options configure the declaration parser
func NewFactory(opts ...cdecl.Option) *Factory {
	return &Factory{
		declarations: cdecl.NewInspector(opts...),
		enums:        cenum.NewInspector(),
	}
}

// GetInspector returns an appropriate inspector based on file extension:
// ".h" files carry single-line prototypes, ".hpp" files carry typedef enum blocks
func (f *Factory) GetInspector(filename string) (Inspector, error) {
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".h":
		return f.declarations, nil
	case ".hpp", ".hh":
		return f.enums, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

// Enums returns the enum block inspector regardless of extension
func (f *Factory) Enums() Inspector {
	return f.enums
}

// InspectSource is a convenience method that gets the appropriate inspector and inspects the source
func (f *Factory) InspectSource(name string, src []byte) (*graph.Header, error) {
	inspector, err := f.GetInspector(name)
	if err != nil {
		return nil, err
	}
	return inspector.InspectSource(name, src)
}
