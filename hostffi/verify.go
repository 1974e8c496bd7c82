// Package hostffi checks a signature table against a compiled shim library.
package hostffi

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/jupiterrider/ffi"
	"github.com/viant/shimgen/generator/signature"
	"github.com/viant/shimgen/registry"
)

// Unresolved reports an entry the library cannot bind
type Unresolved struct {
	Symbol string `yaml:"symbol"`
	Reason string `yaml:"reason"`
}

var types = map[registry.Tag]*ffi.Type{
	registry.TagVoid:    &ffi.TypeVoid,
	registry.TagPointer: &ffi.TypePointer,
	registry.TagBuffer:  &ffi.TypePointer,
	registry.TagBool:    &ffi.TypeUint8,
	registry.TagU8:      &ffi.TypeUint8,
	registry.TagU16:     &ffi.TypeUint16,
	registry.TagU32:     &ffi.TypeUint32,
	registry.TagU64:     &ffi.TypeUint64,
	registry.TagI8:      &ffi.TypeSint8,
	registry.TagI16:     &ffi.TypeSint16,
	registry.TagI32:     &ffi.TypeSint32,
	registry.TagI64:     &ffi.TypeSint64,
	registry.TagF32:     &ffi.TypeFloat,
	registry.TagF64:     &ffi.TypeDouble,
}

// Type returns the libffi type describing a primitive tag
func Type(tag registry.Tag) (*ffi.Type, error) {
	if ret, ok := types[tag]; ok {
		return ret, nil
	}
	return nil, fmt.Errorf("unsupported primitive tag: %q", tag)
}

// LibraryPath returns the platform specific shared library file for name inside dir
func LibraryPath(dir, name string) string {
	var filename string
	switch runtime.GOOS {
	case "darwin":
		filename = "lib" + name + ".dylib"
	case "windows":
		filename = name + ".dll"
	default:
		filename = "lib" + name + ".so"
	}
	return filepath.Join(dir, filename)
}

// Verify loads the library and prepares a call interface for every entry.
// Entries that do not resolve to an exported symbol are returned, the error covers load failures only.
func Verify(libPath string, entries []*signature.Entry) ([]*Unresolved, error) {
	lib, err := ffi.Load(libPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load library: %w", err)
	}
	defer lib.Close()

	var result []*Unresolved
	for _, entry := range entries {
		returnType, args, err := callTypes(entry)
		if err == nil {
			_, err = lib.Prep(entry.SymbolName, returnType, args...)
		}
		if err != nil {
			result = append(result, &Unresolved{Symbol: entry.SymbolName, Reason: err.Error()})
		}
	}
	return result, nil
}

func callTypes(entry *signature.Entry) (*ffi.Type, []*ffi.Type, error) {
	returnType, err := Type(entry.ReturnTag)
	if err != nil {
		return nil, nil, err
	}
	args := make([]*ffi.Type, 0, len(entry.ParameterTags))
	for _, tag := range entry.ParameterTags {
		if tag == registry.TagVoid {
			return nil, nil, fmt.Errorf("void parameter")
		}
		argType, err := Type(tag)
		if err != nil {
			return nil, nil, err
		}
		args = append(args, argType)
	}
	return returnType, args, nil
}
