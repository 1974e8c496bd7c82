package emitter

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/viant/shimgen/generator/signature"
	"github.com/viant/shimgen/registry"
	"gopkg.in/yaml.v3"
)

// SignatureGroup holds the entries of one header
type SignatureGroup struct {
	Header  string
	Entries []*signature.Entry
}

type signatureDocument struct {
	Entries []*signature.Entry `yaml:"entries" json:"entries"`
}

// Signatures writes the descriptor table in the requested format
func Signatures(w io.Writer, format Format, fingerprint string, groups []*SignatureGroup) error {
	switch format {
	case FormatRew:
		return rewSignatures(w, fingerprint, groups)
	case FormatYAML:
		if err := writeBanner(w, "#", fingerprint); err != nil {
			return err
		}
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(flatten(groups)); err != nil {
			return fmt.Errorf("failed to encode signatures: %w", err)
		}
		return encoder.Close()
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(flatten(groups)); err != nil {
			return fmt.Errorf("failed to encode signatures: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unsupported signature format: %q", format)
}

func flatten(groups []*SignatureGroup) *signatureDocument {
	doc := &signatureDocument{Entries: []*signature.Entry{}}
	for _, group := range groups {
		doc.Entries = append(doc.Entries, group.Entries...)
	}
	return doc
}

// rewSignatures renders the host class mapping each symbol to its ffi_type declaration
func rewSignatures(w io.Writer, fingerprint string, groups []*SignatureGroup) error {
	writer := bufio.NewWriter(w)
	if err := writeBanner(writer, "#", fingerprint); err != nil {
		return err
	}
	writer.WriteString("func_map = class {\n")
	first := true
	for _, group := range groups {
		if len(group.Entries) == 0 {
			continue
		}
		if !first {
			writer.WriteString("\n")
		}
		first = false
		fmt.Fprintf(writer, "\t# %s\n", group.Header)
		for _, entry := range group.Entries {
			params := make([]string, 0, len(entry.ParameterTags))
			for _, tag := range entry.ParameterTags {
				params = append(params, RewTag(tag))
			}
			fmt.Fprintf(writer, "\tffi_type(%s) %s = -> %s\n", strings.Join(params, ","), entry.SymbolName, RewTag(entry.ReturnTag))
		}
	}
	writer.WriteString("}\n\nmodule.exports = func_map\n")
	return writer.Flush()
}

// RewTag returns the host spelling of a primitive tag
func RewTag(tag registry.Tag) string {
	if tag == registry.TagPointer {
		return "rew::ffi::ptr"
	}
	return "rew::ffi::" + string(tag)
}
