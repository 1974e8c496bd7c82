// Package emitter renders generated artifacts: the C shim source, the signature descriptor and the constants table.
package emitter

import (
	"fmt"
	"io"
	"strings"
)

// Format identifies an artifact encoding
type Format string

const (
	FormatRew  Format = "rew"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// GeneratedBy opens every artifact that supports comments
const GeneratedBy = "Code generated by shimgen. DO NOT EDIT."

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch format := Format(strings.ToLower(name)); format {
	case FormatRew, FormatYAML, FormatJSON:
		return format, nil
	}
	return "", fmt.Errorf("unsupported format: %q", name)
}

// Ext returns the file extension conventionally used for the format
func (f Format) Ext() string {
	switch f {
	case FormatRew:
		return ".coffee"
	case FormatJSON:
		return ".json"
	}
	return ".yaml"
}

func writeBanner(w io.Writer, prefix, fingerprint string) error {
	if _, err := fmt.Fprintf(w, "%s %s\n", prefix, GeneratedBy); err != nil {
		return err
	}
	if fingerprint == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, "%s fingerprint: %s\n", prefix, fingerprint)
	return err
}
