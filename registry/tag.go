package registry

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Tag is an ABI-level primitive kind understood by the host FFI loader
type Tag string

const (
	TagVoid    Tag = "void"
	TagPointer Tag = "pointer"
	TagBuffer  Tag = "buffer"
	TagBool    Tag = "bool"
	TagU8      Tag = "u8"
	TagU16     Tag = "u16"
	TagU32     Tag = "u32"
	TagU64     Tag = "u64"
	TagI8      Tag = "i8"
	TagI16     Tag = "i16"
	TagI32     Tag = "i32"
	TagI64     Tag = "i64"
	TagF32     Tag = "f32"
	TagF64     Tag = "f64"
)

var tags = map[Tag]bool{
	TagVoid: true, TagPointer: true, TagBuffer: true, TagBool: true,
	TagU8: true, TagU16: true, TagU32: true, TagU64: true,
	TagI8: true, TagI16: true, TagI32: true, TagI64: true,
	TagF32: true, TagF64: true,
}

// Valid returns true for known tags
func (t Tag) Valid() bool {
	return tags[t]
}

// ParseTag validates a tag name
func ParseTag(name string) (Tag, error) {
	tag := Tag(name)
	if !tag.Valid() {
		return "", fmt.Errorf("unknown primitive tag: %q", name)
	}
	return tag, nil
}

// UnmarshalYAML reads a tag name, rejecting unknown primitives with the offending line
func (t *Tag) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	tag, err := ParseTag(name)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*t = tag
	return nil
}
