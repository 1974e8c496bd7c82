// Package cenum extracts typedef enum blocks from C headers and resolves them into constant tables.
package cenum

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/viant/shimgen/inspector/graph"
)

// Inspector locates typedef enum blocks using the tree-sitter C grammar
type Inspector struct{}

// NewInspector creates an enum inspector
func NewInspector() *Inspector {
	return &Inspector{}
}

// InspectSource parses one header and returns its enum blocks in source order,
// typedef enum lines that could not be resolved are reported in Header.Skipped
func (i *Inspector) InspectSource(name string, src []byte) (*graph.Header, error) {
	blocks, skipped, err := Blocks(src)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", name, err)
	}
	for _, item := range skipped {
		item.Header = name
	}
	return &graph.Header{Name: name, Enums: blocks, Skipped: skipped}, nil
}

// Blocks returns every typedef enum block of src, both "typedef enum {" and "typedef enum Tag {" forms.
// When the grammar hits a syntax error, every typedef enum line the tree does not account for
// is parsed again on its own; lines that still do not resolve are returned as skipped.
func Blocks(src []byte) ([]*graph.EnumBlock, []*graph.Skipped, error) {
	blocks, hasError, err := parseBlocks(src)
	if err != nil {
		return nil, nil, err
	}
	if !hasError {
		return blocks, nil, nil
	}
	found := map[int]bool{}
	for _, block := range blocks {
		found[block.Line] = true
	}
	var skipped []*graph.Skipped
	offset := 0
	for i, line := range strings.SplitAfter(string(src), "\n") {
		number, start := i+1, offset
		offset += len(line)
		if found[number] || !typedefEnum.MatchString(line) {
			continue
		}
		block, reason := recoverBlock(src[start:], number)
		if block == nil {
			skipped = append(skipped, &graph.Skipped{Line: number, Text: strings.TrimSpace(line), Reason: reason})
			continue
		}
		blocks = append(blocks, block)
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Line < blocks[j].Line
	})
	return blocks, skipped, nil
}

var typedefEnum = regexp.MustCompile(`^\s*typedef\s+enum\b`)

// recoverBlock parses the text from a typedef enum line up to the terminating "};" run alone
func recoverBlock(rest []byte, line int) (*graph.EnumBlock, string) {
	closing := bytes.IndexByte(rest, '}')
	if closing == -1 {
		return nil, "unterminated typedef enum block"
	}
	semicolon := bytes.IndexByte(rest[closing:], ';')
	if semicolon == -1 {
		return nil, "unterminated typedef enum block"
	}
	blocks, hasError, err := parseBlocks(rest[:closing+semicolon+1])
	if err != nil || hasError || len(blocks) != 1 {
		return nil, "unrecognized typedef enum block"
	}
	block := blocks[0]
	block.Line += line - 1
	for _, member := range block.Members {
		member.Line += line - 1
	}
	return block, ""
}

func parseBlocks(src []byte) ([]*graph.EnumBlock, bool, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(c.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse source: %w", err)
	}
	root := tree.RootNode()
	var blocks []*graph.EnumBlock
	walkNode(root, func(node *sitter.Node) bool {
		if node.Type() != "type_definition" {
			return true
		}
		if node.HasError() {
			return false
		}
		if block := parseTypeDefinition(node, src); block != nil {
			blocks = append(blocks, block)
		}
		return false
	})
	return blocks, root.HasError(), nil
}

func parseTypeDefinition(node *sitter.Node, src []byte) *graph.EnumBlock {
	specifier := node.ChildByFieldName("type")
	if specifier == nil || specifier.Type() != "enum_specifier" {
		return nil
	}
	body := specifier.ChildByFieldName("body")
	if body == nil || body.Type() != "enumerator_list" {
		return nil
	}
	block := &graph.EnumBlock{Line: int(node.StartPoint().Row) + 1}
	if tag := specifier.ChildByFieldName("name"); tag != nil {
		block.Tag = tag.Content(src)
	}
	if alias := node.ChildByFieldName("declarator"); alias != nil {
		block.Alias = alias.Content(src)
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child.Type() != "enumerator" {
			continue
		}
		if member := parseEnumerator(child, src); member != nil {
			block.Members = append(block.Members, member)
		}
	}
	return block
}

func parseEnumerator(node *sitter.Node, src []byte) *graph.EnumMember {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	member := &graph.EnumMember{Name: nameNode.Content(src), Line: int(node.StartPoint().Row) + 1}
	if value := node.ChildByFieldName("value"); value != nil {
		member.Expr = value.Content(src)
	}
	return member
}

// walkNode performs a depth-first walk, fn returning false prunes the subtree
func walkNode(node *sitter.Node, fn func(*sitter.Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkNode(node.Child(i), fn)
	}
}
