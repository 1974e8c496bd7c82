package wrapper

import (
	_ "embed"
	"strings"

	"github.com/janpfeifer/must"
	"github.com/viant/shimgen/inspector/cdecl"
	"github.com/viant/shimgen/inspector/graph"
)

// HelperHeader is the pseudo header name reported for catalog entries
const HelperHeader = "helpers"

//go:embed catalog/helpers.c
var helperSource string

//go:embed catalog/helpers.h
var helperPrototypes string

// DefaultPreamble is emitted ahead of the helper catalog
var DefaultPreamble = strings.Join([]string{
	`#include "raylib.h"`,
	`#include "raymath.h"`,
	`#include "rlgl.h"`,
	``,
	`#define RLIGHTS_IMPLEMENTATION`,
	`#include "rlights.h"`,
	``,
	`#define RAYGUI_IMPLEMENTATION`,
	`#include "raygui.h"`,
	``,
	`#include <stdlib.h>`,
	`#include <string.h>`,
}, "\n") + "\n"

var helperFunctions = must.M1(parseHelpers(helperPrototypes))

// Helpers returns the hand written C catalog: the LightPBR record, box constructors and FreePTRVal
func Helpers() string {
	return helperSource
}

// HelperArtifacts describes catalog entries as artifacts that need no further shim
func HelperArtifacts() []*Artifact {
	result := make([]*Artifact, 0, len(helperFunctions))
	for _, function := range helperFunctions {
		result = append(result, &Artifact{
			OriginalName: function.Name,
			WrapperName:  function.Name,
			Header:       HelperHeader,
			Function:     function,
			Boxed:        make([]bool, len(function.Parameters)),
		})
	}
	return result
}

func parseHelpers(text string) ([]*graph.Function, error) {
	parser := cdecl.NewParser()
	var result []*graph.Function
	for _, line := range cdecl.Prefilter(text) {
		function, err := parser.ParseLine(line.Text)
		if err != nil {
			return nil, err
		}
		function.Line = line.Number
		result = append(result, function)
	}
	return result, nil
}
