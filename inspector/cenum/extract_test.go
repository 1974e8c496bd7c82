package cenum_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/shimgen/inspector/cenum"
	"github.com/viant/shimgen/inspector/graph"
	"gopkg.in/yaml.v3"
)

func TestBlocks(t *testing.T) {
	src := `// Gui control state
typedef enum {
    STATE_NORMAL = 0,
    STATE_FOCUSED,   // focused
    /* pressed */
    STATE_PRESSED,
    STATE_DISABLED
} GuiState;

typedef struct { float x; float y; } Vector2;

 typedef enum R3D_Bloom {
    R3D_BLOOM_DISABLED,
    R3D_BLOOM_MIX = 1 << 2
} R3D_Bloom;

enum Loose { LOOSE_A };
`
	blocks, skipped, err := cenum.Blocks([]byte(src))
	require.NoError(t, err)
	assert.Empty(t, skipped)

	expectYaml := `- alias: GuiState
  line: 2
  members:
    - name: STATE_NORMAL
      expr: "0"
      line: 3
    - name: STATE_FOCUSED
      line: 4
    - name: STATE_PRESSED
      line: 6
    - name: STATE_DISABLED
      line: 7
- tag: R3D_Bloom
  alias: R3D_Bloom
  line: 12
  members:
    - name: R3D_BLOOM_DISABLED
      line: 13
    - name: R3D_BLOOM_MIX
      expr: 1 << 2
      line: 14
`
	var expect []*graph.EnumBlock
	require.NoError(t, yaml.Unmarshal([]byte(expectYaml), &expect))
	assert.EqualValues(t, expect, blocks)
}

func TestExtract(t *testing.T) {
	tests := []struct {
		description   string
		src           string
		opts          []cenum.Option
		expectYaml    string
		expectWarning []string
	}{
		{
			description: "implicit and explicit values",
			src:         "typedef enum { A, B = 5, C } Letters;",
			expectYaml:  "A: 0\nB: 5\nC: 6\n",
		},
		{
			description: "skip first block",
			src: `typedef enum { PLACEHOLDER } Sentinel;
typedef enum { FLAG_A = 0x00000040, FLAG_B = 0x80u, FLAG_C } ConfigFlags;`,
			opts:       []cenum.Option{cenum.WithSkipFirst(true)},
			expectYaml: "FLAG_A: 64\nFLAG_B: 128\nFLAG_C: 129\n",
		},
		{
			description: "references, shifts and negative values",
			src: `typedef enum {
    KEY_NULL = -1,
    KEY_BASE = 10,
    KEY_NEXT = KEY_BASE + 2,
    KEY_MASK = (1 << 3) | 1,
    KEY_INV = ~0,
    KEY_CHAR = 'A'
} Keys;`,
			expectYaml: "KEY_NULL: -1\nKEY_BASE: 10\nKEY_NEXT: 12\nKEY_MASK: 9\nKEY_INV: -1\nKEY_CHAR: 65\n",
		},
		{
			description: "later block overwrites in place",
			src: `typedef enum { ONE = 1, TWO } First;
typedef enum { THREE = 3, ONE = 11 } Second;`,
			expectYaml: "ONE: 11\nTWO: 2\nTHREE: 3\n",
		},
		{
			description: "unresolvable value is skipped and counter still advances",
			src:         "typedef enum { X = 4, Y = UNKNOWN_MACRO, Z } Broken;",
			expectYaml:  "X: 4\nZ: 6\n",
			expectWarning: []string{"Y"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			blocks, _, err := cenum.Blocks([]byte(tc.src))
			require.NoError(t, err)
			table, warnings := cenum.Extract(blocks, tc.opts...)

			expect := graph.NewConstantTable()
			require.NoError(t, yaml.Unmarshal([]byte(tc.expectYaml), expect))
			assert.EqualValues(t, expect.Constants(), table.Constants())

			var members []string
			for _, warning := range warnings {
				members = append(members, warning.Member)
				assert.NotEmpty(t, warning.Reason)
			}
			assert.EqualValues(t, tc.expectWarning, members)
		})
	}
}

func TestBlocks_SyntaxError(t *testing.T) {
	src := `/*******************************************************************************
*   raygui controls
*/
*/

typedef enum {
    STATE_NORMAL = 0,
    STATE_FOCUSED
} GuiState;

typedef enum {
    TEXT_ALIGN_LEFT = 0,
    TEXT_ALIGN_CENTER
} GuiTextAlignment;

typedef enum {
    BROKEN_A = 1,
`
	blocks, skipped, err := cenum.Blocks([]byte(src))
	require.NoError(t, err)

	var aliases []string
	for _, block := range blocks {
		aliases = append(aliases, block.Alias)
	}
	require.EqualValues(t, []string{"GuiState", "GuiTextAlignment"}, aliases)
	assert.Equal(t, 6, blocks[0].Line)
	if assert.Len(t, blocks[0].Members, 2) {
		assert.Equal(t, "STATE_FOCUSED", blocks[0].Members[1].Name)
		assert.Equal(t, 8, blocks[0].Members[1].Line)
	}
	assert.Equal(t, 11, blocks[1].Line)

	if assert.Len(t, skipped, 1) {
		assert.Equal(t, 16, skipped[0].Line)
		assert.Equal(t, "typedef enum {", skipped[0].Text)
		assert.Contains(t, skipped[0].Reason, "unterminated")
	}

	table, warnings := cenum.Extract(blocks)
	assert.Empty(t, warnings)
	assert.EqualValues(t, []string{"STATE_NORMAL", "STATE_FOCUSED", "TEXT_ALIGN_LEFT", "TEXT_ALIGN_CENTER"}, table.Keys())

	header, err := cenum.NewInspector().InspectSource("rgui.hpp", []byte(src))
	require.NoError(t, err)
	if assert.Len(t, header.Skipped, 1) {
		assert.Equal(t, "rgui.hpp", header.Skipped[0].Header)
	}
}

func TestEval(t *testing.T) {
	scope := graph.NewConstantTable()
	scope.Put("BASE", 100)
	tests := []struct {
		expr      string
		expect    int64
		expectErr bool
	}{
		{expr: "42", expect: 42},
		{expr: "0x1F", expect: 31},
		{expr: "0b101", expect: 5},
		{expr: "010", expect: 8},
		{expr: "16UL", expect: 16},
		{expr: "BASE * 2 - 1", expect: 199},
		{expr: "7 / 2", expect: 3},
		{expr: "7 % 4", expect: 3},
		{expr: "1 << 62", expect: 1 << 62},
		{expr: "1.5", expectErr: true},
		{expr: "1 / 0", expectErr: true},
		{expr: "(int)3", expectErr: true},
		{expr: "MISSING", expectErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			actual, err := cenum.Eval(tc.expr, scope)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			if assert.NoError(t, err) {
				assert.Equal(t, tc.expect, actual)
			}
		})
	}
}

func TestInspector_InspectSource(t *testing.T) {
	header, err := cenum.NewInspector().InspectSource("rgui.hpp", []byte("typedef enum { TEXT_ALIGN_LEFT = 0, TEXT_ALIGN_CENTER } GuiTextAlignment;"))
	require.NoError(t, err)
	assert.Equal(t, "rgui.hpp", header.Name)
	if assert.Len(t, header.Enums, 1) {
		assert.Equal(t, "GuiTextAlignment", header.Enums[0].Alias)
		assert.Len(t, header.Enums[0].Members, 2)
	}
}
