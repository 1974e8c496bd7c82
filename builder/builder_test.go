package builder_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/shimgen/builder"
	"github.com/viant/shimgen/emitter"
)

var headers = map[string]string{
	"rcore.h": `// window
Vector2 GetMousePosition(void);
void InitWindow(int width, int height, const char *title);
typedef struct {
`,
	"rshapes.h": `void DrawCircleV(Vector2 center, float radius, Color color);
void DrawPixel(int posX, int posY, Color color);
`,
	"structs.h":  "Vector2 ShouldNotAppear(void);\n",
	"README.md":  "Vector2 NotAHeader(void);\n",
	"rcore.hpp":  "typedef enum { PLACEHOLDER } Sentinel;\ntypedef enum { FLAG_VSYNC_HINT = 0x00000040, FLAG_FULLSCREEN_MODE = 0x00000002 } ConfigFlags;\n",
	"rgui.hpp":   "// gui\ntypedef enum {\n    STATE_NORMAL = 0,\n    STATE_FOCUSED\n} GuiState;\n",
	"r3d.hpp":    "typedef enum R3D_Fog { R3D_FOG_DISABLED, R3D_FOG_LINEAR } R3D_Fog;\n",
	"nested/x.h": "Vector2 Nested(void);\n",
}

type workspace struct {
	headers    string
	source     string
	signatures string
	constants  string
}

func newWorkspace(t *testing.T, files map[string]string) *workspace {
	root := t.TempDir()
	ret := &workspace{
		headers:    filepath.Join(root, "raylib.h"),
		source:     filepath.Join(root, "shim", "main.c"),
		signatures: filepath.Join(root, "features", "ffi", "_values.coffee"),
		constants:  filepath.Join(root, "features", "consts.coffee"),
	}
	for name, content := range files {
		location := filepath.Join(ret.headers, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(location), 0755))
		require.NoError(t, os.WriteFile(location, []byte(content), 0644))
	}
	return ret
}

func (w *workspace) options(opts ...builder.Option) []builder.Option {
	return append([]builder.Option{
		builder.WithHeaders(w.headers),
		builder.WithOutputs(w.source, w.signatures, w.constants),
	}, opts...)
}

func read(t *testing.T, location string) string {
	data, err := os.ReadFile(location)
	require.NoError(t, err)
	return string(data)
}

func TestBuilder_Run(t *testing.T) {
	ws := newWorkspace(t, headers)
	result, err := builder.New(ws.options()...).Run(context.Background())
	require.NoError(t, err)

	source := read(t, ws.source)
	assert.True(t, strings.HasPrefix(source, "// Code generated by shimgen. DO NOT EDIT.\n// fingerprint: "+result.Fingerprint+"\n"))
	assert.Contains(t, source, "#define RAYGUI_IMPLEMENTATION\n")
	assert.Contains(t, source, "} LightPBR;")
	assert.Contains(t, source, "Vector2* GetMousePositionWrapper() {\n\tVector2* result = malloc(sizeof(Vector2));\n\t*result = GetMousePosition();\n\treturn result;\n}\n")
	assert.Contains(t, source, "void DrawCircleVWrapper(Vector2* center, float radius, Color color) {\n\tDrawCircleV(*center, radius, color);\n}\n")
	assert.NotContains(t, source, "ShouldNotAppear")
	assert.NotContains(t, source, "NotAHeader")
	assert.NotContains(t, source, "Nested")
	assert.Less(t, strings.Index(source, "// rcore.h"), strings.Index(source, "// rshapes.h"))

	signatures := read(t, ws.signatures)
	assert.Contains(t, signatures, "\tffi_type() GetMousePositionWrapper = -> rew::ffi::ptr\n")
	assert.Contains(t, signatures, "\tffi_type(rew::ffi::i32,rew::ffi::i32,rew::ffi::buffer) InitWindow = -> rew::ffi::void\n")
	assert.Contains(t, signatures, "\tffi_type(rew::ffi::ptr,rew::ffi::f32,rew::ffi::i64) DrawCircleVWrapper = -> rew::ffi::void\n")
	assert.Contains(t, signatures, "\tffi_type(rew::ffi::ptr) FreePTRVal = -> rew::ffi::void\n")
	assert.True(t, strings.HasSuffix(signatures, "}\n\nmodule.exports = func_map\n"))

	constants := read(t, ws.constants)
	assert.Contains(t, constants, "gui::consts:: = {\n")
	assert.Contains(t, constants, `  ...{"FLAG_VSYNC_HINT":64,"FLAG_FULLSCREEN_MODE":2},`)
	assert.Contains(t, constants, `  ...{"STATE_NORMAL":0,"STATE_FOCUSED":1},`)
	assert.Contains(t, constants, `"MAX_LIGHTS":4`)
	assert.NotContains(t, constants, "PLACEHOLDER")
	assert.NotContains(t, constants, "R3D_FOG")

	assert.EqualValues(t, map[string][]string{
		"rcore.h":   {"GetMousePosition"},
		"rshapes.h": {"DrawCircleV"},
	}, result.Wrapped)
	if assert.Len(t, result.Skipped, 1) {
		assert.Equal(t, "rcore.h", result.Skipped[0].Header)
		assert.Equal(t, 4, result.Skipped[0].Line)
	}
	assert.Len(t, result.Headers, 2)
	assert.Empty(t, result.TypeWarnings)
	assert.Empty(t, result.ConstantWarnings)
	assert.Empty(t, result.Duplicates)

	assertPublished(t, ws)
}

// assertPublished checks every artifact is a regular file and no staging or backup directory is left
func assertPublished(t *testing.T, ws *workspace) {
	for _, location := range []string{ws.source, ws.signatures, ws.constants} {
		info, err := os.Stat(location)
		if assert.NoError(t, err, location) {
			assert.True(t, info.Mode().IsRegular(), location)
		}
		for _, dir := range []string{".shimgen.tmp", ".shimgen.bak"} {
			_, err = os.Stat(filepath.Join(filepath.Dir(location), dir))
			assert.True(t, os.IsNotExist(err), filepath.Join(filepath.Dir(location), dir))
		}
	}
}

func TestBuilder_Idempotent(t *testing.T) {
	ws := newWorkspace(t, headers)
	ctx := context.Background()
	opts := ws.options(builder.WithConstantHeaders(builder.DefaultCoreHeader, builder.DefaultGuiHeader, "r3d.hpp"))

	_, err := builder.New(opts...).Run(ctx)
	require.NoError(t, err)
	first := []string{read(t, ws.source), read(t, ws.signatures), read(t, ws.constants)}
	assert.Contains(t, first[2], `  ...{"R3D_FOG_DISABLED":0,"R3D_FOG_LINEAR":1},`)

	_, err = builder.New(opts...).Run(ctx)
	require.NoError(t, err)
	second := []string{read(t, ws.source), read(t, ws.signatures), read(t, ws.constants)}
	assert.Equal(t, first, second)
	assertPublished(t, ws)

	drifts, _, err := builder.New(opts...).Check(ctx)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestBuilder_MissingHeader(t *testing.T) {
	files := map[string]string{}
	for name, content := range headers {
		if name != "rgui.hpp" {
			files[name] = content
		}
	}
	ws := newWorkspace(t, files)
	_, err := builder.New(ws.options()...).Run(context.Background())
	require.Error(t, err)

	var stepErr *builder.StepError
	if assert.True(t, errors.As(err, &stepErr)) {
		assert.Equal(t, builder.StepRead, stepErr.Step)
		assert.Equal(t, "rgui.hpp", stepErr.Header)
	}
	for _, location := range []string{ws.source, ws.signatures, ws.constants} {
		_, err := os.Stat(location)
		assert.True(t, os.IsNotExist(err), location)
	}
}

func TestBuilder_Check(t *testing.T) {
	ws := newWorkspace(t, headers)
	ctx := context.Background()
	opts := ws.options(builder.WithConstantsFormat(emitter.FormatJSON))

	drifts, _, err := builder.New(opts...).Check(ctx)
	require.NoError(t, err)
	assert.Len(t, drifts, 3, "nothing published yet")

	_, err = builder.New(opts...).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "{\"FLAG_VSYNC_HINT\":64,\"FLAG_FULLSCREEN_MODE\":2,\"STATE_NORMAL\":0,\"STATE_FOCUSED\":1,\"MAX_LIGHTS\":4,\"RAYGUI_MAX_CONTROLS\":16,\"RAYGUI_MAX_PROPS_BASE\":16,\"RAYGUI_MAX_PROPS_EXTENDED\":8}\n", read(t, ws.constants))

	require.NoError(t, os.WriteFile(filepath.Join(ws.headers, "rshapes.h"), []byte(headers["rshapes.h"]+"Rectangle GetShapesTextureRectangle(void);\n"), 0644))
	drifts, result, err := builder.New(opts...).Check(ctx)
	require.NoError(t, err)
	require.Len(t, drifts, 2, "json constants carry no fingerprint")
	assert.True(t, strings.HasSuffix(drifts[0].URL, "main.c"))
	assert.Contains(t, drifts[0].Diff, "+Rectangle* GetShapesTextureRectangleWrapper() {\n")
	assert.Contains(t, drifts[1].Diff, "+\tffi_type() GetShapesTextureRectangleWrapper = -> rew::ffi::ptr\n")
	assert.Contains(t, result.Wrapped["rshapes.h"], "GetShapesTextureRectangle")

	published := read(t, ws.source)
	assert.NotContains(t, published, "GetShapesTextureRectangle", "check must not write")
}

func TestBuilder_Options(t *testing.T) {
	files := map[string]string{}
	for name, content := range headers {
		files[name] = content
	}
	files["rtext.h"] = "void InitWindow(int width, int height, const char *title);\nvoid SetRandomSeed(size_t seed);\n"
	ws := newWorkspace(t, files)

	result, err := builder.New(ws.options(
		builder.WithHostLibrary(true),
		builder.WithHelperSignatures(false),
		builder.WithSignatureFormat(emitter.FormatYAML),
		builder.WithNamespace("game::consts"),
		builder.WithPreamble("#include \"custom.h\"\n"),
	)...).Run(context.Background())
	require.NoError(t, err)

	signatures := read(t, ws.signatures)
	assert.NotContains(t, signatures, "symbol: InitWindow\n")
	assert.NotContains(t, signatures, "FreePTRVal")
	assert.Contains(t, signatures, "symbol: DrawCircleVWrapper\n")

	assert.Contains(t, read(t, ws.constants), "package game::consts;\n")
	source := read(t, ws.source)
	assert.Contains(t, source, "#include \"custom.h\"\n")
	assert.NotContains(t, source, "#define RAYGUI_IMPLEMENTATION")

	if assert.Len(t, result.Duplicates, 1) {
		assert.Equal(t, "InitWindow", result.Duplicates[0].Symbol)
		assert.EqualValues(t, []string{"rcore.h", "rtext.h"}, result.Duplicates[0].Headers)
		assert.EqualValues(t, []string{
			"void InitWindow(int width, int height, const char *title)",
			"void InitWindow(int width, int height, const char *title)",
		}, result.Duplicates[0].Declarations)
	}
	if assert.Len(t, result.TypeWarnings, 1) {
		assert.Equal(t, "SetRandomSeed", result.TypeWarnings[0].Symbol)
	}
}

// faultyFS fails the n-th Move call and every Exists call on a matching URL
type faultyFS struct {
	afs.Service
	failMove   int
	moves      int
	failExists string
}

func (f *faultyFS) Move(ctx context.Context, sourceURL, destURL string, options ...storage.Option) error {
	f.moves++
	if f.moves == f.failMove {
		return fmt.Errorf("move %d: device is busy", f.moves)
	}
	return f.Service.Move(ctx, sourceURL, destURL, options...)
}

func (f *faultyFS) Exists(ctx context.Context, URL string, options ...storage.Option) (bool, error) {
	if f.failExists != "" && strings.HasSuffix(URL, f.failExists) {
		return false, fmt.Errorf("permission denied: %s", URL)
	}
	return f.Service.Exists(ctx, URL, options...)
}

func TestBuilder_CommitRollback(t *testing.T) {
	tests := []struct {
		description string
		published   bool
		failMove    int
	}{
		{description: "first publish fails on second artifact", failMove: 2},
		{description: "first publish fails on last artifact", failMove: 3},
		{description: "backup of second artifact fails", published: true, failMove: 2},
		{description: "publish of first artifact fails", published: true, failMove: 4},
		{description: "publish of second artifact fails", published: true, failMove: 5},
		{description: "publish of last artifact fails", published: true, failMove: 6},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			ws := newWorkspace(t, headers)
			ctx := context.Background()
			var previous []string
			if tc.published {
				_, err := builder.New(ws.options()...).Run(ctx)
				require.NoError(t, err)
				previous = []string{read(t, ws.source), read(t, ws.signatures), read(t, ws.constants)}
				require.NoError(t, os.WriteFile(filepath.Join(ws.headers, "rshapes.h"), []byte(headers["rshapes.h"]+"Rectangle GetShapesTextureRectangle(void);\n"), 0644))
			}

			fs := &faultyFS{Service: afs.New(), failMove: tc.failMove}
			_, err := builder.New(ws.options(builder.WithFS(fs))...).Run(ctx)
			require.Error(t, err)
			var stepErr *builder.StepError
			if assert.True(t, errors.As(err, &stepErr)) {
				assert.Equal(t, builder.StepPublish, stepErr.Step)
			}

			if tc.published {
				actual := []string{read(t, ws.source), read(t, ws.signatures), read(t, ws.constants)}
				assert.Equal(t, previous, actual)
				assertPublished(t, ws)
				return
			}
			for _, location := range []string{ws.source, ws.signatures, ws.constants} {
				_, err := os.Stat(location)
				assert.True(t, os.IsNotExist(err), location)
				_, err = os.Stat(filepath.Join(filepath.Dir(location), ".shimgen.tmp"))
				assert.True(t, os.IsNotExist(err), location)
			}
		})
	}
}

func TestBuilder_CheckExistsError(t *testing.T) {
	ws := newWorkspace(t, headers)
	fs := &faultyFS{Service: afs.New(), failExists: "_values.coffee"}
	drifts, _, err := builder.New(ws.options(builder.WithFS(fs))...).Check(context.Background())
	require.Error(t, err)
	assert.Nil(t, drifts)
	var stepErr *builder.StepError
	if assert.True(t, errors.As(err, &stepErr)) {
		assert.Equal(t, builder.StepRead, stepErr.Step)
		assert.True(t, strings.HasSuffix(stepErr.Header, "_values.coffee"))
	}
}

func TestBuilder_UnresolvedEnumBlock(t *testing.T) {
	files := map[string]string{}
	for name, content := range headers {
		files[name] = content
	}
	files["rgui.hpp"] = "/* raygui\n*/\n*/\ntypedef enum {\n    STATE_NORMAL = 0,\n    STATE_FOCUSED\n} GuiState;\ntypedef enum {\n    ICON_NONE = 0,\n"
	ws := newWorkspace(t, files)

	result, err := builder.New(ws.options()...).Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, read(t, ws.constants), `  ...{"STATE_NORMAL":0,"STATE_FOCUSED":1},`)
	if assert.Len(t, result.ConstantWarnings, 1) {
		warning := result.ConstantWarnings[0]
		assert.Equal(t, "rgui.hpp", warning.Header)
		assert.Equal(t, 8, warning.Line)
		assert.Empty(t, warning.Member)
	}
}
