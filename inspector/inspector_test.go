package inspector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/shimgen/inspector"
	"github.com/viant/shimgen/inspector/cdecl"
	"github.com/viant/shimgen/inspector/cenum"
)

func TestFactory_GetInspector(t *testing.T) {
	tests := []struct {
		description string
		filename    string
		wantErr     bool
		expect      interface{}
	}{
		{description: "declaration header", filename: "rcore.h", expect: &cdecl.Inspector{}},
		{description: "upper case extension", filename: "RSHAPES.H", expect: &cdecl.Inspector{}},
		{description: "enum header", filename: "rgui.hpp", expect: &cenum.Inspector{}},
		{description: "unsupported file", filename: "rcore.c", wantErr: true},
	}

	factory := inspector.NewFactory()
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			actual, err := factory.GetInspector(tc.filename)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			if assert.NoError(t, err) {
				assert.IsType(t, tc.expect, actual)
			}
		})
	}
}

func TestFactory_InspectSource(t *testing.T) {
	factory := inspector.NewFactory(cdecl.WithQualifiers("RLAPI"))

	header, err := factory.InspectSource("rcore.h", []byte("RLAPI void InitWindow(int width, int height, const char *title);\n"))
	if assert.NoError(t, err) {
		fn := header.LookupFunction("InitWindow")
		if assert.NotNil(t, fn) {
			assert.Equal(t, "void", fn.ReturnType)
			assert.Len(t, fn.Parameters, 3)
		}
	}

	header, err = factory.InspectSource("rgui.hpp", []byte("typedef enum { STATE_NORMAL = 0, STATE_FOCUSED } GuiState;\n"))
	if assert.NoError(t, err) && assert.Len(t, header.Enums, 1) {
		assert.Equal(t, "GuiState", header.Enums[0].Alias)
	}

	header, err = factory.Enums().InspectSource("extra.h", []byte("typedef enum { EXTRA_A } Extra;\n"))
	if assert.NoError(t, err) {
		assert.Len(t, header.Enums, 1)
	}
}
